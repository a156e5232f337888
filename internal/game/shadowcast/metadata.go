package shadowcast

import "strings"

// Metadata is a set of flags describing what an observation changed in a
// knowledge sink. Merging is set union, so results may be combined in any
// order and any number of times.
type Metadata uint8

const (
	// NewlySeen is set when a cell is observed for the first time.
	NewlySeen Metadata = 1 << iota
	// ContentChanged is set when a cell's remembered contents differ from what is now seen.
	ContentChanged
	// VisibilityChanged is set when a cell is seen more clearly than before in this time step.
	VisibilityChanged
)

var metadataNames = []struct {
	flag Metadata
	name string
}{
	{NewlySeen, "newly_seen"},
	{ContentChanged, "content_changed"},
	{VisibilityChanged, "visibility_changed"},
}

// Has reports whether every flag in flags is set
func (m Metadata) Has(flags Metadata) bool { return m&flags == flags }

// Merge returns the union of two flag sets
func (m Metadata) Merge(other Metadata) Metadata { return m | other }

// Changed reports whether any flag is set
func (m Metadata) Changed() bool { return m != 0 }

func (m Metadata) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, n := range metadataNames {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
