package shadowcast

import "fmt"

// frame is one unresolved angular wedge waiting to be scanned at depth,
// carrying the visibility inherited from the row that produced it.
type frame struct {
	depth      uint32
	minSlope   float64
	maxSlope   float64
	visibility float64

	// crossed marks a wedge split at a corner lying outside its parent's
	// slopes. Its rows are scanned from maxSlope back to minSlope.
	crossed bool
}

// newFrame builds the wedge bounded by the slope its rows start from and the
// slope they end at, keeping minSlope <= maxSlope either way.
func newFrame(depth uint32, startSlope, endSlope, visibility float64) frame {
	if startSlope > endSlope {
		return frame{depth: depth, minSlope: endSlope, maxSlope: startSlope, visibility: visibility, crossed: true}
	}
	return frame{depth: depth, minSlope: startSlope, maxSlope: endSlope, visibility: visibility}
}

// startSlope bounds the inner edge of the first cell scanned in a row
func (f frame) startSlope() float64 {
	if f.crossed {
		return f.maxSlope
	}
	return f.minSlope
}

// endSlope bounds the outer edge of the last cell scanned in a row
func (f frame) endSlope() float64 {
	if f.crossed {
		return f.minSlope
	}
	return f.maxSlope
}

func (f frame) String() string {
	return fmt.Sprintf("frame{depth=%d slopes=[%g,%g] crossed=%t visibility=%g}", f.depth, f.minSlope, f.maxSlope, f.crossed, f.visibility)
}

// frameStack replaces recursion so traversal depth never touches the call stack.
type frameStack []frame

func (s *frameStack) push(f frame) {
	if f.minSlope < 0 || f.maxSlope > 1 || f.minSlope > f.maxSlope {
		panic(fmt.Sprintf("shadowcast: pushing malformed %s", f))
	}
	*s = append(*s, f)
}

func (s *frameStack) pop() (frame, bool) {
	n := len(*s)
	if n == 0 {
		return frame{}, false
	}
	f := (*s)[n-1]
	*s = (*s)[:n-1]
	return f, true
}

func (s *frameStack) reset() {
	*s = (*s)[:0]
}
