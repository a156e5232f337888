package shadowcast

import (
	"fmt"

	"github.com/mitchelldurbincs/fogcast/internal/game/core"
)

// limits holds the per-octant bounds of one observation, expressed in the
// octant's depth and lateral axes.
type limits struct {
	depthMin, depthMax     int
	lateralMin, lateralMax int

	eyeCentre   point
	eyeLateral  float64
	eyeDepthIdx int
}

func newLimits(eye core.Coordinate, width, height int, o *octant) limits {
	centre := cellCentre(eye)
	return limits{
		depthMin:    0,
		depthMax:    o.depthAxis.pick(width-1, height-1),
		lateralMin:  0,
		lateralMax:  o.lateralAxis.pick(width-1, height-1),
		eyeCentre:   centre,
		eyeLateral:  o.lateralAxis.getf(centre),
		eyeDepthIdx: o.depthAxis.get(eye),
	}
}

// scan is the window of one row to visit for a frame
type scan struct {
	depthIdx     int
	startLateral int
	endLateral   int
}

// newScan returns false when the frame has nothing to scan: it is beyond the
// view distance, its row is off the grid, or its first cell is off the grid.
func newScan(l *limits, f *frame, o *octant, distance uint32) (scan, bool) {
	if f.minSlope < 0 || f.minSlope > 1 || f.maxSlope < 0 || f.maxSlope > 1 || f.minSlope > f.maxSlope {
		panic(fmt.Sprintf("shadowcast: scanning malformed %s", f))
	}

	if f.depth > distance {
		return scan{}, false
	}

	depthIdx := l.eyeDepthIdx + int(f.depth)*o.depthStep
	if depthIdx < l.depthMin || depthIdx > l.depthMax {
		return scan{}, false
	}

	// The eye sits in the centre of its cell, so the inner edge of the row
	// is half a cell closer than its index.
	innerDepth := float64(f.depth) - 0.5
	outerDepth := innerDepth + 1

	// Scans always run from the cardinal axis towards the diagonal, so a
	// start beyond the lateral limits means the whole row is off the grid.
	start := o.roundStart.round(l.eyeLateral + f.startSlope()*innerDepth*o.lateralStepF)
	if start < l.lateralMin || start > l.lateralMax {
		return scan{}, false
	}

	end := o.roundEnd.round(l.eyeLateral + f.endSlope()*outerDepth*o.lateralStepF)
	end = min(max(end, l.lateralMin), l.lateralMax)

	return scan{
		depthIdx:     depthIdx,
		startLateral: start,
		endLateral:   end,
	}, true
}

// contains reports whether idx lies between the scan's start and end in
// the direction of step. A crossed frame may yield a start past its end, in
// which case nothing is contained.
func (s scan) contains(idx, step int) bool {
	return (idx-s.startLateral)*step >= 0 && (s.endLateral-idx)*step >= 0
}
