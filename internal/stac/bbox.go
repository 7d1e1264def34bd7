package stac

// Bbox is a 2D [xmin,ymin,xmax,ymax] or 3D
// [xmin,ymin,zmin,xmax,ymax,zmax] bounding box. A 2D bbox with
// xmin > xmax is permitted and means the box crosses the antimeridian.
type Bbox []float64

// Validate checks the length and, for non-antimeridian-crossing boxes, that
// mins are at most maxes.
func (b Bbox) Validate() error {
	switch len(b) {
	case 4:
		if b[1] > b[3] {
			return &InvalidBboxError{Values: b}
		}
	case 6:
		if b[0] > b[3] || b[1] > b[4] || b[2] > b[5] {
			return &InvalidBboxError{Values: b}
		}
	default:
		return &InvalidBboxError{Values: b}
	}
	return nil
}

// Is3D reports whether the bbox carries a z dimension.
func (b Bbox) Is3D() bool { return len(b) == 6 }

// CrossesAntimeridian reports whether this 2D bbox's xmin exceeds its xmax,
// the convention the specification uses to express antimeridian crossing.
func (b Bbox) CrossesAntimeridian() bool {
	if len(b) != 4 {
		return false
	}
	return b[0] > b[2]
}

// Update widens b componentwise to also cover other, returning the
// resulting bbox. Both must share dimensionality.
func (b Bbox) Update(other Bbox) Bbox {
	if len(b) == 0 {
		return append(Bbox(nil), other...)
	}
	if len(other) == 0 {
		return b
	}
	if len(b) == 4 && len(other) == 4 {
		return Bbox{
			minF(b[0], other[0]), minF(b[1], other[1]),
			maxF(b[2], other[2]), maxF(b[3], other[3]),
		}
	}
	if len(b) == 6 && len(other) == 6 {
		return Bbox{
			minF(b[0], other[0]), minF(b[1], other[1]), minF(b[2], other[2]),
			maxF(b[3], other[3]), maxF(b[4], other[4]), maxF(b[5], other[5]),
		}
	}
	return b
}

// Contains reports whether b fully contains other (componentwise,
// ignoring antimeridian special-casing — callers needing that handle it at
// a higher level per the open-question resolution in DESIGN.md).
func (b Bbox) Contains(other Bbox) bool {
	if len(b) != len(other) {
		return false
	}
	half := len(b) / 2
	for i := 0; i < half; i++ {
		if other[i] < b[i] {
			return false
		}
		if other[half+i] > b[half+i] {
			return false
		}
	}
	return true
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
