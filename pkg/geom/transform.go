package geom

import "github.com/layerview/layerview/pkg/errors"

// Transform is a uniform-scale affine mapping: a point p maps to
// ((p - Origin) * Scale) + Origin + Translate.
type Transform struct {
	Translate Point
	Scale     float64
	Origin    Point
}

// Identity returns the transform that maps every point to itself.
func Identity() Transform { return Transform{Scale: 1} }

// TransformFromRects computes the transform that carries src onto dst:
// the offset between top-left corners plus the uniform width ratio
// (falling back to the height ratio when src has zero width).
//
// Returns an EMPTY_RECT error when src has both zero width and zero
// height, since no scale ratio can be derived from it.
func TransformFromRects(src, dst Rect) (Transform, error) {
	offset := dst.TopLeft().Sub(src.TopLeft())
	var ratio float64
	switch {
	case src.W != 0:
		ratio = dst.W / src.W
	case src.H != 0:
		ratio = dst.H / src.H
	default:
		return Transform{}, errors.New(errors.ErrCodeEmptyRect,
			"source rect of a transform cannot be empty, got %+v", src)
	}
	return Transform{Translate: offset, Scale: ratio, Origin: src.TopLeft()}, nil
}

// ApplyPoint maps a point through the transform.
func (t Transform) ApplyPoint(p Point) Point {
	return p.Sub(t.Origin).Mul(t.Scale).Add(t.Origin).Add(t.Translate)
}

// ApplyRect maps a rectangle by transforming its corners.
func (t Transform) ApplyRect(r Rect) Rect {
	return FromPoints(t.ApplyPoint(r.TopLeft()), t.ApplyPoint(r.BottomRight()), false)
}

func errEmptyFitShape(r Rect) error {
	return errors.New(errors.ErrCodeEmptyRect,
		"cannot fit a shape with a zero dimension, got h=%v w=%v", r.H, r.W)
}
