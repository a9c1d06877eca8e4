// Package geom provides the immutable geometry value types shared by all
// layers: rectangles, points, affine transforms and viewport fit modes.
//
// Rectangles use (h, w, y, x) order with y growing downwards, matching the
// raster convention of the layer buffers. A rectangle with zero height or
// zero width is "empty"; empty rectangles are absorbing for Union and are
// produced by disjoint Intersect operations.
//
// All types are plain values: operations never mutate their receiver.
package geom

import "math"

// Rect is an axis-aligned rectangle {h, w, y, x}.
// The zero value is the empty rectangle.
type Rect struct {
	H float64
	W float64
	Y float64
	X float64
}

// FromSize returns a rectangle of the given size anchored at the origin.
func FromSize(h, w float64) Rect { return Rect{H: h, W: w} }

// FromPoints builds the rectangle spanned by two corner points.
//
// With ensurePositive false, the result is the axis-aligned bounding box of
// the two points regardless of their order (dimensions are never negative).
// With ensurePositive true, p1 is taken as the top-left and p2 as the
// bottom-right corner, and the empty rectangle is returned when either
// computed dimension would be negative. Intersection relies on this to
// make disjoint rectangles collapse to empty.
func FromPoints(p1, p2 Point, ensurePositive bool) Rect {
	if !ensurePositive {
		return Rect{
			H: math.Abs(p2.Y - p1.Y),
			W: math.Abs(p2.X - p1.X),
			Y: math.Min(p1.Y, p2.Y),
			X: math.Min(p1.X, p2.X),
		}
	}
	r := Rect{H: p2.Y - p1.Y, W: p2.X - p1.X, Y: p1.Y, X: p1.X}
	if r.H < 0 || r.W < 0 {
		return Rect{}
	}
	return r
}

// FromCenter returns a rectangle of size (h, w) centered on the given point.
// Centering uses floored half-dimensions so that integer-sized rectangles
// land on integer offsets.
func FromCenter(center Point, h, w float64) Rect {
	return Rect{
		H: h,
		W: w,
		Y: center.Y - math.Floor(h/2),
		X: center.X - math.Floor(w/2),
	}
}

// IsEmpty reports whether the rectangle has zero height or zero width.
func (r Rect) IsEmpty() bool { return r.H == 0 || r.W == 0 }

// Center returns the center point, using floored half-dimensions.
func (r Rect) Center() Point {
	return Point{Y: r.Y + math.Floor(r.H/2), X: r.X + math.Floor(r.W/2)}
}

// TopLeft returns the (y, x) corner.
func (r Rect) TopLeft() Point { return Point{Y: r.Y, X: r.X} }

// BottomRight returns the (y+h, x+w) corner.
func (r Rect) BottomRight() Point { return Point{Y: r.Y + r.H, X: r.X + r.W} }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Left returns the x coordinate of the left edge.
func (r Rect) Left() float64 { return r.X }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Shape returns the (h, w) dimensions as a Point.
func (r Rect) Shape() Point { return Point{Y: r.H, X: r.W} }

// Area returns h*w.
func (r Rect) Area() float64 { return r.H * r.W }

// ToInt rounds all four fields to the nearest integer.
func (r Rect) ToInt() Rect {
	return Rect{
		H: math.Round(r.H),
		W: math.Round(r.W),
		Y: math.Round(r.Y),
		X: math.Round(r.X),
	}
}

// Union returns the bounding box of r and o.
// Empty rectangles are absorbing: the union of an empty rectangle with any
// other rectangle is that other rectangle.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return FromPoints(
		Point{Y: math.Min(r.Top(), o.Top()), X: math.Min(r.Left(), o.Left())},
		Point{Y: math.Max(r.Bottom(), o.Bottom()), X: math.Max(r.Right(), o.Right())},
		false,
	)
}

// Intersect returns the overlap of r and o, or the empty rectangle when
// they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	return FromPoints(
		Point{Y: math.Max(r.Top(), o.Top()), X: math.Max(r.Left(), o.Left())},
		Point{Y: math.Min(r.Bottom(), o.Bottom()), X: math.Min(r.Right(), o.Right())},
		true,
	)
}

// Translate returns r shifted by (dy, dx).
func (r Rect) Translate(dy, dx float64) Rect {
	return Rect{H: r.H, W: r.W, Y: r.Y + dy, X: r.X + dx}
}

// Scale multiplies all four fields by (fy, fx).
func (r Rect) Scale(fy, fx float64) Rect {
	return Rect{H: r.H * fy, W: r.W * fx, Y: r.Y * fy, X: r.X * fx}
}

// Pad grows the rectangle by the given amounts on each side.
// Negative values shrink it.
func (r Rect) Pad(top, right, bottom, left float64) Rect {
	return Rect{
		H: r.H + top + bottom,
		W: r.W + right + left,
		Y: r.Y - top,
		X: r.X - left,
	}
}

// PadAll grows the rectangle by the same amount on all sides.
func (r Rect) PadAll(pad float64) Rect { return r.Pad(pad, pad, pad, pad) }

// Clip returns the part of r inside bounds (empty when disjoint).
func (r Rect) Clip(bounds Rect) Rect { return r.Intersect(bounds) }

// ContainsPoint reports whether p lies inside r (edges included).
func (r Rect) ContainsPoint(p Point) bool {
	return r.Y <= p.Y && p.Y <= r.Y+r.H && r.X <= p.X && p.X <= r.X+r.W
}

// Overlaps reports whether r and o share a non-empty intersection.
func (r Rect) Overlaps(o Rect) bool { return !r.Intersect(o).IsEmpty() }

// Fit scales r's shape uniformly per mode and recenters it on target's
// center. The receiver's position is ignored: only its aspect ratio and
// the target's center matter.
//
// Returns an EMPTY_RECT error when r has a zero dimension needed by the
// mode: the division by zero this would cause is a programming error that
// callers must guard against.
func (r Rect) Fit(target Rect, mode FitMode) (Rect, error) {
	if r.IsEmpty() && mode != FitCentered {
		return Rect{}, errEmptyFitShape(r)
	}
	var ratio float64
	switch mode {
	case FitOuter:
		ratio = math.Max(target.W/r.W, target.H/r.H)
	case FitInner:
		ratio = math.Min(target.W/r.W, target.H/r.H)
	case FitWidth:
		ratio = target.W / r.W
	case FitHeight:
		ratio = target.H / r.H
	default:
		ratio = 1
	}
	return FromCenter(target.Center(), r.H*ratio, r.W*ratio), nil
}

// Union folds Union over the given rectangles.
func Union(rects ...Rect) Rect {
	var out Rect
	for _, r := range rects {
		out = out.Union(r)
	}
	return out
}

// Intersection folds Intersect over the given rectangles.
// Returns the empty rectangle when called with no arguments.
func Intersection(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = out.Intersect(r)
	}
	return out
}
