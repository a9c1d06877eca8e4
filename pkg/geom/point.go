package geom

import "math"

// Point is an immutable (y, x) coordinate pair.
// All operations return a new Point.
type Point struct {
	Y float64
	X float64
}

// Pt is shorthand for Point{Y: y, X: x}.
func Pt(y, x float64) Point { return Point{Y: y, X: x} }

// Add returns p + q component-wise.
func (p Point) Add(q Point) Point { return Point{Y: p.Y + q.Y, X: p.X + q.X} }

// Sub returns p - q component-wise.
func (p Point) Sub(q Point) Point { return Point{Y: p.Y - q.Y, X: p.X - q.X} }

// AddScalar adds s to both components.
func (p Point) AddScalar(s float64) Point { return Point{Y: p.Y + s, X: p.X + s} }

// Mul scales both components by s.
func (p Point) Mul(s float64) Point { return Point{Y: p.Y * s, X: p.X * s} }

// MulPoint returns the component-wise product p * q.
func (p Point) MulPoint(q Point) Point { return Point{Y: p.Y * q.Y, X: p.X * q.X} }

// Div divides both components by s. Division by zero follows the
// platform's float semantics; avoiding it is the caller's responsibility.
func (p Point) Div(s float64) Point { return Point{Y: p.Y / s, X: p.X / s} }

// Neg returns -p.
func (p Point) Neg() Point { return Point{Y: -p.Y, X: -p.X} }

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.Y-q.Y, p.X-q.X)
}

// ToInt rounds both components to the nearest integer.
func (p Point) ToInt() Point {
	return Point{Y: math.Round(p.Y), X: math.Round(p.X)}
}

// Clip constrains p to lie within r.
func (p Point) Clip(r Rect) Point {
	return Point{
		Y: math.Min(math.Max(p.Y, r.Top()), r.Bottom()),
		X: math.Min(math.Max(p.X, r.Left()), r.Right()),
	}
}
