package geom

import (
	"testing"

	"github.com/layerview/layerview/pkg/errors"
)

func TestRect_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
		want bool
	}{
		{"zero value", Rect{}, true},
		{"zero height", Rect{W: 10}, true},
		{"zero width", Rect{H: 10}, true},
		{"positive", Rect{H: 1, W: 1}, false},
		{"positioned", Rect{H: 5, W: 5, Y: -2, X: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRect_Union(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{
			"disjoint",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10, Y: 20, X: 20},
			Rect{H: 30, W: 30},
		},
		{
			"overlapping",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10, Y: 5, X: 5},
			Rect{H: 15, W: 15},
		},
		{
			"contained",
			Rect{H: 100, W: 100},
			Rect{H: 10, W: 10, Y: 40, X: 40},
			Rect{H: 100, W: 100},
		},
		{
			"empty left absorbs",
			Rect{},
			Rect{H: 10, W: 20, Y: 1, X: 2},
			Rect{H: 10, W: 20, Y: 1, X: 2},
		},
		{
			"empty right absorbs",
			Rect{H: 10, W: 20, Y: 1, X: 2},
			Rect{W: 50},
			Rect{H: 10, W: 20, Y: 1, X: 2},
		},
		{
			"negative offsets",
			Rect{H: 10, W: 10, Y: -10, X: -10},
			Rect{H: 10, W: 10},
			Rect{H: 20, W: 20, Y: -10, X: -10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Union(tt.b); got != tt.want {
				t.Errorf("Union() = %+v, want %+v", got, tt.want)
			}
			// Union is commutative.
			if got := tt.b.Union(tt.a); got != tt.want {
				t.Errorf("Union() reversed = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRect_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{
			"overlapping",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10, Y: 5, X: 5},
			Rect{H: 5, W: 5, Y: 5, X: 5},
		},
		{
			"disjoint collapses to empty",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10, Y: 100, X: 100},
			Rect{},
		},
		{
			"contained",
			Rect{H: 100, W: 100},
			Rect{H: 10, W: 10, Y: 40, X: 40},
			Rect{H: 10, W: 10, Y: 40, X: 40},
		},
		{
			"touching edges",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10, Y: 10, X: 0},
			Rect{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if !got.IsEmpty() && got != tt.want {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.want)
			}
			if got.IsEmpty() != tt.want.IsEmpty() {
				t.Errorf("Intersect().IsEmpty() = %v, want %v", got.IsEmpty(), tt.want.IsEmpty())
			}
		})
	}
}

func TestRect_Fit(t *testing.T) {
	target := Rect{H: 100, W: 200}

	tests := []struct {
		name  string
		shape Rect
		mode  FitMode
		want  Rect
	}{
		{
			"fit width scales to target width",
			Rect{H: 50, W: 50},
			FitWidth,
			Rect{H: 200, W: 200, Y: -50, X: 0},
		},
		{
			"fit height scales to target height",
			Rect{H: 50, W: 50},
			FitHeight,
			Rect{H: 100, W: 100, Y: 0, X: 50},
		},
		{
			"fit inner uses the smaller ratio",
			Rect{H: 50, W: 50},
			FitInner,
			Rect{H: 100, W: 100, Y: 0, X: 50},
		},
		{
			"fit outer uses the larger ratio",
			Rect{H: 50, W: 50},
			FitOuter,
			Rect{H: 200, W: 200, Y: -50, X: 0},
		},
		{
			"centered keeps the shape size",
			Rect{H: 10, W: 30},
			FitCentered,
			Rect{H: 10, W: 30, Y: 45, X: 85},
		},
		{
			"position of the shape is ignored",
			Rect{H: 50, W: 50, Y: 7, X: -3},
			FitWidth,
			Rect{H: 200, W: 200, Y: -50, X: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.shape.Fit(target, tt.mode)
			if err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Fit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRect_Fit_EmptyShape(t *testing.T) {
	_, err := (Rect{}).Fit(Rect{H: 10, W: 10}, FitWidth)
	if !errors.Is(err, errors.ErrCodeEmptyRect) {
		t.Fatalf("Fit() error = %v, want EMPTY_RECT", err)
	}

	// Centered mode never divides, so an empty shape is allowed.
	got, err := (Rect{}).Fit(Rect{H: 10, W: 10}, FitCentered)
	if err != nil {
		t.Fatalf("Fit(centered) error = %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("Fit(centered) = %+v, want empty", got)
	}
}

func TestRect_FromCenter_FlooredHalves(t *testing.T) {
	// Odd dimensions floor the half-offsets so integer shapes stay on
	// integer coordinates.
	got := FromCenter(Pt(10, 10), 5, 7)
	want := Rect{H: 5, W: 7, Y: 8, X: 7}
	if got != want {
		t.Errorf("FromCenter() = %+v, want %+v", got, want)
	}
}

func TestTransformFromRects(t *testing.T) {
	tests := []struct {
		name     string
		src, dst Rect
		point    Point
		want     Point
	}{
		{
			"identity",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10},
			Pt(3, 4),
			Pt(3, 4),
		},
		{
			"pure translation",
			Rect{H: 10, W: 10},
			Rect{H: 10, W: 10, Y: 5, X: -5},
			Pt(0, 0),
			Pt(5, -5),
		},
		{
			"pure scale",
			Rect{H: 10, W: 10},
			Rect{H: 20, W: 20},
			Pt(10, 10),
			Pt(20, 20),
		},
		{
			"scale and translate maps corners onto corners",
			Rect{H: 10, W: 10, Y: 1, X: 1},
			Rect{H: 30, W: 30, Y: 100, X: 200},
			Pt(11, 11),
			Pt(130, 230),
		},
		{
			"zero width falls back to height ratio",
			Rect{H: 10, W: 0},
			Rect{H: 20, W: 0},
			Pt(10, 0),
			Pt(20, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := TransformFromRects(tt.src, tt.dst)
			if err != nil {
				t.Fatalf("TransformFromRects() error = %v", err)
			}
			if got := tr.ApplyPoint(tt.point); got != tt.want {
				t.Errorf("ApplyPoint(%+v) = %+v, want %+v", tt.point, got, tt.want)
			}
		})
	}
}

func TestTransformFromRects_EmptySource(t *testing.T) {
	_, err := TransformFromRects(Rect{}, Rect{H: 10, W: 10})
	if !errors.Is(err, errors.ErrCodeEmptyRect) {
		t.Fatalf("TransformFromRects() error = %v, want EMPTY_RECT", err)
	}
}

func TestTransform_ApplyRect(t *testing.T) {
	src := Rect{H: 10, W: 10, Y: 0, X: 0}
	dst := Rect{H: 20, W: 20, Y: 100, X: 100}
	tr, err := TransformFromRects(src, dst)
	if err != nil {
		t.Fatalf("TransformFromRects() error = %v", err)
	}
	if got := tr.ApplyRect(src); got != dst {
		t.Errorf("ApplyRect(src) = %+v, want %+v", got, dst)
	}
}

func TestParseFitMode(t *testing.T) {
	for _, valid := range []string{"fit_width", "fit_height", "fit_inner", "fit_outer", "centered"} {
		if _, err := ParseFitMode(valid); err != nil {
			t.Errorf("ParseFitMode(%q) error = %v", valid, err)
		}
	}
	if _, err := ParseFitMode("stretch"); !errors.Is(err, errors.ErrCodeInvalidOption) {
		t.Errorf("ParseFitMode(stretch) error = %v, want INVALID_OPTION", err)
	}
}

func TestPoint_Clip(t *testing.T) {
	r := Rect{H: 10, W: 10, Y: 0, X: 0}
	tests := []struct {
		name string
		p    Point
		want Point
	}{
		{"inside unchanged", Pt(5, 5), Pt(5, 5)},
		{"above clamps to top", Pt(-3, 5), Pt(0, 5)},
		{"beyond clamps to corner", Pt(99, 99), Pt(10, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Clip(r); got != tt.want {
				t.Errorf("Clip() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnionFold(t *testing.T) {
	got := Union(
		Rect{H: 10, W: 10},
		Rect{},
		Rect{H: 10, W: 10, Y: 30, X: 30},
	)
	want := Rect{H: 40, W: 40}
	if got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}

	if got := Union(); !got.IsEmpty() {
		t.Errorf("Union() of nothing = %+v, want empty", got)
	}
}
