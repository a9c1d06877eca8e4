package layers

import (
	"github.com/layerview/layerview/pkg/colors"
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/raster"
)

// IntensityLayer renders a scalar plane with full float32 precision,
// colored by the "color_range" gradient option on the front-end.
type IntensityLayer struct {
	*base
	plane *raster.Plane
}

// NewIntensity creates an intensity layer. colorRange accepts a
// colors.Range or a position-keyed stop mapping.
func NewIntensity(plane *raster.Plane, colorRange any) (*IntensityLayer, error) {
	l := &IntensityLayer{
		base: newBase(KindIntensity, map[string]Validator{
			"color_range": validateColorRange,
		}),
	}
	l.bind(l)
	l.opts["foreground"] = true
	if err := l.setPlane(plane); err != nil {
		return nil, err
	}
	if colorRange != nil {
		if err := l.SetOptions(Options{"color_range": colorRange}, true); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func validateColorRange(v any) (any, error) {
	switch t := v.(type) {
	case colors.Range:
		return t, nil
	case map[float64]any:
		return colors.NewRange(t)
	}
	return nil, errors.New(errors.ErrCodeInvalidOption, "color_range must be a position-keyed stop mapping, got %v", v)
}

func (l *IntensityLayer) setPlane(plane *raster.Plane) error {
	if plane == nil {
		return errors.New(errors.ErrCodeInvalidData, "intensity buffer is nil")
	}
	l.plane = plane
	l.notifyDataChange()
	return nil
}

// Plane returns the current scalar buffer.
func (l *IntensityLayer) Plane() *raster.Plane { return l.plane }

// ColorRange returns the normalized gradient.
func (l *IntensityLayer) ColorRange() colors.Range {
	cr, _ := l.opts["color_range"].(colors.Range)
	return cr
}

func (l *IntensityLayer) Shape() geom.Rect {
	if l.plane == nil {
		return geom.Rect{}
	}
	return geom.FromSize(float64(l.plane.H), float64(l.plane.W))
}

func (l *IntensityLayer) GetData(maxH, maxW int) (encoding.LayerData, error) {
	return l.finishData(encoding.EncodeIntensity(l.plane, maxH, maxW))
}

// UpdateData replaces the scalar plane. Accepts *raster.Plane, [][]float64
// or a raster.Provider.
func (l *IntensityLayer) UpdateData(data any) error {
	switch d := data.(type) {
	case *raster.Plane:
		return l.setPlane(d)
	case [][]float64:
		p, err := raster.PlaneFrom2D(d)
		if err != nil {
			return err
		}
		return l.setPlane(p)
	case raster.Provider:
		p, err := raster.PlaneFromProvider(d)
		if err != nil {
			return err
		}
		return l.setPlane(p)
	}
	return errors.New(errors.ErrCodeInvalidData, "invalid intensity data %T", data)
}

func (l *IntensityLayer) FetchItem(x, y int) (map[string]any, error) {
	if l.plane == nil || y < 0 || x < 0 || y >= l.plane.H || x >= l.plane.W {
		return nil, errors.New(errors.ErrCodeIndexRange, "pixel (%d, %d) out of bounds", x, y)
	}
	return map[string]any{"value": l.plane.At(y, x)}, nil
}

func (l *IntensityLayer) Duplicate() Layer {
	dup := &IntensityLayer{base: l.duplicateBase(), plane: l.plane}
	dup.bind(dup)
	return dup
}
