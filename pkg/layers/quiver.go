package layers

import (
	"github.com/layerview/layerview/pkg/colors"
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
)

// QuiverLayer renders a field of arrows anchored in domain coordinates.
type QuiverLayer struct {
	*base
	arrowsXY [][2]float64
	arrowsUV [][2]float64
	domain   geom.Rect
}

// NewQuiver creates a quiver layer from arrow anchors (x, y), vectors
// (u, v) and the domain rect the arrows live in.
func NewQuiver(xy, uv [][2]float64, domain geom.Rect) (*QuiverLayer, error) {
	l := &QuiverLayer{
		base: newBase(KindQuiver, map[string]Validator{
			"color":        validateColor,
			"width":        validateWidth,
			"zoom_scaling": validateEnum("zoom_scaling", ZoomScalings),
		}),
	}
	l.bind(l)
	l.opts["foreground"] = true
	l.opts["color"] = "#333"
	l.opts["width"] = 2.0
	l.opts["zoom_scaling"] = "none"
	if err := l.SetArrows(xy, uv, domain); err != nil {
		return nil, err
	}
	return l, nil
}

func validateColor(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "color must be a string, got %v", v)
	}
	return colors.Parse(s)
}

// validateWidth floors stroke widths at 1.
func validateWidth(v any) (any, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidOption, "width must be a number, got %v", v)
	}
	if f < 1 {
		f = 1
	}
	return f, nil
}

// SetArrows replaces the arrow buffers. Anchors and vectors must have the
// same length.
func (l *QuiverLayer) SetArrows(xy, uv [][2]float64, domain geom.Rect) error {
	if len(xy) != len(uv) {
		return errors.New(errors.ErrCodeInvalidData,
			"arrow anchors and vectors differ in length: %d vs %d", len(xy), len(uv))
	}
	l.arrowsXY = xy
	l.arrowsUV = uv
	l.domain = domain
	l.notifyDataChange()
	return nil
}

func (l *QuiverLayer) Shape() geom.Rect { return l.domain }

func (l *QuiverLayer) GetData(maxH, maxW int) (encoding.LayerData, error) {
	return l.finishData(encoding.EncodeQuiver(l.arrowsXY, l.arrowsUV, l.domain))
}

// UpdateData replaces the vectors, keeping anchors and domain, when given a
// [][2]float64; a [2][][2]float64 replaces anchors and vectors together.
func (l *QuiverLayer) UpdateData(data any) error {
	switch d := data.(type) {
	case [2][][2]float64:
		return l.SetArrows(d[0], d[1], l.domain)
	case [][2]float64:
		return l.SetArrows(l.arrowsXY, d, l.domain)
	}
	return errors.New(errors.ErrCodeInvalidData, "invalid quiver data %T", data)
}

func (l *QuiverLayer) FetchItem(x, y int) (map[string]any, error) {
	return map[string]any{}, nil
}

func (l *QuiverLayer) Duplicate() Layer {
	dup := &QuiverLayer{
		base:     l.duplicateBase(),
		arrowsXY: l.arrowsXY,
		arrowsUV: l.arrowsUV,
		domain:   l.domain,
	}
	dup.bind(dup)
	return dup
}
