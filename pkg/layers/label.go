package layers

import (
	"github.com/layerview/layerview/pkg/colors"
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/raster"
)

// LabelLayer renders an integer label map, colored per label id through the
// "cmap" option. Label 0 is background and maps to the colormap's
// list-valued entry.
type LabelLayer struct {
	*base
	labels *raster.LabelMap
}

// NewLabel creates a label layer. colormap accepts anything
// colors.CheckLabelColormap does; nil selects the generated default palette.
func NewLabel(labels *raster.LabelMap, colormap any) (*LabelLayer, error) {
	l := &LabelLayer{
		base: newBase(KindLabel, map[string]Validator{
			"cmap": validateLabelColormap(true),
		}),
	}
	l.bind(l)
	l.opts["foreground"] = true
	if err := l.setLabels(labels); err != nil {
		return nil, err
	}
	if err := l.SetOptions(Options{"cmap": colormap}, true); err != nil {
		return nil, err
	}
	return l, nil
}

func validateLabelColormap(nullLabel bool) Validator {
	return func(v any) (any, error) {
		return colors.CheckLabelColormap(v, nullLabel)
	}
}

func (l *LabelLayer) setLabels(labels *raster.LabelMap) error {
	if labels == nil {
		return errors.New(errors.ErrCodeInvalidData, "label buffer is nil")
	}
	l.labels = labels
	l.notifyDataChange()
	return nil
}

// Labels returns the current label map.
func (l *LabelLayer) Labels() *raster.LabelMap { return l.labels }

// Colormap returns the normalized label colormap.
func (l *LabelLayer) Colormap() colors.Colormap {
	cm, _ := l.opts["cmap"].(colors.Colormap)
	return cm
}

func (l *LabelLayer) Shape() geom.Rect {
	if l.labels == nil {
		return geom.Rect{}
	}
	return geom.FromSize(float64(l.labels.H), float64(l.labels.W))
}

func (l *LabelLayer) GetData(maxH, maxW int) (encoding.LayerData, error) {
	return l.finishData(encoding.EncodeLabelMap(l.labels, maxH, maxW))
}

// UpdateData replaces the label map. Accepts *raster.LabelMap, [][]int or
// *raster.Plane holding integral values.
func (l *LabelLayer) UpdateData(data any) error {
	switch d := data.(type) {
	case *raster.LabelMap:
		return l.setLabels(d)
	case [][]int:
		lm, err := raster.LabelMapFrom2D(d)
		if err != nil {
			return err
		}
		return l.setLabels(lm)
	case *raster.Plane:
		lm, err := raster.LabelMapFromPlane(d)
		if err != nil {
			return err
		}
		return l.setLabels(lm)
	}
	return errors.New(errors.ErrCodeInvalidData, "invalid label data %T", data)
}

func (l *LabelLayer) FetchItem(x, y int) (map[string]any, error) {
	if l.labels == nil || y < 0 || x < 0 || y >= l.labels.H || x >= l.labels.W {
		return nil, errors.New(errors.ErrCodeIndexRange, "pixel (%d, %d) out of bounds", x, y)
	}
	return map[string]any{"value": l.labels.At(y, x)}, nil
}

func (l *LabelLayer) Duplicate() Layer {
	dup := &LabelLayer{base: l.duplicateBase(), labels: l.labels}
	dup.bind(dup)
	return dup
}
