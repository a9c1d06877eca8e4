package encoding

import (
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
)

// EncodeQuiver serializes arrow anchors and vectors as concatenated
// (x, y, u, v) records under "arrows". Both slices must have the same
// length. The infos carry the domain rectangle the arrows live in.
func EncodeQuiver(xy, uv [][2]float64, domain geom.Rect) (LayerData, error) {
	if len(xy) != len(uv) {
		return LayerData{}, errors.New(errors.ErrCodeInvalidData,
			"arrow anchors and vectors differ in length: %d vs %d", len(xy), len(uv))
	}
	arrows := make([][]float64, len(xy))
	for i := range xy {
		arrows[i] = []float64{xy[i][0], xy[i][1], uv[i][0], uv[i][1]}
	}
	return LayerData{
		Data:  map[string]any{"arrows": arrows},
		Infos: map[string]any{"quiverDomain": rectList(domain)},
	}, nil
}
