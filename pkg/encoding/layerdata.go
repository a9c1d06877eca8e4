// Package encoding converts validated raster and vector buffers into the
// self-describing payloads the rendering front-end consumes.
//
// Each layer kind has one encoder:
//   - image: 8-bit quantization with auto value-range resolution, packed
//     into a jpg (opaque) or png (with alpha) data URI
//   - label: lossless 32-bit label packing into png bytes
//   - intensity: lossless float32 bit packing into png bytes
//   - graph, quiver: plain nested numeric lists (small payloads)
//
// Encoders read their input buffers but never retain them; the returned
// LayerData only holds end values.
package encoding

import (
	"encoding/json"

	"github.com/layerview/layerview/pkg/geom"
)

// LayerData is the encoded, transmissible representation of a layer's
// buffer plus descriptive metadata.
type LayerData struct {
	Data  any            `json:"data"`
	Type  string         `json:"type,omitempty"`
	Infos map[string]any `json:"infos,omitempty"`
}

// JSONBytes serializes the payload as compact JSON.
func (d LayerData) JSONBytes() ([]byte, error) {
	return json.Marshal(d)
}

// rectList flattens a rectangle into the (h, w, y, x) list form used in
// payload infos.
func rectList(r geom.Rect) []float64 {
	return []float64{r.H, r.W, r.Y, r.X}
}
