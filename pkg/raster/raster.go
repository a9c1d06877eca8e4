// Package raster holds the typed in-memory buffers that layers own: float
// image planes, multi-channel images and 32-bit label maps.
//
// Buffers are validated on construction and exclusively owned afterwards:
// constructors copy the caller's data unless documented otherwise, and
// nothing in this package retains references to caller-provided slices.
//
// External numeric containers enter through the [Provider] capability
// interface (or the gonum adapter in matrix.go); the package never
// introspects foreign types.
package raster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/layerview/layerview/pkg/errors"
)

// MaxLabel is the largest label value a LabelMap can carry.
const MaxLabel = 1<<32 - 1

// Plane is a dense H×W float64 buffer in row-major order.
type Plane struct {
	H, W int
	Data []float64
}

// NewPlane validates dimensions and wraps data (not copied; the caller
// hands over ownership).
func NewPlane(h, w int, data []float64) (*Plane, error) {
	if h <= 0 || w <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidData, "plane shape (%d, %d) must be positive", h, w)
	}
	if len(data) != h*w {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"plane data length %d does not match shape (%d, %d)", len(data), h, w)
	}
	return &Plane{H: h, W: w, Data: data}, nil
}

// PlaneFrom2D copies a [][]float64 into a Plane. Rows must be equal length.
func PlaneFrom2D(rows [][]float64) (*Plane, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidData, "plane cannot be built from empty rows")
	}
	h, w := len(rows), len(rows[0])
	data := make([]float64, 0, h*w)
	for i, row := range rows {
		if len(row) != w {
			return nil, errors.New(errors.ErrCodeInvalidData,
				"plane row %d has length %d, want %d", i, len(row), w)
		}
		data = append(data, row...)
	}
	return &Plane{H: h, W: w, Data: data}, nil
}

// At returns the value at (y, x).
func (p *Plane) At(y, x int) float64 { return p.Data[y*p.W+x] }

// MinMax returns the smallest and largest values of the plane.
func (p *Plane) MinMax() (float64, float64) {
	return floats.Min(p.Data), floats.Max(p.Data)
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	data := make([]float64, len(p.Data))
	copy(data, p.Data)
	return &Plane{H: p.H, W: p.W, Data: data}
}

// Image is a dense H×W×C float64 buffer, C in {1, 3, 4}, interleaved
// row-major (y, x, c).
type Image struct {
	H, W, C int
	Data    []float64
}

// NewImage validates dimensions and wraps data (ownership transfer).
func NewImage(h, w, c int, data []float64) (*Image, error) {
	if h <= 0 || w <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidData, "image shape (%d, %d, %d) must be positive", h, w, c)
	}
	if c != 1 && c != 3 && c != 4 {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"invalid image channel count %d, must be 1, 3 or 4", c)
	}
	if len(data) != h*w*c {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"image data length %d does not match shape (%d, %d, %d)", len(data), h, w, c)
	}
	return &Image{H: h, W: w, C: c, Data: data}, nil
}

// NewImageAuto builds an Image from a 3-D buffer of dims (d0, d1, d2),
// transposing channel-first tensors: when d0 is a channel count (1, 3, 4)
// and d2 is not, the buffer is reinterpreted as (C, H, W) and transposed
// to (H, W, C). Single-channel results collapse to C=1.
func NewImageAuto(d0, d1, d2 int, data []float64) (*Image, error) {
	if len(data) != d0*d1*d2 {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"image data length %d does not match shape (%d, %d, %d)", len(data), d0, d1, d2)
	}
	channelCount := func(n int) bool { return n == 1 || n == 3 || n == 4 }
	if channelCount(d0) && !channelCount(d2) {
		// (C, H, W) -> (H, W, C)
		c, h, w := d0, d1, d2
		out := make([]float64, len(data))
		for ch := 0; ch < c; ch++ {
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					out[(y*w+x)*c+ch] = data[(ch*h+y)*w+x]
				}
			}
		}
		return NewImage(h, w, c, out)
	}
	if !channelCount(d2) {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"invalid image shape (%d, %d, %d): last axis must be 1, 3 or 4 channels", d0, d1, d2)
	}
	return NewImage(d0, d1, d2, data)
}

// FromPlane reinterprets a plane as a single-channel image (shared data).
func FromPlane(p *Plane) *Image {
	return &Image{H: p.H, W: p.W, C: 1, Data: p.Data}
}

// At returns the value at (y, x, c).
func (m *Image) At(y, x, c int) float64 { return m.Data[(y*m.W+x)*m.C+c] }

// Pixel returns all channel values at (y, x).
func (m *Image) Pixel(y, x int) []float64 {
	base := (y*m.W + x) * m.C
	out := make([]float64, m.C)
	copy(out, m.Data[base:base+m.C])
	return out
}

// MinMax returns the smallest and largest values across all channels.
func (m *Image) MinMax() (float64, float64) {
	return floats.Min(m.Data), floats.Max(m.Data)
}

// SplitAlpha separates a 4-channel image into its RGB part and an alpha
// plane. Images without an alpha channel are returned unchanged with a
// nil alpha.
func (m *Image) SplitAlpha() (*Image, *Plane) {
	if m.C != 4 {
		return m, nil
	}
	rgb := make([]float64, m.H*m.W*3)
	alpha := make([]float64, m.H*m.W)
	for i := 0; i < m.H*m.W; i++ {
		copy(rgb[i*3:i*3+3], m.Data[i*4:i*4+3])
		alpha[i] = m.Data[i*4+3]
	}
	return &Image{H: m.H, W: m.W, C: 3, Data: rgb},
		&Plane{H: m.H, W: m.W, Data: alpha}
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	data := make([]float64, len(m.Data))
	copy(data, m.Data)
	return &Image{H: m.H, W: m.W, C: m.C, Data: data}
}

// LabelMap is a dense H×W buffer of 32-bit label identifiers.
// Label 0 is reserved for "no label".
type LabelMap struct {
	H, W int
	Data []uint32
}

// NewLabelMap validates dimensions and wraps data (ownership transfer).
func NewLabelMap(h, w int, data []uint32) (*LabelMap, error) {
	if h <= 0 || w <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidData, "label map shape (%d, %d) must be positive", h, w)
	}
	if len(data) != h*w {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"label map data length %d does not match shape (%d, %d)", len(data), h, w)
	}
	return &LabelMap{H: h, W: w, Data: data}, nil
}

// LabelMapFromInts validates and narrows signed label values. Every value
// must lie in [0, 2^32-1]; the check runs before any state is built so a
// failed call leaves nothing half-converted.
func LabelMapFromInts(h, w int, values []int64) (*LabelMap, error) {
	if len(values) != h*w {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"label map data length %d does not match shape (%d, %d)", len(values), h, w)
	}
	for i, v := range values {
		if v < 0 || v > MaxLabel {
			return nil, errors.New(errors.ErrCodeInvalidData,
				"invalid label value %d at index %d: labels must be non-negative integers below 2^32", v, i)
		}
	}
	data := make([]uint32, len(values))
	for i, v := range values {
		data[i] = uint32(v)
	}
	return NewLabelMap(h, w, data)
}

// LabelMapFrom2D flattens row-major nested rows into a label map. All rows
// must have the same length and every value must be a valid label.
func LabelMapFrom2D(rows [][]int) (*LabelMap, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidData, "label map cannot be built from empty rows")
	}
	h, w := len(rows), len(rows[0])
	values := make([]int64, 0, h*w)
	for i, row := range rows {
		if len(row) != w {
			return nil, errors.New(errors.ErrCodeInvalidData,
				"label map row %d has length %d, want %d", i, len(row), w)
		}
		for _, v := range row {
			values = append(values, int64(v))
		}
	}
	return LabelMapFromInts(h, w, values)
}

// LabelMapFromPlane narrows a float plane to labels, rejecting negative,
// fractional or out-of-range values.
func LabelMapFromPlane(p *Plane) (*LabelMap, error) {
	data := make([]uint32, len(p.Data))
	for i, v := range p.Data {
		if v < 0 || v > MaxLabel || v != math.Trunc(v) {
			return nil, errors.New(errors.ErrCodeInvalidData,
				"invalid label value %v at index %d: labels must be non-negative integers below 2^32", v, i)
		}
		data[i] = uint32(v)
	}
	return NewLabelMap(p.H, p.W, data)
}

// At returns the label at (y, x).
func (l *LabelMap) At(y, x int) uint32 { return l.Data[y*l.W+x] }

// Max returns the largest label present.
func (l *LabelMap) Max() uint32 {
	var m uint32
	for _, v := range l.Data {
		if v > m {
			m = v
		}
	}
	return m
}

// Unique returns the sorted distinct label values present.
func (l *LabelMap) Unique() []uint32 {
	seen := make(map[uint32]struct{})
	for _, v := range l.Data {
		seen[v] = struct{}{}
	}
	out := make([]uint32, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy.
func (l *LabelMap) Clone() *LabelMap {
	data := make([]uint32, len(l.Data))
	copy(data, l.Data)
	return &LabelMap{H: l.H, W: l.W, Data: data}
}
