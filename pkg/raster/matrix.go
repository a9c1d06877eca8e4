package raster

import (
	"gonum.org/v1/gonum/mat"

	"github.com/layerview/layerview/pkg/errors"
)

// Provider is the capability interface through which external numeric
// containers hand buffers to the core. Implementations declare their
// shape up front and expose normalized float64 samples; the core never
// inspects the concrete container type.
type Provider interface {
	// RasterShape returns the (height, width, channels) of the buffer.
	RasterShape() (h, w, c int)
	// RasterAt returns the sample at (y, x, channel).
	RasterAt(y, x, c int) float64
}

// ImageFromProvider materializes a provider's buffer into an Image.
func ImageFromProvider(p Provider) (*Image, error) {
	h, w, c := p.RasterShape()
	if h <= 0 || w <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"provider reported an empty raster shape (%d, %d, %d)", h, w, c)
	}
	data := make([]float64, h*w*c)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < c; ch++ {
				data[(y*w+x)*c+ch] = p.RasterAt(y, x, ch)
			}
		}
	}
	return NewImage(h, w, c, data)
}

// PlaneFromProvider materializes a single-channel provider into a Plane.
func PlaneFromProvider(p Provider) (*Plane, error) {
	_, _, c := p.RasterShape()
	if c != 1 {
		return nil, errors.New(errors.ErrCodeInvalidData,
			"provider has %d channels, a plane needs exactly 1", c)
	}
	img, err := ImageFromProvider(p)
	if err != nil {
		return nil, err
	}
	return &Plane{H: img.H, W: img.W, Data: img.Data}, nil
}

// MatrixProvider adapts a gonum matrix as a single-channel Provider.
type MatrixProvider struct {
	M mat.Matrix
}

// RasterShape implements Provider.
func (a MatrixProvider) RasterShape() (int, int, int) {
	h, w := a.M.Dims()
	return h, w, 1
}

// RasterAt implements Provider.
func (a MatrixProvider) RasterAt(y, x, _ int) float64 { return a.M.At(y, x) }

// PlaneFromMatrix copies a gonum matrix into a Plane.
func PlaneFromMatrix(m mat.Matrix) (*Plane, error) {
	return PlaneFromProvider(MatrixProvider{M: m})
}
