package encoding

import (
	"image"
	"math"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/raster"
)

// PackIntensity packs a scalar plane into an 8-bit RGBA raster by routing
// each value's IEEE-754 float32 bit pattern through the label packing. The
// front-end reassembles the float from the four channel bytes, so overlays
// keep a dynamic range no 8-bit image could carry.
func PackIntensity(p *raster.Plane) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			v := math.Float32bits(float32(p.At(y, x)))
			base := out.PixOffset(x, y)
			out.Pix[base+0] = uint8((v >> 16) & 0xff)
			out.Pix[base+1] = uint8((v >> 8) & 0xff)
			out.Pix[base+2] = uint8(v & 0xff)
			out.Pix[base+3] = 255 - uint8(v>>24)
		}
	}
	return out
}

// UnpackIntensity recovers the float32 values from a packed RGBA raster.
func UnpackIntensity(img *image.NRGBA) *raster.Plane {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]float64, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			bits := uint32(255-img.Pix[base+3])<<24 |
				uint32(img.Pix[base+0])<<16 |
				uint32(img.Pix[base+1])<<8 |
				uint32(img.Pix[base+2])
			data[y*w+x] = float64(math.Float32frombits(bits))
		}
	}
	p, _ := raster.NewPlane(h, w, data)
	return p
}

// EncodeIntensity packs a scalar plane into a lossless png data URI.
func EncodeIntensity(p *raster.Plane, maxH, maxW int) (LayerData, error) {
	if p == nil {
		return LayerData{}, errors.New(errors.ErrCodeInvalidData, "intensity buffer is nil")
	}
	packed := PackIntensity(p)
	if maxH > 0 && maxW > 0 {
		h, w := raster.FitSize(p.H, p.W, maxH, maxW)
		packed = raster.ScaleImageNearest(packed, h, w).(*image.NRGBA)
	}
	uri, err := dataURI(packed, "png")
	if err != nil {
		return LayerData{}, err
	}
	return LayerData{
		Data:  uri,
		Infos: map[string]any{"width": p.W, "height": p.H},
	}, nil
}
