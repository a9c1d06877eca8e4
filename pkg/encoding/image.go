package encoding

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/raster"
)

// jpegQuality is the lossy quality used for opaque image payloads.
const jpegQuality = 90

type boundMode int

const (
	boundAuto boundMode = iota
	boundNone
	boundValue
)

// Bound is one end of an image value range: resolved automatically from the
// data, disabled, or pinned to an explicit value.
type Bound struct {
	mode  boundMode
	value float64
}

// BoundAuto resolves the bound from the data extrema (see ResolveRange).
var BoundAuto = Bound{mode: boundAuto}

// BoundNone disables normalization on that end of the range.
var BoundNone = Bound{mode: boundNone}

// BoundValue pins the bound to an explicit value.
func BoundValue(v float64) Bound { return Bound{mode: boundValue, value: v} }

// IsAuto reports whether the bound is resolved from the data.
func (b Bound) IsAuto() bool { return b.mode == boundAuto }

// IsNone reports whether the bound is disabled.
func (b Bound) IsNone() bool { return b.mode == boundNone }

// ResolveRange turns the (vmin, vmax) bound pair into concrete values given
// the data extrema. Auto bounds start at the extrema and are then snapped:
//
//   - both auto, range straddling zero roughly symmetrically (magnitude
//     ratio within [2/3, 3/2]): symmetrize around zero
//   - both auto, range inside [0, 1]: canonical [0, 1]
//   - a bound whose magnitude is under 10% of the opposite bound's is
//     treated as noise and snapped to exactly zero
//
// A returned ok=false means that end is disabled and no normalization
// applies to it.
func ResolveRange(dataMin, dataMax float64, vminB, vmaxB Bound) (vmin float64, vminOK bool, vmax float64, vmaxOK bool) {
	vmin, vminOK = dataMin, true
	switch vminB.mode {
	case boundNone:
		vminOK = false
	case boundValue:
		vmin = vminB.value
	}
	vmax, vmaxOK = dataMax, true
	switch vmaxB.mode {
	case boundNone:
		vmaxOK = false
	case boundValue:
		vmax = vmaxB.value
	}

	switch {
	case vminB.IsAuto() && vmaxB.IsAuto():
		ratio := 0.0
		if vmax != 0 {
			ratio = -vmin / vmax
		}
		switch {
		case vmin < 0 && vmax > 0 && ratio > 2.0/3.0 && ratio < 3.0/2.0:
			vmax = math.Max(-vmin, vmax)
			vmin = -vmax
		case vmax <= 1 && vmin >= 0:
			vmax, vmin = 1, 0
		case vmax > 0 && math.Abs(vmin) < vmax*0.1:
			vmin = 0
		case vmin < 0 && math.Abs(vmax) < math.Abs(vmin)*0.1:
			vmax = 0
		}
	case vmaxB.IsAuto() && vminOK:
		if vmin < 0 && math.Abs(vmax) < math.Abs(vmin)*0.1 {
			vmax = 0
		} else if vmax <= 1 && vmin >= 0 {
			vmax = 1
		}
	case vminB.IsAuto() && vmaxOK:
		if vmax > 0 && math.Abs(vmin) < vmax*0.1 {
			vmin = 0
		}
	}
	return vmin, vminOK, vmax, vmaxOK
}

// EncodeImage normalizes an image buffer to 8 bits and packs it into a data
// URI: jpg when opaque, png when an alpha plane is attached. The alpha plane
// must match the image shape and hold 8-bit values. maxH/maxW of 0 disable
// buffer resizing; infos always carries the native width and height.
func EncodeImage(img *raster.Image, alpha *raster.Plane, vminB, vmaxB Bound, maxH, maxW int) (LayerData, error) {
	if img == nil {
		return LayerData{}, errors.New(errors.ErrCodeInvalidData, "image buffer is nil")
	}
	if alpha != nil && (alpha.H != img.H || alpha.W != img.W) {
		return LayerData{}, errors.New(errors.ErrCodeInvalidData,
			"alpha shape (%d, %d) does not match image shape (%d, %d)", alpha.H, alpha.W, img.H, img.W)
	}

	dataMin, dataMax := img.MinMax()
	vmin, vminOK, vmax, vmaxOK := ResolveRange(dataMin, dataMax, vminB, vmaxB)

	// Normalization offsets the data by its own minimum, then divides by
	// the resolved range.
	offset, scale := 0.0, 1.0
	if vminOK {
		offset = dataMin
		if vmaxOK {
			vmax -= vmin
		}
	}
	if vmaxOK && vmax != 0 {
		scale = 255.0 / vmax
	}

	rgba := quantizeImage(img, alpha, offset, scale)
	if maxH > 0 && maxW > 0 {
		h, w := raster.FitSize(img.H, img.W, maxH, maxW)
		rgba = raster.ScaleImage(rgba, h, w).(*image.NRGBA)
	}

	format := "jpg"
	if alpha != nil {
		format = "png"
	}
	uri, err := dataURI(rgba, format)
	if err != nil {
		return LayerData{}, err
	}
	return LayerData{
		Data:  uri,
		Infos: map[string]any{"width": img.W, "height": img.H},
	}, nil
}

// quantizeImage maps (v - offset) * scale into 8-bit channels.
func quantizeImage(img *raster.Image, alpha *raster.Plane, offset, scale float64) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.W, img.H))
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			var r, g, b uint8
			switch img.C {
			case 1:
				v := quantize(img.At(y, x, 0), offset, scale)
				r, g, b = v, v, v
			default:
				r = quantize(img.At(y, x, 0), offset, scale)
				g = quantize(img.At(y, x, 1), offset, scale)
				b = quantize(img.At(y, x, 2), offset, scale)
			}
			a := uint8(255)
			if alpha != nil {
				a = clampByte(alpha.At(y, x))
			}
			base := out.PixOffset(x, y)
			out.Pix[base+0] = r
			out.Pix[base+1] = g
			out.Pix[base+2] = b
			out.Pix[base+3] = a
		}
	}
	return out
}

func quantize(v, offset, scale float64) uint8 {
	return clampByte((v - offset) * scale)
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// dataURI encodes an 8-bit image as a base64 data URI. Format "jpg" is
// lossy, "png" lossless.
func dataURI(img image.Image, format string) (string, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, img)
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported image format %q", format)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
