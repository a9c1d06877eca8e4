package encoding

import (
	"bytes"
	"image"
	"image/png"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/raster"
)

// PackLabels packs a 32-bit label map into an 8-bit RGBA raster, big-endian:
// red carries bits 16-23, green bits 8-15, blue bits 0-7 and alpha the
// inverted top byte (255 - bits 24-31) so zero-labeled regions stay opaque
// black. The packing is lossless; UnpackLabels inverts it bit for bit.
func PackLabels(lm *raster.LabelMap) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, lm.W, lm.H))
	for y := 0; y < lm.H; y++ {
		for x := 0; x < lm.W; x++ {
			v := lm.At(y, x)
			base := out.PixOffset(x, y)
			out.Pix[base+0] = uint8((v >> 16) & 0xff)
			out.Pix[base+1] = uint8((v >> 8) & 0xff)
			out.Pix[base+2] = uint8(v & 0xff)
			out.Pix[base+3] = 255 - uint8(v>>24)
		}
	}
	return out
}

// UnpackLabels recovers the label map from a packed RGBA raster.
func UnpackLabels(img *image.NRGBA) *raster.LabelMap {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]uint32, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			v := uint32(255-img.Pix[base+3])<<24 |
				uint32(img.Pix[base+0])<<16 |
				uint32(img.Pix[base+1])<<8 |
				uint32(img.Pix[base+2])
			data[y*w+x] = v
		}
	}
	lm, _ := raster.NewLabelMap(h, w, data)
	return lm
}

// packedPNGURI packs a label map and encodes it as a lossless png data URI,
// optionally resampled with nearest-neighbor to fit (maxH, maxW).
func packedPNGURI(lm *raster.LabelMap, maxH, maxW int) (string, error) {
	packed := PackLabels(lm)
	if maxH > 0 && maxW > 0 {
		h, w := raster.FitSize(lm.H, lm.W, maxH, maxW)
		packed = raster.ScaleImageNearest(packed, h, w).(*image.NRGBA)
	}
	return dataURI(packed, "png")
}

// EncodeLabelMap packs a label raster into a lossless png data URI. The
// infos carry the native size and the sorted unique labels present.
func EncodeLabelMap(lm *raster.LabelMap, maxH, maxW int) (LayerData, error) {
	if lm == nil {
		return LayerData{}, errors.New(errors.ErrCodeInvalidData, "label buffer is nil")
	}
	uri, err := packedPNGURI(lm, maxH, maxW)
	if err != nil {
		return LayerData{}, err
	}
	return LayerData{
		Data: uri,
		Infos: map[string]any{
			"width":  lm.W,
			"height": lm.H,
			"labels": lm.Unique(),
		},
	}, nil
}

// DecodeLabelPNG decodes a png produced by EncodeLabelMap's packing back
// into a label map. Used by the round-trip path of the inspect tooling.
func DecodeLabelPNG(data []byte) (*raster.LabelMap, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidData, err, "decode packed label png")
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		nrgba = image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				nrgba.Set(x, y, img.At(x, y))
			}
		}
	}
	return UnpackLabels(nrgba), nil
}
