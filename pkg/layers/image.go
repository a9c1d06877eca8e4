package layers

import (
	"github.com/layerview/layerview/pkg/encoding"
	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/geom"
	"github.com/layerview/layerview/pkg/raster"
)

// ImageLayer renders a grayscale or color raster, normalized to 8 bits on
// encoding. A 4-channel buffer is split into RGB plus an alpha plane; an
// explicit alpha plane set with SetAlpha takes precedence over the split one.
type ImageLayer struct {
	*base
	img        *raster.Image
	splitAlpha *raster.Plane
	alpha      *raster.Plane
	vmin, vmax encoding.Bound

	// buffer resize cap applied on encoding, 0 disables
	maxH, maxW int
}

// NewImage creates an image layer from a validated raster buffer.
func NewImage(img *raster.Image) (*ImageLayer, error) {
	l := &ImageLayer{
		base: newBase(KindImage, nil),
		vmin: encoding.BoundAuto,
		vmax: encoding.BoundAuto,
	}
	l.bind(l)
	if err := l.setImage(img); err != nil {
		return nil, err
	}
	return l, nil
}

// NewImageFromSource loads the image from a file path or http(s) URL.
func NewImageFromSource(pathOrURL string) (*ImageLayer, error) {
	img, err := raster.LoadImage(pathOrURL)
	if err != nil {
		return nil, err
	}
	return NewImage(img)
}

func (l *ImageLayer) setImage(img *raster.Image) error {
	if img == nil {
		return errors.New(errors.ErrCodeInvalidData, "image buffer is nil")
	}
	if img.C == 4 {
		rgb, alpha := img.SplitAlpha()
		l.img, l.splitAlpha = rgb, alpha
	} else {
		l.img, l.splitAlpha = img, nil
	}
	l.notifyDataChange()
	return nil
}

// SetAlpha attaches an explicit alpha plane (8-bit values, matching the
// image shape). nil falls back to the alpha split from the buffer, if any.
func (l *ImageLayer) SetAlpha(alpha *raster.Plane) error {
	if alpha != nil && l.img != nil && (alpha.H != l.img.H || alpha.W != l.img.W) {
		return errors.New(errors.ErrCodeInvalidData,
			"alpha shape (%d, %d) does not match image shape (%d, %d)", alpha.H, alpha.W, l.img.H, l.img.W)
	}
	l.alpha = alpha
	l.notifyDataChange()
	return nil
}

// Alpha returns the effective alpha plane, nil when the image is opaque.
func (l *ImageLayer) Alpha() *raster.Plane {
	if l.alpha != nil {
		return l.alpha
	}
	return l.splitAlpha
}

// SetValueRange pins or automates the normalization bounds.
func (l *ImageLayer) SetValueRange(vmin, vmax encoding.Bound) {
	l.vmin, l.vmax = vmin, vmax
	l.notifyDataChange()
}

// SetBufferSize caps the encoded buffer size, 0 disables resizing.
func (l *ImageLayer) SetBufferSize(maxH, maxW int) {
	l.maxH, l.maxW = maxH, maxW
}

// Image returns the RGB(A-stripped) buffer.
func (l *ImageLayer) Image() *raster.Image { return l.img }

func (l *ImageLayer) Shape() geom.Rect {
	if l.img == nil {
		return geom.Rect{}
	}
	return geom.FromSize(float64(l.img.H), float64(l.img.W))
}

func (l *ImageLayer) GetData(maxH, maxW int) (encoding.LayerData, error) {
	if maxH == 0 && maxW == 0 {
		maxH, maxW = l.maxH, l.maxW
	}
	return l.finishData(encoding.EncodeImage(l.img, l.Alpha(), l.vmin, l.vmax, maxH, maxW))
}

// UpdateData replaces the buffer. Accepts *raster.Image, a raster.Provider
// or a path/URL string.
func (l *ImageLayer) UpdateData(data any) error {
	switch d := data.(type) {
	case *raster.Image:
		return l.setImage(d)
	case raster.Provider:
		img, err := raster.ImageFromProvider(d)
		if err != nil {
			return err
		}
		return l.setImage(img)
	case string:
		img, err := raster.LoadImage(d)
		if err != nil {
			return err
		}
		return l.setImage(img)
	}
	return errors.New(errors.ErrCodeInvalidData, "invalid image data %T", data)
}

func (l *ImageLayer) FetchItem(x, y int) (map[string]any, error) {
	if l.img == nil || y < 0 || x < 0 || y >= l.img.H || x >= l.img.W {
		return nil, errors.New(errors.ErrCodeIndexRange, "pixel (%d, %d) out of bounds", x, y)
	}
	return map[string]any{"value": l.img.Pixel(y, x)}, nil
}

func (l *ImageLayer) Duplicate() Layer {
	dup := &ImageLayer{
		base:       l.duplicateBase(),
		img:        l.img,
		splitAlpha: l.splitAlpha,
		alpha:      l.alpha,
		vmin:       l.vmin,
		vmax:       l.vmax,
		maxH:       l.maxH,
		maxW:       l.maxW,
	}
	dup.bind(dup)
	return dup
}
