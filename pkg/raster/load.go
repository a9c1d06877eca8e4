package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/layerview/layerview/pkg/errors"
)

var httpURLRe = regexp.MustCompile(`^https?://`)

// LoadImage resolves a file path or http(s) URL into an Image with values
// in [0, 255]. It is a collaborator hook: hosts may replace it to source
// rasters from notebooks, archives or object stores. Remote fetches retry
// transient failures with exponential backoff. Failures surface as
// COLLABORATOR_IMAGE validation errors.
var LoadImage = loadImage

func loadImage(pathOrURL string) (*Image, error) {
	var r io.Reader
	switch {
	case fileExists(pathOrURL):
		f, err := os.Open(pathOrURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCollaboratorImage, err, "invalid image file %q", pathOrURL)
		}
		defer f.Close()
		r = f
	case httpURLRe.MatchString(pathOrURL):
		body, err := fetchWithRetry(pathOrURL)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(body)
	default:
		return nil, errors.New(errors.ErrCodeCollaboratorImage, "no file was found at %q", pathOrURL)
	}
	img, err := DecodeImage(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCollaboratorImage, err, "decode image %q", pathOrURL)
	}
	return img, nil
}

// DecodeImage decodes any registered image format into a float Image with
// 8-bit channel values. Fully-opaque sources collapse to 3 channels.
func DecodeImage(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := src.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]float64, h*w*4)
	opaque := true
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cr, cg, cb, ca := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			base := (y*w + x) * 4
			data[base+0] = float64(cr >> 8)
			data[base+1] = float64(cg >> 8)
			data[base+2] = float64(cb >> 8)
			data[base+3] = float64(ca >> 8)
			if ca>>8 != 255 {
				opaque = false
			}
		}
	}
	img, err := NewImage(h, w, 4, data)
	if err != nil {
		return nil, err
	}
	if opaque {
		rgb, _ := img.SplitAlpha()
		return rgb, nil
	}
	return img, nil
}

// Remote fetch retry policy. Network failures and 5xx responses double the
// delay between attempts; 4xx responses fail immediately.
var (
	fetchAttempts = 3
	fetchDelay    = 500 * time.Millisecond
)

func fetchWithRetry(url string) ([]byte, error) {
	delay := fetchDelay
	var lastErr error
	for i := 0; i < fetchAttempts; i++ {
		if i > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		body, retryable, err := fetchOnce(url)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func fetchOnce(url string) (body []byte, retryable bool, err error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, true, errors.Wrap(errors.ErrCodeCollaboratorImage, err, "invalid image url %q", url)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return nil, true, errors.New(errors.ErrCodeCollaboratorImage,
			"invalid image url %q: HTTP %d", url, resp.StatusCode)
	default:
		return nil, false, errors.New(errors.ErrCodeCollaboratorImage,
			"invalid image url %q: HTTP %d", url, resp.StatusCode)
	}
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(errors.ErrCodeCollaboratorImage, err, "invalid image url %q", url)
	}
	return body, false, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
