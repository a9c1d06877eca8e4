package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/layerview/layerview/pkg/errors"
)

func TestNewPlane(t *testing.T) {
	tests := []struct {
		name    string
		h, w    int
		data    []float64
		wantErr bool
	}{
		{"valid", 2, 3, make([]float64, 6), false},
		{"length mismatch", 2, 3, make([]float64, 5), true},
		{"zero height", 0, 3, nil, true},
		{"negative width", 2, -1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlane(tt.h, tt.w, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPlane() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlaneFrom2D(t *testing.T) {
	p, err := PlaneFrom2D([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("PlaneFrom2D() error = %v", err)
	}
	if p.H != 2 || p.W != 3 {
		t.Fatalf("shape = (%d, %d), want (2, 3)", p.H, p.W)
	}
	if p.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", p.At(1, 2))
	}

	if _, err := PlaneFrom2D([][]float64{{1, 2}, {3}}); err == nil {
		t.Error("PlaneFrom2D() accepted ragged rows")
	}
	if _, err := PlaneFrom2D(nil); err == nil {
		t.Error("PlaneFrom2D() accepted empty input")
	}
}

func TestPlane_MinMax(t *testing.T) {
	p, _ := NewPlane(2, 2, []float64{-3, 0, 7, 2})
	lo, hi := p.MinMax()
	if lo != -3 || hi != 7 {
		t.Errorf("MinMax() = (%v, %v), want (-3, 7)", lo, hi)
	}
}

func TestNewImage_ChannelValidation(t *testing.T) {
	for _, c := range []int{1, 3, 4} {
		if _, err := NewImage(2, 2, c, make([]float64, 4*c)); err != nil {
			t.Errorf("NewImage(c=%d) error = %v", c, err)
		}
	}
	if _, err := NewImage(2, 2, 2, make([]float64, 8)); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("NewImage(c=2) error = %v, want INVALID_DATA", err)
	}
}

func TestNewImageAuto_ChannelFirstTranspose(t *testing.T) {
	// A (3, 2, 2) channel-first buffer: channel ch holds value ch*100+i.
	data := make([]float64, 3*2*2)
	for ch := 0; ch < 3; ch++ {
		for i := 0; i < 4; i++ {
			data[ch*4+i] = float64(ch*100 + i)
		}
	}

	img, err := NewImageAuto(3, 2, 2, data)
	if err != nil {
		t.Fatalf("NewImageAuto() error = %v", err)
	}
	if img.H != 2 || img.W != 2 || img.C != 3 {
		t.Fatalf("shape = (%d, %d, %d), want (2, 2, 3)", img.H, img.W, img.C)
	}
	// Pixel (1, 0) is flat index 2 within each channel.
	want := []float64{2, 102, 202}
	got := img.Pixel(1, 0)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pixel(1,0)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewImageAuto_ChannelLastPassthrough(t *testing.T) {
	img, err := NewImageAuto(2, 2, 3, make([]float64, 12))
	if err != nil {
		t.Fatalf("NewImageAuto() error = %v", err)
	}
	if img.H != 2 || img.W != 2 || img.C != 3 {
		t.Errorf("shape = (%d, %d, %d), want (2, 2, 3)", img.H, img.W, img.C)
	}

	if _, err := NewImageAuto(2, 2, 5, make([]float64, 20)); err == nil {
		t.Error("NewImageAuto() accepted a 5-channel shape")
	}
}

func TestImage_SplitAlpha(t *testing.T) {
	data := []float64{
		10, 20, 30, 255, 40, 50, 60, 128,
	}
	img, _ := NewImage(1, 2, 4, data)
	rgb, alpha := img.SplitAlpha()
	if rgb.C != 3 {
		t.Fatalf("rgb.C = %d, want 3", rgb.C)
	}
	if rgb.At(0, 1, 2) != 60 {
		t.Errorf("rgb.At(0,1,2) = %v, want 60", rgb.At(0, 1, 2))
	}
	if alpha.At(0, 0) != 255 || alpha.At(0, 1) != 128 {
		t.Errorf("alpha = %v", alpha.Data)
	}

	// 3-channel images pass through unchanged.
	same, none := rgb.SplitAlpha()
	if same != rgb || none != nil {
		t.Error("SplitAlpha() of a 3-channel image should be a no-op")
	}
}

func TestLabelMapFromInts(t *testing.T) {
	lm, err := LabelMapFromInts(2, 2, []int64{0, 1, 2, MaxLabel})
	if err != nil {
		t.Fatalf("LabelMapFromInts() error = %v", err)
	}
	if lm.At(1, 1) != MaxLabel {
		t.Errorf("At(1,1) = %v, want MaxLabel", lm.At(1, 1))
	}

	if _, err := LabelMapFromInts(1, 2, []int64{-1, 0}); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("negative label error = %v, want INVALID_DATA", err)
	}
}

func TestLabelMapFrom2D(t *testing.T) {
	lm, err := LabelMapFrom2D([][]int{{0, 1, 2}, {3, 4, 5}})
	if err != nil {
		t.Fatalf("LabelMapFrom2D() error = %v", err)
	}
	if lm.H != 2 || lm.W != 3 {
		t.Fatalf("shape = (%d, %d), want (2, 3)", lm.H, lm.W)
	}
	if lm.At(1, 2) != 5 {
		t.Errorf("At(1,2) = %v, want 5", lm.At(1, 2))
	}

	if _, err := LabelMapFrom2D([][]int{{0, 1}, {2}}); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("ragged rows error = %v, want INVALID_DATA", err)
	}
	if _, err := LabelMapFrom2D([][]int{{0, -1}}); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("negative label error = %v, want INVALID_DATA", err)
	}
	if _, err := LabelMapFrom2D(nil); !errors.Is(err, errors.ErrCodeInvalidData) {
		t.Errorf("empty rows error = %v, want INVALID_DATA", err)
	}
}

func TestLabelMapFromPlane(t *testing.T) {
	p, _ := NewPlane(1, 3, []float64{0, 5, 12})
	lm, err := LabelMapFromPlane(p)
	if err != nil {
		t.Fatalf("LabelMapFromPlane() error = %v", err)
	}
	if lm.At(0, 2) != 12 {
		t.Errorf("At(0,2) = %v, want 12", lm.At(0, 2))
	}

	frac, _ := NewPlane(1, 1, []float64{1.5})
	if _, err := LabelMapFromPlane(frac); err == nil {
		t.Error("LabelMapFromPlane() accepted a fractional value")
	}
}

func TestLabelMap_MaxUnique(t *testing.T) {
	lm, _ := NewLabelMap(2, 3, []uint32{0, 3, 3, 1, 0, 7})
	if got := lm.Max(); got != 7 {
		t.Errorf("Max() = %v, want 7", got)
	}
	want := []uint32{0, 1, 3, 7}
	got := lm.Unique()
	if len(got) != len(want) {
		t.Fatalf("Unique() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Unique()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		name           string
		h, w           int
		maxH, maxW     int
		wantH, wantW   int
	}{
		{"landscape scales to ratio height", 100, 400, 800, 600, 200, 800},
		{"portrait capped by max width", 400, 100, 800, 600, 600, 150},
		{"square inside square", 100, 100, 512, 512, 512, 512},
		{"degenerate input", 0, 100, 512, 512, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotH, gotW := FitSize(tt.h, tt.w, tt.maxH, tt.maxW)
			if gotH != tt.wantH || gotW != tt.wantW {
				t.Errorf("FitSize() = (%d, %d), want (%d, %d)", gotH, gotW, tt.wantH, tt.wantW)
			}
		})
	}
}

func TestScaleImageNearest_PreservesValues(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 210, B: 220, A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{R: 4, G: 5, B: 6, A: 255})

	dst := ScaleImageNearest(src, 4, 4).(*image.NRGBA)
	got := dst.NRGBAAt(0, 0)
	if got.R != 10 || got.G != 20 || got.B != 30 {
		t.Errorf("corner pixel = %+v, want exact copy of source", got)
	}
	got = dst.NRGBAAt(3, 3)
	if got.R != 4 || got.G != 5 || got.B != 6 {
		t.Errorf("far corner pixel = %+v, want bottom-right source value", got)
	}
}

func TestLoadImage_RetriesTransientFailures(t *testing.T) {
	orig := fetchDelay
	fetchDelay = time.Millisecond
	defer func() { fetchDelay = orig }()

	var buf bytes.Buffer
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	img, err := LoadImage(srv.URL + "/img.png")
	if err != nil {
		t.Fatalf("LoadImage() error = %v", err)
	}
	if img.H != 2 || img.W != 2 {
		t.Errorf("shape = (%d, %d), want (2, 2)", img.H, img.W)
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2 (one retry)", hits)
	}
}

func TestLoadImage_NoRetryOnClientError(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := LoadImage(srv.URL + "/img.png")
	if !errors.Is(err, errors.ErrCodeCollaboratorImage) {
		t.Fatalf("LoadImage() error = %v, want COLLABORATOR_IMAGE", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (no retry on 404)", hits)
	}
}

func TestPlaneFromMatrix(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	p, err := PlaneFromMatrix(m)
	if err != nil {
		t.Fatalf("PlaneFromMatrix() error = %v", err)
	}
	if p.H != 2 || p.W != 3 {
		t.Fatalf("shape = (%d, %d), want (2, 3)", p.H, p.W)
	}
	if p.At(1, 0) != 4 {
		t.Errorf("At(1,0) = %v, want 4", p.At(1, 0))
	}
}

type fakeProvider struct {
	h, w, c int
}

func (f fakeProvider) RasterShape() (int, int, int) { return f.h, f.w, f.c }
func (f fakeProvider) RasterAt(y, x, c int) float64 {
	return float64(y*1000 + x*10 + c)
}

func TestImageFromProvider(t *testing.T) {
	img, err := ImageFromProvider(fakeProvider{h: 2, w: 2, c: 3})
	if err != nil {
		t.Fatalf("ImageFromProvider() error = %v", err)
	}
	if img.At(1, 1, 2) != 1012 {
		t.Errorf("At(1,1,2) = %v, want 1012", img.At(1, 1, 2))
	}

	if _, err := ImageFromProvider(fakeProvider{h: 0, w: 2, c: 1}); err == nil {
		t.Error("ImageFromProvider() accepted an empty shape")
	}
}

func TestPlaneFromProvider_ChannelCheck(t *testing.T) {
	if _, err := PlaneFromProvider(fakeProvider{h: 2, w: 2, c: 3}); err == nil {
		t.Error("PlaneFromProvider() accepted a 3-channel provider")
	}
}
