package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// FitSize computes the dimensions of a raster resized to fit inside
// (maxH, maxW) while preserving its aspect ratio.
func FitSize(h, w, maxH, maxW int) (int, int) {
	if h <= 0 || w <= 0 {
		return 0, 0
	}
	ratio := float64(h) / float64(w)
	minDim := float64(maxH) * ratio
	if f := float64(maxW); minDim > f {
		minDim = f
	}
	outW := int(minDim/ratio + 0.5)
	outH := int(minDim + 0.5)
	return outH, outW
}

// ScaleImage resamples an 8-bit image to the given size. Upscaling uses
// Catmull-Rom interpolation, downscaling the cheaper approximate
// bilinear kernel, mirroring the quality/speed trade-off of the encode
// path this feeds.
func ScaleImage(src image.Image, h, w int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	b := src.Bounds()
	if h > b.Dy() || w > b.Dx() {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}
	return dst
}

// ScaleImageNearest resamples with nearest-neighbor sampling. Packed
// label and intensity rasters must go through this: any interpolation
// would blend bit patterns into meaningless values.
func ScaleImageNearest(src image.Image, h, w int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
