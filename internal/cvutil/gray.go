// Package cvutil holds the small classical-CV primitives shared by the
// preprocessor, geometric/photometric normalizers and line detector:
// greyscale buffers, Otsu/adaptive thresholding, morphology and a cheap
// Hough-line angle estimator. None of it depends on a CV library — the
// teacher's own detector package takes the same approach, operating
// directly on float32/uint8 slices rather than reaching for gocv.
package cvutil

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Gray is a single-channel 8-bit buffer with explicit dimensions; every
// function in this package takes and returns one so step order never loses
// track of shape, per the Preprocessing profile invariant in spec §3.
type Gray struct {
	Pix    []uint8
	W, H   int
}

// NewGray allocates a zeroed buffer of size w x h.
func NewGray(w, h int) *Gray {
	return &Gray{Pix: make([]uint8, w*h), W: w, H: h}
}

// At returns the pixel at (x,y), or 0 if out of bounds.
func (g *Gray) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return 0
	}
	return g.Pix[y*g.W+x]
}

// Set writes the pixel at (x,y) if in bounds.
func (g *Gray) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return
	}
	g.Pix[y*g.W+x] = v
}

// ToGray converts any image.Image to a luma Gray buffer using Rec. 601
// weights, matching the weighting ocrimage.Fill.Color uses for consistency.
func ToGray(img image.Image) *Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := NewGray(w, h)
	if gi, ok := img.(*image.Gray); ok && gi.Stride == w {
		copy(out.Pix, gi.Pix)
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, gg, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			y8 := uint8((299*int(r>>8) + 587*int(gg>>8) + 114*int(bl>>8)) / 1000) //nolint:gosec
			out.Set(x, y, y8)
		}
	}
	return out
}

// ToImage converts a Gray buffer back to an image.Image.
func (g *Gray) ToImage() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, g.W, g.H))
	copy(out.Pix, g.Pix)
	return out
}

// ToRGBA paints a Gray buffer into an RGBA image (used when a step must
// output a 3-channel image after operating on luma, e.g. threshold).
func (g *Gray) ToRGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, g.W, g.H))
	for i, v := range g.Pix {
		out.Set(i%g.W, i/g.W, color.Gray{Y: v})
	}
	return out
}

// Mean returns the arithmetic mean pixel value.
func (g *Gray) Mean() float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	var sum int
	for _, v := range g.Pix {
		sum += int(v)
	}
	return float64(sum) / float64(len(g.Pix))
}

// Histogram returns a 256-bin intensity histogram.
func (g *Gray) Histogram() [256]int {
	var h [256]int
	for _, v := range g.Pix {
		h[v]++
	}
	return h
}

// OtsuThreshold computes the Otsu binarization threshold for g.
func (g *Gray) OtsuThreshold() uint8 {
	hist := g.Histogram()
	total := len(g.Pix)
	if total == 0 {
		return 128
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}
	var sumB, wB float64
	var maxVar float64
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = t
		}
	}
	return uint8(threshold) //nolint:gosec // threshold in [0,255]
}

// Threshold binarizes g at t: pixels >= t become 255, else 0.
func (g *Gray) Threshold(t uint8) *Gray {
	out := NewGray(g.W, g.H)
	for i, v := range g.Pix {
		if v >= t {
			out.Pix[i] = 255
		}
	}
	return out
}

// AdaptiveGaussianThreshold binarizes each pixel against a local Gaussian-
// weighted mean over a blockSize window, offset by c (subtracted from the
// local mean, matching OpenCV's ADAPTIVE_THRESH_GAUSSIAN_C convention).
func (g *Gray) AdaptiveGaussianThreshold(blockSize int, c float64) *Gray {
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	half := blockSize / 2
	kernel := gaussianKernel1D(blockSize, float64(blockSize)/6.0)
	// Separable blur for the local mean, then threshold against it.
	blurred := g.convolveSeparable(kernel)
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			local := float64(blurred.At(x, y)) - c
			if float64(g.At(x, y)) >= local {
				out.Set(x, y, 255)
			}
		}
	}
	_ = half
	return out
}

func gaussianKernel1D(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 1
	}
	half := size / 2
	k := make([]float64, size)
	var sum float64
	for i := -half; i <= half; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+half] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// convolveSeparable applies a 1-D kernel horizontally then vertically.
func (g *Gray) convolveSeparable(kernel []float64) *Gray {
	half := len(kernel) / 2
	tmp := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += float64(g.At(x+k, y)) * kernel[k+half]
			}
			tmp.Set(x, y, clamp8(sum))
		}
	}
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum float64
			for k := -half; k <= half; k++ {
				sum += float64(tmp.At(x, y+k)) * kernel[k+half]
			}
			out.Set(x, y, clamp8(sum))
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// median sorts vals in place and returns its middle element (used by MedianBlur).
func median(vals []uint8) uint8 {
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	return vals[len(vals)/2]
}
