package cvutil

import "math"

// MedianBlur replaces each pixel with the median of a square window of side
// 2*(kernelSize/2)+1 (kernelSize itself when odd); out-of-bounds neighbours
// count as 0. Sizes below 3 return g unchanged.
func (g *Gray) MedianBlur(kernelSize int) *Gray {
	if kernelSize < 3 {
		return g
	}
	half := kernelSize / 2
	out := NewGray(g.W, g.H)
	window := make([]uint8, 0, kernelSize*kernelSize)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			window = window[:0]
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					window = append(window, g.At(x+kx, y+ky))
				}
			}
			out.Set(x, y, median(window))
		}
	}
	return out
}

// GaussianBlur applies a separable Gaussian blur with the given sigma; the
// kernel size is derived from sigma (2*ceil(3*sigma)+1).
func (g *Gray) GaussianBlur(sigma float64) *Gray {
	if sigma <= 0 {
		return g
	}
	size := int(math.Ceil(sigma*3))*2 + 1
	kernel := gaussianKernel1D(size, sigma)
	return g.convolveSeparable(kernel)
}

// BilateralBlur is an edge-preserving smoothing filter: each output pixel is
// a weighted average of its spatial+range neighborhood, where range weight
// falls off with intensity difference (sigmaColor) and spatial weight falls
// off with distance (sigmaSpace). d is the window diameter.
func (g *Gray) BilateralBlur(d int, sigmaColor, sigmaSpace float64) *Gray {
	if d < 3 {
		return g
	}
	half := d / 2
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			center := float64(g.At(x, y))
			var sumW, sumV float64
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					v := float64(g.At(x+kx, y+ky))
					spatial := math.Exp(-float64(kx*kx+ky*ky) / (2 * sigmaSpace * sigmaSpace))
					rang := math.Exp(-((v - center) * (v - center)) / (2 * sigmaColor * sigmaColor))
					w := spatial * rang
					sumW += w
					sumV += w * v
				}
			}
			if sumW > 0 {
				out.Set(x, y, clamp8(sumV/sumW))
			} else {
				out.Set(x, y, g.At(x, y))
			}
		}
	}
	return out
}

// RemoveShadow subtracts a large-kernel median-blurred background estimate
// to flatten uneven illumination: each output pixel is 255 - (bg - v),
// clamped to [0,255]. No further contrast rescaling is applied.
func (g *Gray) RemoveShadow(kernelSize int) *Gray {
	if kernelSize < 3 {
		kernelSize = 21
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	bg := g.MedianBlur(kernelSize)
	out := NewGray(g.W, g.H)
	for i, v := range g.Pix {
		diff := 255 - (int(bg.Pix[i]) - int(v))
		out.Pix[i] = clamp8(float64(diff))
	}
	return out
}
