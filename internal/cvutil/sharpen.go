package cvutil

// UnsharpMask sharpens g by subtracting a Gaussian-blurred copy, scaled by
// strength (recommended range [0, 0.5] for photometric normalization,
// [0, 2] for the general-purpose preprocessing `sharpen` step).
func (g *Gray) UnsharpMask(sigma, strength float64) *Gray {
	blurred := g.GaussianBlur(sigma)
	out := NewGray(g.W, g.H)
	for i, v := range g.Pix {
		detail := float64(v) - float64(blurred.Pix[i])
		out.Pix[i] = clamp8(float64(v) + strength*detail)
	}
	return out
}

// LaplacianSharpen sharpens using a discrete Laplacian kernel scaled by strength.
func (g *Gray) LaplacianSharpen(strength float64) *Gray {
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			center := float64(g.At(x, y))
			lap := 4*center - float64(g.At(x-1, y)) - float64(g.At(x+1, y)) -
				float64(g.At(x, y-1)) - float64(g.At(x, y+1))
			out.Set(x, y, clamp8(center+strength*lap))
		}
	}
	return out
}

// KernelSharpen applies a fixed 3x3 sharpening convolution kernel scaled by strength.
func (g *Gray) KernelSharpen(strength float64) *Gray {
	// Base kernel: identity plus a scaled high-pass component.
	kernel := [3][3]float64{
		{0, -1, 0},
		{-1, 5, -1},
		{0, -1, 0},
	}
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += float64(g.At(x+kx, y+ky)) * kernel[ky+1][kx+1]
				}
			}
			orig := float64(g.At(x, y))
			out.Set(x, y, clamp8(orig+strength*(sum-orig)))
		}
	}
	return out
}
