package cvutil

// MorphOp is a binary morphological operation, mirroring the closed set the
// Preprocessor's `morphology` step exposes (opening, closing).
type MorphOp string

const (
	MorphOpening MorphOp = "opening"
	MorphClosing MorphOp = "closing"
)

// Dilate expands bright (255) regions using a square kernel of the given size.
func (g *Gray) Dilate(kernelSize int) *Gray {
	half := kernelSize / 2
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var maxV uint8
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					if v := g.At(x+kx, y+ky); v > maxV {
						maxV = v
					}
				}
			}
			out.Set(x, y, maxV)
		}
	}
	return out
}

// Erode shrinks bright regions using a square kernel of the given size.
func (g *Gray) Erode(kernelSize int) *Gray {
	half := kernelSize / 2
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			minV := uint8(255)
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					if v := g.At(x+kx, y+ky); v < minV {
						minV = v
					}
				}
			}
			out.Set(x, y, minV)
		}
	}
	return out
}

// Morphology applies an opening (erode-then-dilate, removes small noise) or
// closing (dilate-then-erode, fills gaps) operation.
func (g *Gray) Morphology(op MorphOp, kernelSize int) *Gray {
	if kernelSize < 1 {
		return g
	}
	switch op {
	case MorphOpening:
		return g.Erode(kernelSize).Dilate(kernelSize)
	case MorphClosing:
		return g.Dilate(kernelSize).Erode(kernelSize)
	default:
		return g
	}
}

// DilateHorizontal dilates only along the x-axis with a kernel of the given
// width; this is the "horizontal structuring element" the morphological
// line-detection method uses to fuse characters into solid text strips.
func (g *Gray) DilateHorizontal(width int) *Gray {
	half := width / 2
	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			var maxV uint8
			for kx := -half; kx <= half; kx++ {
				if v := g.At(x+kx, y); v > maxV {
					maxV = v
				}
			}
			out.Set(x, y, maxV)
		}
	}
	return out
}
