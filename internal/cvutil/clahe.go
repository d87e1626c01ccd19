package cvutil

import "math"

// CLAHE applies contrast-limited adaptive histogram equalization over a
// tileGridX x tileGridY grid of tiles, each clipped at clipLimit (a
// multiplier on the mean per-bin count, following the standard CLAHE
// formulation). clipLimit should be >= 1.0 per spec §4.1.
func (g *Gray) CLAHE(clipLimit float64, tileGridX, tileGridY int) *Gray {
	if tileGridX < 1 {
		tileGridX = 8
	}
	if tileGridY < 1 {
		tileGridY = 8
	}
	if clipLimit < 1.0 {
		clipLimit = 1.0
	}
	tileW := (g.W + tileGridX - 1) / tileGridX
	tileH := (g.H + tileGridY - 1) / tileGridY
	if tileW == 0 || tileH == 0 {
		return g
	}

	// Build a clipped, equalized mapping LUT per tile.
	luts := make([][]uint8, tileGridX*tileGridY)
	for ty := 0; ty < tileGridY; ty++ {
		for tx := 0; tx < tileGridX; tx++ {
			luts[ty*tileGridX+tx] = g.tileLUT(tx*tileW, ty*tileH, tileW, tileH, clipLimit)
		}
	}

	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			out.Set(x, y, g.interpolatedCLAHE(x, y, tileW, tileH, tileGridX, tileGridY, luts))
		}
	}
	return out
}

func (g *Gray) tileLUT(x0, y0, w, h int, clipLimit float64) []uint8 {
	var hist [256]int
	count := 0
	for y := y0; y < y0+h && y < g.H; y++ {
		for x := x0; x < x0+w && x < g.W; x++ {
			hist[g.At(x, y)]++
			count++
		}
	}
	if count == 0 {
		lut := make([]uint8, 256)
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}
	clip := int(clipLimit * float64(count) / 256.0)
	if clip < 1 {
		clip = 1
	}
	var excess int
	for i, c := range hist {
		if c > clip {
			excess += c - clip
			hist[i] = clip
		}
	}
	redistribute := excess / 256
	for i := range hist {
		hist[i] += redistribute
	}
	lut := make([]uint8, 256)
	var cdf int
	for i, c := range hist {
		cdf += c
		lut[i] = clamp8(float64(cdf) * 255.0 / float64(count))
	}
	return lut
}

func (g *Gray) interpolatedCLAHE(x, y, tileW, tileH, gridX, gridY int, luts [][]uint8) uint8 {
	// Bilinear-interpolate between the 4 nearest tile LUTs for smooth boundaries.
	tx := float64(x)/float64(tileW) - 0.5
	ty := float64(y)/float64(tileH) - 0.5
	tx0 := int(math.Floor(tx))
	ty0 := int(math.Floor(ty))
	fx := tx - float64(tx0)
	fy := ty - float64(ty0)

	lutAt := func(ix, iy int) []uint8 {
		if ix < 0 {
			ix = 0
		}
		if iy < 0 {
			iy = 0
		}
		if ix >= gridX {
			ix = gridX - 1
		}
		if iy >= gridY {
			iy = gridY - 1
		}
		return luts[iy*gridX+ix]
	}

	v := float64(g.At(x, y))
	p00 := float64(lutAt(tx0, ty0)[uint8(v)])
	p10 := float64(lutAt(tx0+1, ty0)[uint8(v)])
	p01 := float64(lutAt(tx0, ty0+1)[uint8(v)])
	p11 := float64(lutAt(tx0+1, ty0+1)[uint8(v)])

	top := p00*(1-fx) + p10*fx
	bot := p01*(1-fx) + p11*fx
	return clamp8(top*(1-fy) + bot*fy)
}
