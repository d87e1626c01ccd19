package geom

import (
	"image"
	"image/color"
)

// computeHomography solves the 3x3 projective matrix mapping p[i] -> q[i]
// for four point correspondences, via an 8x8 linear system (h22 fixed to 1).
// Adapted from the teacher's rectify.computeHomography.
func computeHomography(p, q [4]Point) ([9]float64, bool) {
	a := [8][8]float64{}
	b := [8]float64{}
	for i := range 4 {
		X, Y := p[i].X, p[i].Y
		x, y := q[i].X, q[i].Y
		r := 2 * i
		a[r][0], a[r][1], a[r][2] = X, Y, 1
		a[r][6], a[r][7] = -X*x, -Y*x
		b[r] = x

		a[r+1][3], a[r+1][4], a[r+1][5] = X, Y, 1
		a[r+1][6], a[r+1][7] = -X*y, -Y*y
		b[r+1] = y
	}
	h, ok := solve8x8(a, b)
	if !ok {
		return [9]float64{}, false
	}
	return [9]float64{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, true
}

func solve8x8(a [8][8]float64, b [8]float64) ([8]float64, bool) {
	const n = 8
	for i := 0; i < n; i++ {
		pivot := i
		best := a[i][i]
		if best < 0 {
			best = -best
		}
		for r := i + 1; r < n; r++ {
			v := a[r][i]
			if v < 0 {
				v = -v
			}
			if v > best {
				best, pivot = v, r
			}
		}
		if best < 1e-12 {
			return [8]float64{}, false
		}
		if pivot != i {
			a[i], a[pivot] = a[pivot], a[i]
			b[i], b[pivot] = b[pivot], b[i]
		}
		for r := i + 1; r < n; r++ {
			f := a[r][i] / a[i][i]
			if f == 0 {
				continue
			}
			for c := i; c < n; c++ {
				a[r][c] -= f * a[i][c]
			}
			b[r] -= f * b[i]
		}
	}
	var x [8]float64
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for c := i + 1; c < n; c++ {
			sum -= a[i][c] * x[c]
		}
		x[i] = sum / a[i][i]
	}
	return x, true
}

func applyHomography(h [9]float64, x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + 1
	if denom == 0 {
		denom = 1e-9
	}
	return (h[0]*x + h[1]*y + h[2]) / denom, (h[3]*x + h[4]*y + h[5]) / denom
}

// warpPerspective maps the quadrilateral srcQuad (in src's coordinate
// space, ordered top-left, top-right, bottom-right, bottom-left) onto a
// dstW x dstH fronto-parallel
// rectangle via inverse homography + bilinear sampling.
func warpPerspective(src image.Image, srcQuad []Point, dstW, dstH int) image.Image {
	if len(srcQuad) != 4 || dstW <= 0 || dstH <= 0 {
		return nil
	}
	d0 := Point{X: 0, Y: 0}
	d1 := Point{X: float64(dstW - 1), Y: 0}
	d2 := Point{X: float64(dstW - 1), Y: float64(dstH - 1)}
	d3 := Point{X: 0, Y: float64(dstH - 1)}
	h, ok := computeHomography([4]Point{d0, d1, d2, d3}, [4]Point{srcQuad[0], srcQuad[1], srcQuad[2], srcQuad[3]})
	if !ok {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	sb := src.Bounds()
	for y := 0; y < dstH; y++ {
		for x := 0; x < dstW; x++ {
			sx, sy := applyHomography(h, float64(x), float64(y))
			out.Set(x, y, bilinearSample(src, sx+float64(sb.Min.X), sy+float64(sb.Min.Y)))
		}
	}
	return out
}

func bilinearSample(src image.Image, x, y float64) color.Color {
	b := src.Bounds()
	if x < float64(b.Min.X) || y < float64(b.Min.Y) || x > float64(b.Max.X-1) || y > float64(b.Max.Y-1) {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)
	c00, c10 := toRGBA(src.At(x0, y0)), toRGBA(src.At(x1, y0))
	c01, c11 := toRGBA(src.At(x0, y1)), toRGBA(src.At(x1, y1))
	r := lerp(lerp(c00.R, c10.R, fx), lerp(c01.R, c11.R, fx), fy)
	g := lerp(lerp(c00.G, c10.G, fx), lerp(c01.G, c11.G, fx), fy)
	bl := lerp(lerp(c00.B, c10.B, fx), lerp(c01.B, c11.B, fx), fy)
	al := lerp(lerp(c00.A, c10.A, fx), lerp(c01.A, c11.A, fx), fy)
	return color.RGBA{R: uint8(r + 0.5), G: uint8(g + 0.5), B: uint8(bl + 0.5), A: uint8(al + 0.5)}
}

type rgbaF struct{ R, G, B, A float64 }

func toRGBA(c color.Color) rgbaF {
	r, g, b, a := c.RGBA()
	return rgbaF{R: float64(r >> 8), G: float64(g >> 8), B: float64(b >> 8), A: float64(a >> 8)}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
