package cvutil

import "math"

// Contour approximates the "largest contour" geometry used by the
// perspective-warp sanity checks: an oriented bounding rectangle over the
// binarized foreground mass, plus its axis-aligned bounding box for the
// cheap area/aspect checks spec §4.5 requires before attempting a warp.
type Contour struct {
	AABB          Component // axis-aligned bounds of the foreground mass
	AngleDegrees  float64   // principal axis angle, via second-moment PCA
	Area          float64   // pixel count of the foreground mass
	RectW, RectH  float64   // oriented rectangle dimensions (approximated from AABB rotated by AngleDegrees)
}

// LargestContour finds the largest connected foreground mass, where
// foreground is the dark Otsu class (pixels at or below the Otsu threshold),
// and estimates its oriented bounding rectangle via image-moment PCA, which
// plays the role of OpenCV's minAreaRect over the largest contour without
// requiring a full contour-tracing implementation.
func (g *Gray) LargestContour() (Contour, bool) {
	t := g.OtsuThreshold()
	bin := NewGray(g.W, g.H)
	for i, v := range g.Pix {
		if v <= t {
			bin.Pix[i] = 255
		}
	}
	comps := bin.ConnectedComponents()
	if len(comps) == 0 {
		return Contour{}, false
	}
	best := comps[0]
	for _, c := range comps[1:] {
		if c.Count > best.Count {
			best = c
		}
	}

	// Second-moment PCA over foreground pixels within the AABB to estimate
	// the dominant orientation angle.
	var mx, my float64
	var n float64
	for y := best.MinY; y <= best.MaxY; y++ {
		for x := best.MinX; x <= best.MaxX; x++ {
			if bin.At(x, y) != 0 {
				mx += float64(x)
				my += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return Contour{}, false
	}
	mx /= n
	my /= n
	var sxx, syy, sxy float64
	for y := best.MinY; y <= best.MaxY; y++ {
		for x := best.MinX; x <= best.MaxX; x++ {
			if bin.At(x, y) != 0 {
				dx, dy := float64(x)-mx, float64(y)-my
				sxx += dx * dx
				syy += dy * dy
				sxy += dx * dy
			}
		}
	}
	angle := 0.5 * math.Atan2(2*sxy, sxx-syy) * 180 / math.Pi

	return Contour{
		AABB:         best,
		AngleDegrees: angle,
		Area:         n,
		RectW:        float64(best.Width()),
		RectH:        float64(best.Height()),
	}, true
}
