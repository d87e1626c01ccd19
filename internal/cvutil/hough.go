package cvutil

import (
	"math"
	"sort"
)

// SobelEdges returns a binary edge map (Canny-equivalent, approximated with
// a Sobel gradient magnitude threshold — cheap enough to run per-crop
// without a dedicated Canny implementation) suitable for Hough analysis.
func (g *Gray) SobelEdges(threshold float64) *Gray {
	out := NewGray(g.W, g.H)
	for y := 1; y < g.H-1; y++ {
		for x := 1; x < g.W-1; x++ {
			gx := -float64(g.At(x-1, y-1)) + float64(g.At(x+1, y-1)) +
				-2*float64(g.At(x-1, y)) + 2*float64(g.At(x+1, y)) +
				-float64(g.At(x-1, y+1)) + float64(g.At(x+1, y+1))
			gy := -float64(g.At(x-1, y-1)) - 2*float64(g.At(x, y-1)) - float64(g.At(x+1, y-1)) +
				float64(g.At(x-1, y+1)) + 2*float64(g.At(x, y+1)) + float64(g.At(x+1, y+1))
			mag := math.Sqrt(gx*gx + gy*gy)
			if mag >= threshold {
				out.Set(x, y, 255)
			}
		}
	}
	return out
}

// HoughAngles performs a simplified Hough-line transform over the edge map
// and returns the angle (in degrees, in [-90, 90]) of the normal of every
// line strong enough to clear minVotes; a horizontal line has a normal of
// ±90, so callers fold these angles by 90 to get the line's tilt. This underlies both the
// geometric normalizer's deskew and the line detector's global rotation
// correction.
func (g *Gray) HoughAngles(minVotes int) []float64 {
	const angleStep = 1.0 // degree resolution
	const angleRange = 90.0
	numAngles := int(2*angleRange/angleStep) + 1
	diag := int(math.Hypot(float64(g.W), float64(g.H)))
	numRho := 2*diag + 1

	accum := make([]int, numAngles*numRho)
	cosT := make([]float64, numAngles)
	sinT := make([]float64, numAngles)
	for i := 0; i < numAngles; i++ {
		theta := (-angleRange + float64(i)*angleStep) * math.Pi / 180.0
		cosT[i] = math.Cos(theta)
		sinT[i] = math.Sin(theta)
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.At(x, y) == 0 {
				continue
			}
			for i := 0; i < numAngles; i++ {
				rho := float64(x)*cosT[i] + float64(y)*sinT[i]
				ri := int(math.Round(rho)) + diag
				if ri >= 0 && ri < numRho {
					accum[i*numRho+ri]++
				}
			}
		}
	}

	var angles []float64
	for i := 0; i < numAngles; i++ {
		best := 0
		for r := 0; r < numRho; r++ {
			if v := accum[i*numRho+r]; v > best {
				best = v
			}
		}
		if best >= minVotes {
			angles = append(angles, -angleRange+float64(i)*angleStep)
		}
	}
	return angles
}

// EstimateSkewAngle returns the median Hough-line angle, shifted into
// [-45, 45) and clipped to maxAngle, or 0 if no lines were found.
func (g *Gray) EstimateSkewAngle(maxAngle float64) float64 {
	edges := g.SobelEdges(80)
	minVotes := g.H / 4
	if minVotes < 10 {
		minVotes = 10
	}
	angles := edges.HoughAngles(minVotes)
	if len(angles) == 0 {
		return 0
	}
	shifted := make([]float64, len(angles))
	for i, a := range angles {
		for a >= 45 {
			a -= 90
		}
		for a < -45 {
			a += 90
		}
		shifted[i] = a
	}
	sort.Float64s(shifted)
	median := shifted[len(shifted)/2]
	if median > maxAngle {
		median = maxAngle
	}
	if median < -maxAngle {
		median = -maxAngle
	}
	return median
}
