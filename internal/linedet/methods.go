package linedet

import "github.com/dev-rafaelmachado/datalid-ocrcore/internal/cvutil"

// projectionBoxes implements spec §4.4's projection-profile method:
// binarize, compute row-wise ink mass, smooth, threshold at 0.3*mean,
// extract maximal runs as full-width line boxes.
func (d *Detector) projectionBoxes(gray *cvutil.Gray) []Box {
	bin := gray.Threshold(gray.OtsuThreshold())
	profile := bin.RowProfile()
	window := d.cfg.MinLineHeight / 3
	if window < 3 {
		window = 3
	}
	smoothed := cvutil.SmoothProfile(profile, window)

	var mean float64
	for _, v := range smoothed {
		mean += v
	}
	if len(smoothed) > 0 {
		mean /= float64(len(smoothed))
	}
	cutoff := 0.3 * mean

	w := bin.W
	var boxes []Box
	inRun := false
	runStart := 0
	for y, v := range smoothed {
		above := v > cutoff
		switch {
		case above && !inRun:
			inRun = true
			runStart = y
		case !above && inRun:
			inRun = false
			boxes = append(boxes, Box{MinX: 0, MinY: runStart, MaxX: w, MaxY: y})
		}
	}
	if inRun {
		boxes = append(boxes, Box{MinX: 0, MinY: runStart, MaxX: w, MaxY: len(smoothed)})
	}
	return boxes
}

// clusteringBoxes implements spec §4.4's clustering method: connected
// component centroids clustered by y-coordinate in one greedy pass: each
// component joins the existing cluster whose mean centroid y is nearest
// and within eps, otherwise it starts a new cluster. Clusters are never
// merged afterwards, so this does not chain like DBSCAN(eps,
// min_samples=1). Each cluster's bounding hull becomes a line box.
func (d *Detector) clusteringBoxes(gray *cvutil.Gray) []Box {
	bin := gray.Threshold(gray.OtsuThreshold())
	components := bin.ConnectedComponents()
	if len(components) == 0 {
		return nil
	}

	type cluster struct {
		minX, minY, maxX, maxY int
		centroidSum            float64
		count                  int
	}
	var clusters []*cluster
	for _, c := range components {
		cy := c.CentroidY()
		var best *cluster
		bestDist := d.cfg.ClusterEpsilon
		for _, cl := range clusters {
			avg := cl.centroidSum / float64(cl.count)
			dist := avg - cy
			if dist < 0 {
				dist = -dist
			}
			if dist <= bestDist {
				best = cl
				bestDist = dist
			}
		}
		if best == nil {
			clusters = append(clusters, &cluster{minX: c.MinX, minY: c.MinY, maxX: c.MaxX, maxY: c.MaxY, centroidSum: cy, count: 1})
			continue
		}
		if c.MinX < best.minX {
			best.minX = c.MinX
		}
		if c.MinY < best.minY {
			best.minY = c.MinY
		}
		if c.MaxX > best.maxX {
			best.maxX = c.MaxX
		}
		if c.MaxY > best.maxY {
			best.maxY = c.MaxY
		}
		best.centroidSum += cy
		best.count++
	}

	boxes := make([]Box, 0, len(clusters))
	for _, cl := range clusters {
		boxes = append(boxes, Box{MinX: cl.minX, MinY: cl.minY, MaxX: cl.maxX + 1, MaxY: cl.maxY + 1})
	}
	return boxes
}

// morphologyBoxes implements spec §4.4's morphological method: a horizontal
// structuring element dilates text into solid strips, contoured and
// filtered by min height/width.
func (d *Detector) morphologyBoxes(gray *cvutil.Gray) []Box {
	bin := gray.Threshold(gray.OtsuThreshold())
	dilated := bin.DilateHorizontal(d.cfg.MorphologyKernelWidth)
	components := dilated.ConnectedComponents()

	boxes := make([]Box, 0, len(components))
	for _, c := range components {
		if c.Height() < d.cfg.MinLineHeight || c.Width() < d.cfg.MinComponentWidth {
			continue
		}
		boxes = append(boxes, Box{MinX: c.MinX, MinY: c.MinY, MaxX: c.MaxX + 1, MaxY: c.MaxY + 1})
	}
	return boxes
}

// hybridBoxes runs all three methods and keeps the one producing the most
// boxes whose heights lie within [min_line_height, 3*median(heights)],
// tie-broken by largest total covered area.
func (d *Detector) hybridBoxes(gray *cvutil.Gray) []Box {
	candidates := [][]Box{
		d.projectionBoxes(gray),
		d.clusteringBoxes(gray),
		d.morphologyBoxes(gray),
	}

	var best []Box
	bestScore := -1
	bestArea := -1
	for _, boxes := range candidates {
		inRange := inHeightRange(boxes, d.cfg.MinLineHeight)
		area := totalArea(boxes)
		if inRange > bestScore || (inRange == bestScore && area > bestArea) {
			best = boxes
			bestScore = inRange
			bestArea = area
		}
	}
	return best
}

func inHeightRange(boxes []Box, minHeight int) int {
	if len(boxes) == 0 {
		return 0
	}
	heights := make([]int, len(boxes))
	for i, b := range boxes {
		heights[i] = b.Height()
	}
	med := medianInt(heights)
	count := 0
	for _, h := range heights {
		if h >= minHeight && float64(h) <= 3*float64(med) {
			count++
		}
	}
	return count
}

func medianInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]int(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted[len(sorted)/2]
}

func totalArea(boxes []Box) int {
	var sum int
	for _, b := range boxes {
		sum += b.Area()
	}
	return sum
}

// filterNoise drops boxes with fewer than min_char_count connected
// components or height below min_line_height.
func (d *Detector) filterNoise(gray *cvutil.Gray, boxes []Box) []Box {
	bin := gray.Threshold(gray.OtsuThreshold())
	components := bin.ConnectedComponents()

	out := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		if b.Height() < d.cfg.MinLineHeight {
			continue
		}
		charCount := 0
		for _, c := range components {
			if c.CentroidY() >= float64(b.MinY) && c.CentroidY() < float64(b.MaxY) &&
				c.CentroidX() >= float64(b.MinX) && c.CentroidX() < float64(b.MaxX) {
				charCount++
			}
		}
		if charCount < d.cfg.MinCharCount {
			continue
		}
		out = append(out, b)
	}
	return out
}
