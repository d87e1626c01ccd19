// Package linedet implements the Line Detector (§4.4): locating individual
// text-line bounding boxes inside a crop before per-line recognition. Built
// on the same classical-CV primitives (internal/cvutil) the teacher's
// internal/detector package uses for its DB post-processing — connected
// components, row profiles, morphological dilation, Hough-based skew — but
// retargeted from "find text regions in a full page" to "find text lines in
// an already-localized crop".
package linedet

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/cvutil"
)

// Box is an axis-aligned line bounding box in image pixel coordinates.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

func (b Box) Width() int   { return b.MaxX - b.MinX }
func (b Box) Height() int  { return b.MaxY - b.MinY }
func (b Box) YCenter() int { return (b.MinY + b.MaxY) / 2 }
func (b Box) Area() int    { return b.Width() * b.Height() }

// Method is the closed set of line-detection strategies.
type Method string

const (
	MethodProjection Method = "projection"
	MethodClustering Method = "clustering"
	MethodMorphology Method = "morphology"
	MethodHybrid     Method = "hybrid"
)

// Config controls detection thresholds. Field names mirror spec §4.4 terms.
type Config struct {
	Method                Method
	MinLineHeight         int
	MinComponentWidth     int
	MinCharCount          int
	MorphologyKernelWidth int
	ClusterEpsilon        float64
	RotationCorrection    bool
	MaxRotationAngle      float64
}

// DefaultConfig matches spec §4.4's defaults (5° max rotation, hybrid method).
func DefaultConfig() Config {
	return Config{
		Method:                MethodHybrid,
		MinLineHeight:         8,
		MinComponentWidth:     3,
		MinCharCount:          1,
		MorphologyKernelWidth: 25,
		ClusterEpsilon:        10,
		RotationCorrection:    true,
		MaxRotationAngle:      5,
	}
}

// Detector locates text lines within an image.
type Detector struct {
	cfg Config
}

// New builds a Detector.
func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// DetectLines returns the ordered (top-to-bottom) set of line boxes found in
// img. Per spec's failure mode, it never returns an empty slice for a non-nil
// image: if no line survives filtering, the whole image is returned as a
// single box. A nil image returns nil.
func (d *Detector) DetectLines(img image.Image) []Box {
	if img == nil {
		return nil
	}
	working := img
	if d.cfg.RotationCorrection {
		working = d.correctRotation(img)
	}
	gray := cvutil.ToGray(working)

	var boxes []Box
	switch d.cfg.Method {
	case MethodProjection:
		boxes = d.projectionBoxes(gray)
	case MethodClustering:
		boxes = d.clusteringBoxes(gray)
	case MethodMorphology:
		boxes = d.morphologyBoxes(gray)
	default:
		boxes = d.hybridBoxes(gray)
	}

	boxes = d.filterNoise(gray, boxes)
	if len(boxes) == 0 {
		b := working.Bounds()
		return []Box{{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y}}
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].YCenter() < boxes[j].YCenter() })
	return boxes
}

// SplitLines crops img according to DetectLines' boxes.
func (d *Detector) SplitLines(img image.Image) []image.Image {
	boxes := d.DetectLines(img)
	out := make([]image.Image, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, imaging.Crop(img, image.Rect(b.MinX, b.MinY, b.MaxX, b.MaxY)))
	}
	return out
}

// VisualizeLines draws each box's outline in red onto a copy of img, for
// debugging (consumed by the evaluator's debug_images output).
func VisualizeLines(img image.Image, boxes []Box) image.Image {
	canvas := imaging.Clone(img)
	bounds := canvas.Bounds()
	for _, b := range boxes {
		for x := b.MinX; x < b.MaxX; x++ {
			setIfIn(canvas, bounds, x, b.MinY)
			setIfIn(canvas, bounds, x, b.MaxY-1)
		}
		for y := b.MinY; y < b.MaxY; y++ {
			setIfIn(canvas, bounds, b.MinX, y)
			setIfIn(canvas, bounds, b.MaxX-1, y)
		}
	}
	return canvas
}

func setIfIn(img *image.NRGBA, bounds image.Rectangle, x, y int) {
	if (image.Point{X: x, Y: y}).In(bounds) {
		img.Set(x, y, color.RGBA{R: 255, A: 255})
	}
}

// correctRotation estimates global skew via Hough lines and rotates the
// whole image if within the configured angle budget.
func (d *Detector) correctRotation(img image.Image) image.Image {
	gray := cvutil.ToGray(img)
	angle := gray.EstimateSkewAngle(45)
	if angle == 0 || math.Abs(angle) > d.cfg.MaxRotationAngle {
		return img
	}
	return imaging.Rotate(img, angle, color.White)
}
