// Package geom implements the §4.5 Geometric Normalizer: deskew, a
// sanity-gated perspective warp, and resize. The warp machinery (4-point
// homography + inverse-mapped bilinear sampling) is adapted from the
// teacher's internal/rectify UVDoc warping path, generalized from a
// model-predicted quad to one derived from the largest binarized contour.
package geom

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/cvutil"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/ocrimage"
	"github.com/disintegration/imaging"
)

// Point is a 2-D coordinate in image space.
type Point struct{ X, Y float64 }

// Config controls the Geometric Normalizer.
type Config struct {
	// deskew
	DeskewEnabled bool
	MaxSkewAngle  float64 // degrees

	// perspective warp sanity gates (spec §4.5 edge cases)
	WarpEnabled      bool
	MinAreaRatio     float64 // contour area / image area, default 0.30
	MaxAspect        float64 // max(w,h)/min(w,h), default 20
	MaxWarpAngle     float64 // degrees, default 15
	MaxOutputScale   float64 // output area <= MaxOutputScale * input area, default 2.0

	// resize
	ResizeEnabled bool
	TargetHeight  int
	TargetWidth   int
}

// DefaultConfig mirrors the teacher's rectify.DefaultConfig gating defaults.
func DefaultConfig() Config {
	return Config{
		DeskewEnabled:  true,
		MaxSkewAngle:   15,
		WarpEnabled:    true,
		MinAreaRatio:   0.30,
		MaxAspect:      20,
		MaxWarpAngle:   15,
		MaxOutputScale: 2.0,
		ResizeEnabled:  false,
	}
}

// ErrWarpRejected is returned (wrapped) by Warp when a sanity gate fails;
// callers treat it as "skip warp, keep input", never a hard failure.
var ErrWarpRejected = errors.New("geom: perspective warp rejected by sanity gate")

// Normalizer is the Geometric Normalizer.
type Normalizer struct {
	cfg Config
}

// New builds a Normalizer from cfg.
func New(cfg Config) *Normalizer { return &Normalizer{cfg: cfg} }

// Normalize applies deskew, then perspective warp (if the contour passes
// sanity gates), then resize, in that order.
func (n *Normalizer) Normalize(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, ocrimage.ErrEmptyImage
	}
	cur := img
	if n.cfg.DeskewEnabled {
		cur = n.Deskew(cur)
	}
	if n.cfg.WarpEnabled {
		if warped, err := n.Warp(cur); err == nil {
			cur = warped
		}
		// ErrWarpRejected: keep cur unwarped, not an error for the caller.
	}
	if n.cfg.ResizeEnabled {
		cur = n.Resize(cur)
	}
	return cur, nil
}

// Deskew estimates the skew angle via cvutil's Hough-line estimator and
// rotates the image to correct it. The rotated canvas expands to fit the
// full source, background-filled white to avoid a black border confusing
// downstream binarization.
func (n *Normalizer) Deskew(img image.Image) image.Image {
	gray := cvutil.ToGray(img)
	angle := gray.EstimateSkewAngle(n.cfg.MaxSkewAngle)
	if angle == 0 {
		return img
	}
	return imaging.Rotate(img, angle, color.White)
}

// Warp estimates an oriented bounding rectangle over the dominant
// foreground contour and, if it passes all sanity gates, perspective-warps
// the quad to a fronto-parallel rectangle. Returns ErrWarpRejected (with
// the original image untouched by the caller) when any gate fails.
func (n *Normalizer) Warp(img image.Image) (image.Image, error) {
	gray := cvutil.ToGray(img)
	contour, ok := gray.LargestContour()
	if !ok {
		return img, ErrWarpRejected
	}
	imgArea := float64(gray.W * gray.H)
	if imgArea <= 0 {
		return img, ErrWarpRejected
	}
	if contour.Area/imgArea < n.cfg.MinAreaRatio {
		return img, ErrWarpRejected
	}
	w, h := contour.RectW, contour.RectH
	if w <= 0 || h <= 0 {
		return img, ErrWarpRejected
	}
	aspect := w / h
	if aspect < 1 {
		aspect = 1 / aspect
	}
	if aspect > n.cfg.MaxAspect {
		return img, ErrWarpRejected
	}
	if math.Abs(contour.AngleDegrees) > n.cfg.MaxWarpAngle {
		return img, ErrWarpRejected
	}

	quad := quadFromAABBAndAngle(contour.AABB, contour.AngleDegrees)
	targetW, targetH := int(w+0.5), int(h+0.5)
	if targetW < 1 || targetH < 1 {
		return img, ErrWarpRejected
	}
	if float64(targetW*targetH) > n.cfg.MaxOutputScale*imgArea {
		return img, ErrWarpRejected
	}

	dst := warpPerspective(img, quad, targetW, targetH)
	if dst == nil {
		return img, ErrWarpRejected
	}
	return dst, nil
}

// Resize scales img to the configured target dimensions, preserving aspect
// when only one of width/height is set.
func (n *Normalizer) Resize(img image.Image) image.Image {
	w, h := n.cfg.TargetWidth, n.cfg.TargetHeight
	if w <= 0 && h <= 0 {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func quadFromAABBAndAngle(aabb cvutil.Component, angleDeg float64) []Point {
	cx := float64(aabb.MinX+aabb.MaxX) / 2
	cy := float64(aabb.MinY+aabb.MaxY) / 2
	hw := float64(aabb.Width()) / 2
	hh := float64(aabb.Height()) / 2
	theta := angleDeg * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	rot := func(dx, dy float64) Point {
		return Point{X: cx + dx*cosT - dy*sinT, Y: cy + dx*sinT + dy*cosT}
	}
	return []Point{
		rot(-hw, -hh), rot(hw, -hh), rot(hw, hh), rot(-hw, hh),
	}
}
