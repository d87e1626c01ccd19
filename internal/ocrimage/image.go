// Package ocrimage defines the image/mask/crop data model shared by every
// stage of the OCR core: preprocessing, normalization, recognition and
// evaluation all operate on these types.
package ocrimage

import (
	"errors"
	"image"
	"image/color"
)

// ErrEmptyImage is returned by any stage given a zero-width or zero-height image.
var ErrEmptyImage = errors.New("ocrimage: empty image")

// Channels reports the channel count the pipeline should treat img as having:
// 1 for greyscale-ish images (image.Gray, image.Gray16), 3 otherwise (BGR at
// engine boundaries, RGB internally). No step may assume a fixed channel
// count; every transform must call this first.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	default:
		return 3
	}
}

// IsEmpty reports whether img has zero width or height.
func IsEmpty(img image.Image) bool {
	if img == nil {
		return true
	}
	b := img.Bounds()
	return b.Dx() <= 0 || b.Dy() <= 0
}

// Fill is a padding/border fill color. The original system accepted either a
// scalar or an (R,G,B) triple interchangeably for fill colors; ParseFill
// reproduces that leniency so callers configuring a single grey value don't
// need to spell out a triple.
type Fill struct {
	R, G, B, A uint8
}

// White is the default mask fill used by the full-pipeline adapter.
var White = Fill{R: 255, G: 255, B: 255, A: 255}

// Black is the default padding fill used by several preprocessing steps.
var Black = Fill{A: 255}

// ParseFill accepts either a single scalar (applied to all three channels)
// or an explicit (r,g,b) triple. vals must have length 1 or 3.
func ParseFill(vals []int) (Fill, error) {
	switch len(vals) {
	case 1:
		v := clampByte(vals[0])
		return Fill{R: v, G: v, B: v, A: 255}, nil
	case 3:
		return Fill{R: clampByte(vals[0]), G: clampByte(vals[1]), B: clampByte(vals[2]), A: 255}, nil
	default:
		return Fill{}, errors.New("ocrimage: fill must have 1 or 3 components")
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v) //nolint:gosec // clamped above
}

// Color converts a Fill to a color.Color respecting the target channel count.
func (f Fill) Color(channels int) color.Color {
	if channels == 1 {
		// Rec. 601 luma approximation, consistent with cvutil.ToGray.
		y := uint8((299*int(f.R) + 587*int(f.G) + 114*int(f.B)) / 1000) //nolint:gosec // weighted avg of bytes
		return color.Gray{Y: y}
	}
	return color.NRGBA{R: f.R, G: f.G, B: f.B, A: f.A}
}

// Mask is a binary 2-D array aligned to an Image, used by the full-pipeline
// adapter to blank out non-region pixels before handing a crop to the OCR
// core. A mask pixel of true means "keep the source pixel".
type Mask struct {
	Keep  []bool
	W, H  int
}

// NewMask allocates a mask of the given size, fully kept.
func NewMask(w, h int) *Mask {
	keep := make([]bool, w*h)
	for i := range keep {
		keep[i] = true
	}
	return &Mask{Keep: keep, W: w, H: h}
}

// At reports whether pixel (x,y) should be kept. Out-of-bounds reads are
// treated as "not kept" so a mismatched mask never keeps more than it has
// data for.
func (m *Mask) At(x, y int) bool {
	if m == nil {
		return true
	}
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Keep[y*m.W+x]
}

// ApplyMask returns a copy of img with every pixel where mask.At is false
// replaced by fill. A nil mask returns img unchanged.
func ApplyMask(img image.Image, mask *Mask, fill Fill) image.Image {
	if mask == nil || img == nil {
		return img
	}
	b := img.Bounds()
	channels := Channels(img)
	fillColor := fill.Color(channels)
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.At(x-b.Min.X, y-b.Min.Y) {
				out.Set(x, y, img.At(x, y))
			} else {
				out.Set(x, y, fillColor)
			}
		}
	}
	return out
}

// Box is an axis-aligned bounding box in pixel coordinates, [x1,y1,x2,y2]
// with x2/y2 exclusive, matching the wire format in SPEC_FULL §6.
type Box struct {
	X1, Y1, X2, Y2 float64
}

func (b Box) Width() float64  { return b.X2 - b.X1 }
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Contains reports whether b lies fully within outer — used to enforce the
// line-detector invariant that output boxes never leave the input image.
func (b Box) Contains(outer Box) bool {
	return b.X1 >= outer.X1 && b.Y1 >= outer.Y1 && b.X2 <= outer.X2 && b.Y2 <= outer.Y2
}

// Crop is the tuple (image, optional mask, bbox) produced by the upstream
// detector and handed to the OCR core. The OCR core never re-detects; it
// only ever receives a Crop.
type Crop struct {
	Image image.Image
	Mask  *Mask
	Box   Box
}

// ClampConfidence clamps a confidence value to [0,1], as required of every
// recognition result.
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
