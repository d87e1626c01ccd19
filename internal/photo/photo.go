// Package photo implements the §4.6 Photometric Normalizer: a fixed
// denoise -> shadow_removal -> clahe -> sharpen -> brightness_normalize
// pipeline, plus GenerateVariants which produces the closed set of
// recognition-ready variants consumed by the ensemble recognizer (§4.7).
// Grounded on the same cvutil primitives as internal/preprocess, applied
// here with a fixed rather than user-configurable step order.
package photo

import (
	"image"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/cvutil"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/ocrimage"
)

// Variant names the closed set of photometric renderings GenerateVariants
// produces for ensemble recognition.
type Variant string

const (
	VariantBaseline        Variant = "baseline"
	VariantCLAHE           Variant = "clahe"
	VariantCLAHEStrong     Variant = "clahe_strong"
	VariantThresholdOtsu   Variant = "threshold_otsu"
	VariantInvert          Variant = "invert"
	VariantAdaptiveThresh  Variant = "adaptive_threshold"
	VariantSharp           Variant = "sharp"
)

// AllVariants is the fixed generation order.
var AllVariants = []Variant{
	VariantBaseline, VariantCLAHE, VariantCLAHEStrong, VariantThresholdOtsu,
	VariantInvert, VariantAdaptiveThresh, VariantSharp,
}

// Config parameterizes the normalization chain and each variant's
// rendering strength.
type Config struct {
	DenoiseSigma       float64
	ShadowKernelSize   int
	CLAHEClipLimit     float64
	CLAHEClipLimitHigh float64 // used by the "_strong" variant
	TileGridSize       int
	SharpenStrength    float64
	TargetMean         float64 // brightness_normalize target, 0 disables
}

// DefaultConfig returns reasonable defaults.
func DefaultConfig() Config {
	return Config{
		DenoiseSigma:       1.0,
		ShadowKernelSize:   31,
		CLAHEClipLimit:     2.0,
		CLAHEClipLimitHigh: 4.0,
		TileGridSize:       8,
		SharpenStrength:    1.0,
		TargetMean:         128,
	}
}

// Normalizer is the Photometric Normalizer.
type Normalizer struct {
	cfg Config
}

// New builds a Normalizer from cfg.
func New(cfg Config) *Normalizer { return &Normalizer{cfg: cfg} }

// Normalize applies denoise -> shadow_removal -> clahe -> sharpen ->
// brightness_normalize, in that fixed order, to img.
func (n *Normalizer) Normalize(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, ocrimage.ErrEmptyImage
	}
	gray := cvutil.ToGray(img)
	gray = gray.GaussianBlur(n.cfg.DenoiseSigma)
	gray = gray.RemoveShadow(n.cfg.ShadowKernelSize)
	gray = gray.CLAHE(n.cfg.CLAHEClipLimit, n.cfg.TileGridSize, n.cfg.TileGridSize)
	gray = gray.UnsharpMask(1.5, n.cfg.SharpenStrength)
	if n.cfg.TargetMean > 0 {
		gray = normalizeBrightness(gray, n.cfg.TargetMean)
	}
	return gray.ToImage(), nil
}

func normalizeBrightness(g *cvutil.Gray, targetMean float64) *cvutil.Gray {
	mean := g.Mean()
	if mean <= 0 {
		return g
	}
	scale := targetMean / mean
	out := cvutil.NewGray(g.W, g.H)
	for i, v := range g.Pix {
		scaled := float64(v) * scale
		if scaled < 0 {
			scaled = 0
		} else if scaled > 255 {
			scaled = 255
		}
		out.Pix[i] = uint8(scaled)
	}
	return out
}

// GenerateVariants renders the fixed closed set of photometric variants
// from a (typically already normalized) image, for per-variant recognition
// in the ensemble recognizer (§4.7). The returned map always holds one
// entry for every member of AllVariants, even when a render step degrades
// to a no-op.
func (n *Normalizer) GenerateVariants(img image.Image) (map[Variant]image.Image, error) {
	if img == nil {
		return nil, ocrimage.ErrEmptyImage
	}
	gray := cvutil.ToGray(img)
	out := make(map[Variant]image.Image, len(AllVariants))
	out[VariantBaseline] = gray.ToImage()
	out[VariantCLAHE] = gray.CLAHE(n.cfg.CLAHEClipLimit, n.cfg.TileGridSize, n.cfg.TileGridSize).ToImage()
	out[VariantCLAHEStrong] = gray.CLAHE(n.cfg.CLAHEClipLimitHigh, n.cfg.TileGridSize, n.cfg.TileGridSize).ToImage()
	out[VariantThresholdOtsu] = gray.Threshold(gray.OtsuThreshold()).ToImage()
	out[VariantInvert] = invert(gray).ToImage()
	out[VariantAdaptiveThresh] = gray.AdaptiveGaussianThreshold(25, 10).ToImage()
	out[VariantSharp] = gray.UnsharpMask(1.5, n.cfg.SharpenStrength*1.5).ToImage()
	return out, nil
}

func invert(g *cvutil.Gray) *cvutil.Gray {
	out := cvutil.NewGray(g.W, g.H)
	for i, v := range g.Pix {
		out.Pix[i] = 255 - v
	}
	return out
}
