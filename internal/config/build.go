package config

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/dateparse"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/easyocr"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/enhanced"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/openocr"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/paddleocr"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/parseq"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/tesseract"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/trocr"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/geom"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/linedet"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/onnx"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/photo"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/postprocess"
)

// BuildEngine resolves the engine profile into a concrete, constructed
// engine.Engine, following spec §6's "engine: string" dispatch plus
// engine-kind-dependent optional fields. Callers still must call
// Initialize on the result.
func (c *Config) BuildEngine() (engine.Engine, error) {
	gpu := onnx.GPUConfig{UseGPU: c.GPU.Enabled, DeviceID: c.GPU.Device}

	switch engine.Kind(c.Engine.Engine) {
	case engine.KindTesseract:
		cfg := tesseract.DefaultConfig()
		if len(c.Engine.Languages) > 0 {
			cfg.Languages = c.Engine.Languages
		}
		return tesseract.New(cfg), nil

	case engine.KindEasyOCR:
		cfg := easyocr.DefaultConfig()
		cfg.ModelPath = c.modelPath("easyocr.onnx")
		cfg.DictPath = c.dictPath()
		cfg.GPU = gpu
		return easyocr.New(cfg), nil

	case engine.KindPaddleOCR:
		cfg := paddleocr.DefaultConfig()
		cfg.ModelPath = c.modelPath("paddleocr.onnx")
		cfg.DictPath = c.dictPath()
		cfg.GPU = gpu
		if c.Engine.ConfidenceThreshold > 0 {
			cfg.ConfidenceThreshold = c.Engine.ConfidenceThreshold
		}
		return paddleocr.New(cfg), nil

	case engine.KindTrOCR:
		cfg := trocr.DefaultConfig()
		cfg.ModelPath = c.modelPath("trocr")
		cfg.VocabPath = c.dictPath()
		cfg.GPU = gpu
		return trocr.New(cfg), nil

	case engine.KindPARSeq:
		return c.buildPARSeq(gpu)

	case engine.KindOpenOCR:
		cfg := openocr.DefaultConfig()
		cfg.ModelPath = c.modelPath("openocr.onnx")
		cfg.DictPath = c.dictPath()
		cfg.GPU = gpu
		if c.Engine.Device == "torch" {
			cfg.Backend = openocr.BackendTorch
		}
		return openocr.New(cfg), nil

	case engine.KindPARSeqEnhanced:
		return c.buildEnhanced(gpu)

	default:
		return nil, fmt.Errorf("config: unknown engine kind %q", c.Engine.Engine)
	}
}

func (c *Config) buildPARSeq(gpu onnx.GPUConfig) (engine.Engine, error) {
	cfg := parseq.DefaultConfig()
	cfg.ModelPath = c.modelPath("parseq.onnx")
	cfg.DictPath = c.dictPath()
	cfg.GPU = gpu
	if c.Engine.ModelName != "" {
		cfg.ModelName = c.Engine.ModelName
	}
	return parseq.New(cfg), nil
}

// buildEnhanced wires the §4.7 Ensemble Recognizer, whose underlying
// per-line recognizer is "PARSeq-equivalent" per spec's own wording.
func (c *Config) buildEnhanced(gpu onnx.GPUConfig) (engine.Engine, error) {
	underlying, err := c.buildPARSeq(gpu)
	if err != nil {
		return nil, err
	}

	cfg := enhanced.DefaultConfig()
	if c.Engine.LineDetector != nil {
		cfg.LineDetector = buildLineDetector(c.Engine.LineDetector)
	}
	if c.Engine.GeometricNormalizer != nil {
		cfg.Geometric = buildGeometric(c.Engine.GeometricNormalizer)
	}
	if c.Engine.PhotometricNormalizer != nil {
		cfg.Photometric = buildPhotometric(c.Engine.PhotometricNormalizer)
	}
	if c.Engine.Postprocessor != nil {
		pp, err := buildPostprocessor(c.Engine.Postprocessor)
		if err != nil {
			return nil, err
		}
		cfg.Postprocessor = pp
	}
	if c.Engine.Ensemble != nil {
		if c.Engine.Ensemble.Strategy != "" {
			cfg.Strategy = enhanced.Strategy(c.Engine.Ensemble.Strategy)
		}
		cfg.EnsembleEnabled = c.Engine.Ensemble.NumVariants != 1
	}

	return enhanced.New(cfg, underlying), nil
}

func buildLineDetector(p *LineDetectorProfile) linedet.Config {
	cfg := linedet.DefaultConfig()
	if p.Method != "" {
		cfg.Method = linedet.Method(p.Method)
	}
	if p.MinLineHeight > 0 {
		cfg.MinLineHeight = p.MinLineHeight
	}
	if p.MinComponentWidth > 0 {
		cfg.MinComponentWidth = p.MinComponentWidth
	}
	if p.MinCharCount > 0 {
		cfg.MinCharCount = p.MinCharCount
	}
	if p.MorphologyKernelWidth > 0 {
		cfg.MorphologyKernelWidth = p.MorphologyKernelWidth
	}
	if p.ClusterEpsilon > 0 {
		cfg.ClusterEpsilon = p.ClusterEpsilon
	}
	cfg.RotationCorrection = p.RotationCorrection
	if p.MaxRotationAngle > 0 {
		cfg.MaxRotationAngle = p.MaxRotationAngle
	}
	return cfg
}

func buildGeometric(p *GeometricNormalizerProfile) geom.Config {
	cfg := geom.DefaultConfig()
	cfg.DeskewEnabled = p.DeskewEnabled
	if p.MaxSkewAngle > 0 {
		cfg.MaxSkewAngle = p.MaxSkewAngle
	}
	cfg.WarpEnabled = p.WarpEnabled
	if p.MinAreaRatio > 0 {
		cfg.MinAreaRatio = p.MinAreaRatio
	}
	if p.MaxAspect > 0 {
		cfg.MaxAspect = p.MaxAspect
	}
	if p.MaxWarpAngle > 0 {
		cfg.MaxWarpAngle = p.MaxWarpAngle
	}
	if p.MaxOutputScale > 0 {
		cfg.MaxOutputScale = p.MaxOutputScale
	}
	cfg.ResizeEnabled = p.ResizeEnabled
	if p.TargetHeight > 0 {
		cfg.TargetHeight = p.TargetHeight
	}
	if p.TargetWidth > 0 {
		cfg.TargetWidth = p.TargetWidth
	}
	return cfg
}

func buildPhotometric(p *PhotometricNormalizerProfile) photo.Config {
	cfg := photo.DefaultConfig()
	if p.DenoiseSigma > 0 {
		cfg.DenoiseSigma = p.DenoiseSigma
	}
	if p.ShadowKernelSize > 0 {
		cfg.ShadowKernelSize = p.ShadowKernelSize
	}
	if p.CLAHEClipLimit > 0 {
		cfg.CLAHEClipLimit = p.CLAHEClipLimit
	}
	if p.CLAHEClipLimitHigh > 0 {
		cfg.CLAHEClipLimitHigh = p.CLAHEClipLimitHigh
	}
	if p.TileGridSize > 0 {
		cfg.TileGridSize = p.TileGridSize
	}
	if p.SharpenStrength > 0 {
		cfg.SharpenStrength = p.SharpenStrength
	}
	if p.TargetMean > 0 {
		cfg.TargetMean = p.TargetMean
	}
	return cfg
}

func buildPostprocessor(p *PostprocessorProfile) (postprocess.Config, error) {
	cfg := postprocess.DefaultConfig()
	if len(p.Enabled) > 0 {
		enabled := make(map[postprocess.StepName]bool, len(postprocess.Order))
		for _, step := range postprocess.Order {
			if v, ok := p.Enabled[string(step)]; ok {
				enabled[step] = v
			} else {
				enabled[step] = true
			}
		}
		cfg.Enabled = enabled
	}
	cfg.KnownWords = p.KnownWords
	if p.FuzzyThreshold > 0 {
		cfg.FuzzyThreshold = p.FuzzyThreshold
	}
	patterns := make([]*regexp.Regexp, 0, len(p.ExpectedPatterns))
	for _, raw := range p.ExpectedPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return postprocess.Config{}, fmt.Errorf("config: expected_patterns %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}
	cfg.ExpectedPatterns = patterns
	return cfg, nil
}

// BuildDateParser resolves the engine profile's date_parser sub-config
// into dateparse.Config, falling back to defaults when absent.
func (c *Config) BuildDateParser() dateparse.Config {
	cfg := dateparse.DefaultConfig()
	p := c.Engine.DateParser
	if p == nil {
		return cfg
	}
	if p.MinYear > 0 {
		cfg.MinYear = p.MinYear
	}
	if p.MaxYear > 0 {
		cfg.MaxYear = p.MaxYear
	}
	if len(p.DateFormats) > 0 {
		formats := make([]dateparse.Format, 0, len(p.DateFormats))
		for _, f := range p.DateFormats {
			formats = append(formats, dateparse.Format(f))
		}
		cfg.Formats = formats
	}
	cfg.AllowPast = p.AllowPast
	return cfg
}

func (c *Config) modelPath(name string) string {
	if c.Engine.ModelName != "" {
		return filepath.Join(c.ModelsDir, c.Engine.ModelName)
	}
	return filepath.Join(c.ModelsDir, name)
}

func (c *Config) dictPath() string {
	return filepath.Join(c.ModelsDir, "dict.txt")
}
