// Package preprocess implements the §4.1 Preprocessor: an ordered,
// independently-toggleable stack of image transforms applied to a single
// crop before recognition.
package preprocess

import (
	"image"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/ocrimage"
	"github.com/disintegration/imaging"
)

// StepName enumerates the closed set of supported preprocessing steps, in
// the fixed order they are always applied when enabled.
type StepName string

const (
	StepNormalizeColors      StepName = "normalize_colors"
	StepResize               StepName = "resize"
	StepGrayscale            StepName = "grayscale"
	StepDeskew               StepName = "deskew"
	StepCLAHE                StepName = "clahe"
	StepMorphology           StepName = "morphology"
	StepSharpen              StepName = "sharpen"
	StepDenoise              StepName = "denoise"
	StepThreshold            StepName = "threshold"
	StepPadding              StepName = "padding"
	StepBrightnessNormalize  StepName = "brightness_normalize"
)

// Order is the fixed application order for every step, regardless of the
// order in which they are declared in configuration.
var Order = []StepName{
	StepNormalizeColors,
	StepResize,
	StepGrayscale,
	StepDeskew,
	StepCLAHE,
	StepMorphology,
	StepSharpen,
	StepDenoise,
	StepThreshold,
	StepPadding,
	StepBrightnessNormalize,
}

// StepConfig holds the enabled flag plus step-specific parameters. Unused
// fields are simply ignored by steps that don't need them.
type StepConfig struct {
	Name    StepName `mapstructure:"-"        yaml:"-"        json:"-"`
	Enabled bool     `mapstructure:"enabled"  yaml:"enabled"  json:"enabled"`

	// normalize_colors
	Method string `mapstructure:"method" yaml:"method" json:"method"`

	// resize
	MinHeight      int    `mapstructure:"min_height"      yaml:"min_height"      json:"min_height"`
	MinWidth       int    `mapstructure:"min_width"       yaml:"min_width"       json:"min_width"`
	Target         int    `mapstructure:"target"          yaml:"target"          json:"target"`
	MaintainAspect bool   `mapstructure:"maintain_aspect" yaml:"maintain_aspect" json:"maintain_aspect"`
	Interpolation  string `mapstructure:"interpolation"   yaml:"interpolation"   json:"interpolation"`

	// deskew
	MaxAngle float64 `mapstructure:"max_angle" yaml:"max_angle" json:"max_angle"`

	// clahe
	ClipLimit float64 `mapstructure:"clip_limit" yaml:"clip_limit" json:"clip_limit"`
	TileGridX int     `mapstructure:"tile_grid_x" yaml:"tile_grid_x" json:"tile_grid_x"`
	TileGridY int     `mapstructure:"tile_grid_y" yaml:"tile_grid_y" json:"tile_grid_y"`

	// morphology
	Op         string `mapstructure:"op"          yaml:"op"          json:"op"`
	KernelSize int    `mapstructure:"kernel_size" yaml:"kernel_size" json:"kernel_size"`

	// sharpen
	Strength float64 `mapstructure:"strength" yaml:"strength" json:"strength"`

	// denoise
	Sigma float64 `mapstructure:"sigma" yaml:"sigma" json:"sigma"`

	// threshold
	BlockSize int     `mapstructure:"block_size" yaml:"block_size" json:"block_size"`
	C         float64 `mapstructure:"c"          yaml:"c"          json:"c"`
	Fixed     int     `mapstructure:"fixed"      yaml:"fixed"      json:"fixed"`

	// padding
	Pixels int   `mapstructure:"pixels" yaml:"pixels" json:"pixels"`
	Fill   []int `mapstructure:"fill"   yaml:"fill"   json:"fill"` // scalar ([1]) or RGB triple ([3])

	// brightness_normalize
	TargetMean float64 `mapstructure:"target_mean" yaml:"target_mean" json:"target_mean"`
	Alpha      float64 `mapstructure:"alpha"       yaml:"alpha"       json:"alpha"`
}

// Profile is an ordered preprocessing profile: a name plus a map of step
// configurations, declared in configuration and instantiated into a
// Pipeline. Step order is always Order, never the declaration order.
type Profile struct {
	Name  string                `mapstructure:"name"  yaml:"name"  json:"name"`
	Steps map[StepName]StepConfig `mapstructure:"steps" yaml:"steps" json:"steps"`
}

// DefaultProfile returns an all-disabled profile — process(image) == image,
// satisfying the empty-profile idempotence invariant in spec §8.
func DefaultProfile() Profile {
	return Profile{Name: "default", Steps: map[StepName]StepConfig{}}
}

// Pipeline applies an ordered set of preprocessing transforms to a crop.
type Pipeline struct {
	profile Profile
	strict  bool // if true, a step failure aborts instead of being skipped
}

// NewPipeline instantiates a Pipeline from a Profile.
func NewPipeline(profile Profile) *Pipeline {
	return &Pipeline{profile: profile}
}

// WithStrict toggles strict mode: by default a step failure is logged and
// skipped (spec §4.1 Errors); in strict mode the first failure aborts.
func (p *Pipeline) WithStrict(strict bool) *Pipeline {
	p.strict = strict
	return p
}

func (p *Pipeline) stepConfig(name StepName) (StepConfig, bool) {
	cfg, ok := p.profile.Steps[name]
	return cfg, ok && cfg.Enabled
}

// Process applies every enabled step, in fixed order, to img.
func (p *Pipeline) Process(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, ocrimage.ErrEmptyImage
	}
	cur := img
	for _, name := range Order {
		cfg, enabled := p.stepConfig(name)
		if !enabled {
			continue
		}
		next, err := applyStep(name, cur, cfg)
		if err != nil {
			if p.strict {
				return nil, &StepError{Step: string(name), Err: err}
			}
			// Contained: log and skip, pipeline continues with the
			// unmodified image per spec §4.1 Errors.
			logStepFailure(name, err)
			continue
		}
		cur = next
	}
	return cur, nil
}

// VisualizeSteps returns the intermediate result after each enabled step,
// keyed by step name, for debugging — mirrors the teacher's debug-image
// dumping in pipeline/visualize.go.
func (p *Pipeline) VisualizeSteps(img image.Image) (map[string]image.Image, error) {
	out := map[string]image.Image{"00_original": img}
	if img == nil {
		return out, ocrimage.ErrEmptyImage
	}
	cur := img
	for _, name := range Order {
		cfg, enabled := p.stepConfig(name)
		if !enabled {
			continue
		}
		next, err := applyStep(name, cur, cfg)
		if err != nil {
			logStepFailure(name, err)
			continue
		}
		cur = next
		out[string(name)] = cur
	}
	return out, nil
}

// StepError wraps a single-step failure with the offending step name.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return "preprocess: step " + e.Step + " failed: " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

func applyStep(name StepName, img image.Image, cfg StepConfig) (image.Image, error) {
	switch name {
	case StepNormalizeColors:
		return normalizeColors(img, cfg)
	case StepResize:
		return resizeStep(img, cfg)
	case StepGrayscale:
		return grayscaleStep(img)
	case StepDeskew:
		return deskewStep(img, cfg)
	case StepCLAHE:
		return claheStep(img, cfg)
	case StepMorphology:
		return morphologyStep(img, cfg)
	case StepSharpen:
		return sharpenStep(img, cfg)
	case StepDenoise:
		return denoiseStep(img, cfg)
	case StepThreshold:
		return thresholdStep(img, cfg)
	case StepPadding:
		return paddingStep(img, cfg)
	case StepBrightnessNormalize:
		return brightnessNormalizeStep(img, cfg)
	default:
		return img, nil
	}
}

// grayscaleStep converts BGR/RGB to a single channel; no-op if already grey.
func grayscaleStep(img image.Image) (image.Image, error) {
	if ocrimage.Channels(img) == 1 {
		return img, nil
	}
	return imaging.Grayscale(img), nil
}
