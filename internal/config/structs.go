//nolint:lll
package config

import "github.com/dev-rafaelmachado/datalid-ocrcore/internal/preprocess"

// Config is the complete configuration for the ocrcore CLI and its
// evaluate/recognize/report subcommands, loaded from a layered YAML
// config (spec §6: base profile, engine profile, named preset, caller
// overrides) with mapstructure tags throughout, following the teacher's
// Config/Loader split.
type Config struct {
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"  json:"log_level"`
	Verbose   bool   `mapstructure:"verbose"    yaml:"verbose"    json:"verbose"`

	// Preprocess is the preprocessing profile (§4.1): a name plus an
	// ordered-by-fixed-order mapping of step name to step settings.
	Preprocess preprocess.Profile `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`

	Engine EngineProfile `mapstructure:"engine" yaml:"engine" json:"engine"`

	GPU GPUConfig `mapstructure:"gpu" yaml:"gpu" json:"gpu"`
}

// EngineProfile is spec §6's "Engine profile schema": engine is required,
// everything else is engine-kind dependent and optional.
type EngineProfile struct {
	Engine              string   `mapstructure:"engine"               yaml:"engine"               json:"engine"`
	Device              string   `mapstructure:"device"               yaml:"device"               json:"device"`
	ModelName           string   `mapstructure:"model_name"           yaml:"model_name"           json:"model_name"`
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`
	Languages           []string `mapstructure:"languages"            yaml:"languages"            json:"languages"`

	// Nested sub-configs, only meaningful for engine: parseq_enhanced.
	LineDetector          *LineDetectorProfile          `mapstructure:"line_detector"          yaml:"line_detector,omitempty"          json:"line_detector,omitempty"`
	GeometricNormalizer   *GeometricNormalizerProfile   `mapstructure:"geometric_normalizer"   yaml:"geometric_normalizer,omitempty"   json:"geometric_normalizer,omitempty"`
	PhotometricNormalizer *PhotometricNormalizerProfile `mapstructure:"photometric_normalizer" yaml:"photometric_normalizer,omitempty" json:"photometric_normalizer,omitempty"`
	Ensemble              *EnsembleProfile              `mapstructure:"ensemble"               yaml:"ensemble,omitempty"               json:"ensemble,omitempty"`
	Postprocessor         *PostprocessorProfile         `mapstructure:"postprocessor"          yaml:"postprocessor,omitempty"          json:"postprocessor,omitempty"`
	DateParser            *DateParserProfile            `mapstructure:"date_parser"            yaml:"date_parser,omitempty"            json:"date_parser,omitempty"`
}

// LineDetectorProfile mirrors linedet.Config (§4.4).
type LineDetectorProfile struct {
	Method                string  `mapstructure:"method"                  yaml:"method"                  json:"method"`
	MinLineHeight         int     `mapstructure:"min_line_height"         yaml:"min_line_height"         json:"min_line_height"`
	MinComponentWidth     int     `mapstructure:"min_component_width"     yaml:"min_component_width"     json:"min_component_width"`
	MinCharCount          int     `mapstructure:"min_char_count"          yaml:"min_char_count"          json:"min_char_count"`
	MorphologyKernelWidth int     `mapstructure:"morphology_kernel_width" yaml:"morphology_kernel_width" json:"morphology_kernel_width"`
	ClusterEpsilon        float64 `mapstructure:"cluster_epsilon"         yaml:"cluster_epsilon"         json:"cluster_epsilon"`
	RotationCorrection    bool    `mapstructure:"rotation_correction"     yaml:"rotation_correction"     json:"rotation_correction"`
	MaxRotationAngle      float64 `mapstructure:"max_rotation_angle"      yaml:"max_rotation_angle"      json:"max_rotation_angle"`
}

// GeometricNormalizerProfile mirrors geom.Config (§4.5).
type GeometricNormalizerProfile struct {
	DeskewEnabled  bool    `mapstructure:"deskew_enabled"   yaml:"deskew_enabled"   json:"deskew_enabled"`
	MaxSkewAngle   float64 `mapstructure:"max_skew_angle"   yaml:"max_skew_angle"   json:"max_skew_angle"`
	WarpEnabled    bool    `mapstructure:"warp_enabled"     yaml:"warp_enabled"     json:"warp_enabled"`
	MinAreaRatio   float64 `mapstructure:"min_area_ratio"   yaml:"min_area_ratio"   json:"min_area_ratio"`
	MaxAspect      float64 `mapstructure:"max_aspect"       yaml:"max_aspect"       json:"max_aspect"`
	MaxWarpAngle   float64 `mapstructure:"max_warp_angle"   yaml:"max_warp_angle"   json:"max_warp_angle"`
	MaxOutputScale float64 `mapstructure:"max_output_scale" yaml:"max_output_scale" json:"max_output_scale"`
	ResizeEnabled  bool    `mapstructure:"resize_enabled"   yaml:"resize_enabled"   json:"resize_enabled"`
	TargetHeight   int     `mapstructure:"target_height"    yaml:"target_height"    json:"target_height"`
	TargetWidth    int     `mapstructure:"target_width"     yaml:"target_width"     json:"target_width"`
}

// PhotometricNormalizerProfile mirrors photo.Config (§4.6).
type PhotometricNormalizerProfile struct {
	DenoiseSigma       float64 `mapstructure:"denoise_sigma"        yaml:"denoise_sigma"        json:"denoise_sigma"`
	ShadowKernelSize   int     `mapstructure:"shadow_kernel_size"   yaml:"shadow_kernel_size"   json:"shadow_kernel_size"`
	CLAHEClipLimit     float64 `mapstructure:"clahe_clip_limit"     yaml:"clahe_clip_limit"     json:"clahe_clip_limit"`
	CLAHEClipLimitHigh float64 `mapstructure:"clahe_clip_limit_high" yaml:"clahe_clip_limit_high" json:"clahe_clip_limit_high"`
	TileGridSize       int     `mapstructure:"tile_grid_size"       yaml:"tile_grid_size"       json:"tile_grid_size"`
	SharpenStrength    float64 `mapstructure:"sharpen_strength"     yaml:"sharpen_strength"     json:"sharpen_strength"`
	TargetMean         float64 `mapstructure:"target_mean"          yaml:"target_mean"          json:"target_mean"`
}

// RerankerProfile carries the §4.7 weighted-rerank formula's weights,
// which must sum to 1.
type RerankerProfile struct {
	Weights map[string]float64 `mapstructure:"weights" yaml:"weights" json:"weights"`
}

// EnsembleProfile mirrors enhanced.Config's ensemble-specific fields.
type EnsembleProfile struct {
	Strategy     string          `mapstructure:"strategy"      yaml:"strategy"      json:"strategy"`
	NumVariants  int             `mapstructure:"num_variants"  yaml:"num_variants"  json:"num_variants"`
	VariantTypes []string        `mapstructure:"variant_types" yaml:"variant_types" json:"variant_types"`
	Reranker     RerankerProfile `mapstructure:"reranker"      yaml:"reranker"      json:"reranker"`
}

// PostprocessorProfile mirrors postprocess.Config (§4.8).
type PostprocessorProfile struct {
	KnownWords       []string        `mapstructure:"known_words"       yaml:"known_words"       json:"known_words"`
	ExpectedPatterns []string        `mapstructure:"expected_patterns" yaml:"expected_patterns" json:"expected_patterns"`
	FuzzyThreshold   int             `mapstructure:"fuzzy_threshold"   yaml:"fuzzy_threshold"   json:"fuzzy_threshold"`
	Enabled          map[string]bool `mapstructure:"enabled"           yaml:"enabled"           json:"enabled"`
}

// DateParserProfile mirrors dateparse.Config (§4.9).
type DateParserProfile struct {
	DateFormats []string `mapstructure:"date_formats" yaml:"date_formats" json:"date_formats"`
	MinYear     int      `mapstructure:"min_year"     yaml:"min_year"     json:"min_year"`
	MaxYear     int      `mapstructure:"max_year"     yaml:"max_year"     json:"max_year"`
	AllowPast   bool     `mapstructure:"allow_past"   yaml:"allow_past"   json:"allow_past"`
}

// GPUConfig carries GPU acceleration settings, shared across every
// ONNX-backed engine kind.
type GPUConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Device  int  `mapstructure:"device"  yaml:"device"  json:"device"`
}

// GroundTruth is spec §6's ground-truth file schema: a JSON document
// mapping image filename to expected text, matched case-sensitively.
type GroundTruth struct {
	Annotations map[string]string `json:"annotations"`
}
