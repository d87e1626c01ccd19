package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownEngineKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Engine = "not_a_real_engine"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Engine = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeConfidenceThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.ConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidateRerankerWeightsMustSumToOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Engine = "parseq_enhanced"
	cfg.Engine.Ensemble = &EnsembleProfile{
		Strategy: "rerank",
		Reranker: RerankerProfile{Weights: map[string]float64{"confidence": 0.5, "pattern": 0.2}},
	}
	assert.Error(t, cfg.Validate())

	cfg.Engine.Ensemble.Reranker.Weights["pattern"] = 0.5
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Engine = "parseq_enhanced"
	cfg.Engine.Ensemble = &EnsembleProfile{Strategy: "majority"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadExpectedPatternRegex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Postprocessor = &PostprocessorProfile{ExpectedPatterns: []string{"("}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownPreprocessStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preprocess.Steps["not_a_step"] = cfg.Preprocess.Steps["grayscale"]
	assert.Error(t, cfg.Validate())
}

func TestBuildEngineDispatchesToTesseract(t *testing.T) {
	cfg := DefaultConfig()
	eng, err := cfg.BuildEngine()
	require.NoError(t, err)
	assert.Equal(t, "tesseract", eng.GetName())
}

func TestBuildEngineUnknownKindErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Engine = "bogus"
	_, err := cfg.BuildEngine()
	assert.Error(t, err)
}

func TestBuildEngineParseqEnhancedWiresUnderlyingRecognizer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Engine = "parseq_enhanced"
	eng, err := cfg.BuildEngine()
	require.NoError(t, err)
	assert.Equal(t, "parseq_enhanced", eng.GetName())
}

func TestBuildDateParserFallsBackToDefaults(t *testing.T) {
	cfg := DefaultConfig()
	parserCfg := cfg.BuildDateParser()
	assert.Equal(t, 1900, parserCfg.MinYear)
}

func TestBuildDateParserHonorsOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.DateParser = &DateParserProfile{MinYear: 2000, MaxYear: 2099, AllowPast: false}
	parserCfg := cfg.BuildDateParser()
	assert.Equal(t, 2000, parserCfg.MinYear)
	assert.Equal(t, 2099, parserCfg.MaxYear)
	assert.False(t, parserCfg.AllowPast)
}
