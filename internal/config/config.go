package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/preprocess"
)

const infoLevel = "info"

// DefaultConfig returns a configuration with sensible defaults: the
// tesseract engine, an all-disabled (identity) preprocessing profile, GPU
// off — matching the teacher's DefaultConfig convention of delegating to
// each sub-package's own DefaultConfig.
func DefaultConfig() Config {
	return Config{
		ModelsDir:  "./models",
		LogLevel:   infoLevel,
		Verbose:    false,
		Preprocess: preprocess.DefaultProfile(),
		Engine: EngineProfile{
			Engine:              string(engine.KindTesseract),
			ConfidenceThreshold: 0.3,
		},
		GPU: GPUConfig{Enabled: false, Device: 0},
	}
}

// validateBasicEnums validates log level.
func (c *Config) validateBasicEnums() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	return nil
}

// validateEngine validates the closed-set engine kind and engine-specific
// nested sub-configs, per spec §6's "Engine profile schema".
func (c *Config) validateEngine() error {
	if c.Engine.Engine == "" {
		return errors.New("config: engine.engine is required")
	}
	if !engine.IsValidKind(c.Engine.Engine) {
		return fmt.Errorf("config: engine.engine %q is not a recognized engine kind (valid: %v)", c.Engine.Engine, engine.ValidKinds)
	}

	if c.Engine.ConfidenceThreshold < 0 || c.Engine.ConfidenceThreshold > 1 {
		return fmt.Errorf("invalid engine.confidence_threshold: %.2f (must be between 0.0 and 1.0)", c.Engine.ConfidenceThreshold)
	}

	if c.Engine.Ensemble != nil {
		if err := validateEnsemble(c.Engine.Ensemble); err != nil {
			return err
		}
	}
	if c.Engine.Postprocessor != nil {
		if err := validatePostprocessor(c.Engine.Postprocessor); err != nil {
			return err
		}
	}

	return nil
}

func validateEnsemble(e *EnsembleProfile) error {
	validStrategies := []string{"confidence", "voting", "rerank"}
	if e.Strategy != "" && !slices.Contains(validStrategies, e.Strategy) {
		return fmt.Errorf("invalid engine.ensemble.strategy: %s (must be one of: %s)", e.Strategy, strings.Join(validStrategies, ", "))
	}
	if len(e.Reranker.Weights) == 0 {
		return nil
	}
	var sum float64
	for _, w := range e.Reranker.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("config: engine.ensemble.reranker.weights must sum to 1, got %.4f", sum)
	}
	return nil
}

func validatePostprocessor(p *PostprocessorProfile) error {
	for _, pattern := range p.ExpectedPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("config: engine.postprocessor.expected_patterns %q does not compile: %w", pattern, err)
		}
	}
	if p.FuzzyThreshold < 0 {
		return fmt.Errorf("invalid engine.postprocessor.fuzzy_threshold: %d (must be >= 0)", p.FuzzyThreshold)
	}
	return nil
}

// validatePreprocess validates that every configured preprocessing step
// name is in the closed set from spec §4.1.
func (c *Config) validatePreprocess() error {
	for name := range c.Preprocess.Steps {
		if !isKnownStep(name) {
			return fmt.Errorf("config: preprocess step %q is not a recognized step name", name)
		}
	}
	return nil
}

func isKnownStep(name preprocess.StepName) bool {
	return slices.Contains(preprocess.Order, name)
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if err := c.validateBasicEnums(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validatePreprocess(); err != nil {
		return err
	}
	return nil
}
