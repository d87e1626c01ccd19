package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "ocrcore"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "OCRCORE"
)

// Loader handles loading configuration from layered YAML sources: a base
// profile, an engine profile, a named preset, and caller overrides (spec
// §6, lowest to highest precedence), following the teacher's viper-backed
// Loader/Config split.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configuration loader bound to the global viper
// instance, so flag bindings set up elsewhere keep working.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads the base config, merges an optional engine-profile file and
// named preset file over it, then unmarshals and validates.
func (l *Loader) Load(baseFile, engineProfileFile, presetFile string) (*Config, error) {
	cfg, err := l.LoadWithoutValidation(baseFile, engineProfileFile, presetFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation performs the same layered merge as Load but skips
// validation, for callers that want to validate on their own schedule.
func (l *Loader) LoadWithoutValidation(baseFile, engineProfileFile, presetFile string) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if baseFile != "" {
		if err := l.mergeFile(baseFile); err != nil {
			return nil, err
		}
	} else {
		l.addConfigPaths()
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if engineProfileFile != "" {
		if err := l.mergeFile(engineProfileFile); err != nil {
			return nil, err
		}
	}
	if presetFile != "" {
		if err := l.mergeFile(presetFile); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) mergeFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	l.v.SetConfigFile(path)
	if err := l.v.MergeInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return nil
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/ocrcore")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "ocrcore"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "ocrcore"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()
	l.v.SetDefault("models_dir", defaults.ModelsDir)
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)
	l.v.SetDefault("engine.engine", defaults.Engine.Engine)
	l.v.SetDefault("engine.confidence_threshold", defaults.Engine.ConfidenceThreshold)
	l.v.SetDefault("gpu.enabled", defaults.GPU.Enabled)
	l.v.SetDefault("gpu.device", defaults.GPU.Device)
}

// LoadGroundTruth reads spec §6's ground-truth JSON document: a top-level
// "annotations" object mapping image filename to expected text.
func LoadGroundTruth(path string) (*GroundTruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ground truth file %s: %w", path, err)
	}
	var gt GroundTruth
	if err := json.Unmarshal(data, &gt); err != nil {
		return nil, fmt.Errorf("parsing ground truth file %s: %w", path, err)
	}
	if gt.Annotations == nil {
		return nil, fmt.Errorf("ground truth file %s has no annotations", path)
	}
	return &gt, nil
}
