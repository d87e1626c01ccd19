// Package cmd implements the ocrcore CLI: thin cobra subcommands wrapping
// the evaluator and full-pipeline adapter, following the teacher's
// convention of keeping business logic in internal/ and the CLI a pure
// driver (spec §6, "CLI" in SPEC_FULL's ambient stack).
package cmd

import (
	"log/slog"
	"os"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	engineProfile  string
	preset         string
	modelsDirFlag  string
	logLevelFlag   string
	verboseFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "ocrcore",
	Short: "Expiration-date OCR evaluation and recognition core",
	Long: `ocrcore drives the expiration-date OCR pipeline: run a Recognition
Engine over a dataset and report accuracy metrics, or run the full
detect-preprocess-recognize-parse pipeline over a single image.

Examples:
  ocrcore evaluate --dataset ./images --ground-truth gt.json --out ./report
  ocrcore recognize --image label.jpg
  ocrcore report --in ./report/tesseract_results.json --out ./report --watch :8090`,
}

// Execute runs the root command and returns any error for main to map to
// an exit code via ExitCodeFor.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "base configuration YAML file")
	rootCmd.PersistentFlags().StringVar(&engineProfile, "engine-profile", "", "engine profile YAML file (merged over --config)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "named preset YAML file (merged last, highest precedence)")
	rootCmd.PersistentFlags().StringVar(&modelsDirFlag, "models-dir", "", "override models_dir from config")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override log_level from config (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
}

// loadConfig performs the §6 layered merge (base -> engine profile ->
// preset) and applies any CLI overrides, then validates.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.Load(cfgFile, engineProfile, preset)
	if err != nil {
		return nil, err
	}

	if modelsDirFlag != "" {
		cfg.ModelsDir = modelsDirFlag
	}
	if verboseFlag {
		cfg.LogLevel = "debug"
	} else if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	setupLogging(cfg.LogLevel)
	return cfg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func wrapConfigErr(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigError{Err: err}
}

func wrapDatasetErr(err error) error {
	if err == nil {
		return nil
	}
	return &DatasetError{Err: err}
}

func wrapEngineErr(err error) error {
	if err == nil {
		return nil
	}
	return &EngineInitError{Err: err}
}

func wrapRuntimeErr(err error) error {
	if err == nil {
		return nil
	}
	return &RuntimeError{Err: err}
}

