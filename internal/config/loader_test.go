package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshLoader() *Loader {
	viper.Reset()
	return NewLoader()
}

func TestLoaderLoadWithoutValidationAppliesDefaults(t *testing.T) {
	l := freshLoader()
	cfg, err := l.LoadWithoutValidation("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "tesseract", cfg.Engine.Engine)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoaderMergesBaseThenEngineThenPreset(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	enginePath := filepath.Join(dir, "engine.yaml")
	preset := filepath.Join(dir, "preset.yaml")

	require.NoError(t, os.WriteFile(base, []byte("log_level: debug\nengine:\n  engine: tesseract\n"), 0o600))
	require.NoError(t, os.WriteFile(enginePath, []byte("engine:\n  engine: parseq\n  model_name: base\n"), 0o600))
	require.NoError(t, os.WriteFile(preset, []byte("engine:\n  confidence_threshold: 0.8\n"), 0o600))

	l := freshLoader()
	cfg, err := l.LoadWithoutValidation(base, enginePath, preset)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "parseq", cfg.Engine.Engine)
	assert.Equal(t, "base", cfg.Engine.ModelName)
	assert.Equal(t, 0.8, cfg.Engine.ConfidenceThreshold)
}

func TestLoaderLoadValidatesMergedResult(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(base, []byte("engine:\n  engine: not_a_kind\n"), 0o600))

	l := freshLoader()
	_, err := l.Load(base, "", "")
	assert.Error(t, err)
}

func TestLoaderMergeFileMissingReturnsError(t *testing.T) {
	l := freshLoader()
	_, err := l.LoadWithoutValidation(filepath.Join(t.TempDir(), "missing.yaml"), "", "")
	assert.Error(t, err)
}

func TestLoadGroundTruthParsesAnnotations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gt.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"annotations": {"img1.png": "01/01/2030"}}`), 0o600))

	gt, err := LoadGroundTruth(path)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2030", gt.Annotations["img1.png"])
}

func TestLoadGroundTruthMissingAnnotationsErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gt.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	_, err := LoadGroundTruth(path)
	assert.Error(t, err)
}

func TestLoadGroundTruthMissingFileErrors(t *testing.T) {
	_, err := LoadGroundTruth(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
