package cmd

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadDatasetPairsImagesWithGroundTruth(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"))
	writeTestPNG(t, filepath.Join(dir, "b.png"))

	gt := &config.GroundTruth{Annotations: map[string]string{"a.png": "01/01/2030", "b.png": "02/02/2031"}}

	items, err := loadDataset(dir, gt)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a.png", items[0].ID)
	assert.Equal(t, "01/01/2030", items[0].GroundTruth)
}

func TestLoadDatasetMissingAnnotationErrors(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"))

	gt := &config.GroundTruth{Annotations: map[string]string{}}
	_, err := loadDataset(dir, gt)
	assert.Error(t, err)
}

func TestLoadDatasetEmptyDirErrors(t *testing.T) {
	dir := t.TempDir()
	gt := &config.GroundTruth{Annotations: map[string]string{}}
	_, err := loadDataset(dir, gt)
	assert.Error(t, err)
}
