package easyocr

import (
	"context"
	"image"
	"testing"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestExtractTextOnNilImageReturnsZeroResult(t *testing.T) {
	e := New(DefaultConfig())
	res, err := e.ExtractText(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "", res.Text)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestTargetWidthRespectsMaxWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWidth = 100
	e := New(cfg)
	img := image.NewGray(image.Rect(0, 0, 5000, 48))
	assert.LessOrEqual(t, e.targetWidth(img), 100)
}

func TestTargetWidthMinimumFloor(t *testing.T) {
	e := New(DefaultConfig())
	img := image.NewGray(image.Rect(0, 0, 1, 1000))
	assert.GreaterOrEqual(t, e.targetWidth(img), 8)
}

func TestRegisteredInRegistry(t *testing.T) {
	assert.True(t, engine.IsValidKind(string(engine.KindEasyOCR)))
}
