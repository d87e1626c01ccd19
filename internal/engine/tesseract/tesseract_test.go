package tesseract

import (
	"context"
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

func TestGetInfoReportsThreadSafety(t *testing.T) {
	e := New(DefaultConfig())
	info := e.GetInfo()
	assert.Equal(t, false, info["thread_safe"])
}

func TestCloseWithoutInitializeIsNoop(t *testing.T) {
	e := New(DefaultConfig())
	assert.NoError(t, e.Close())
}

func TestRegisteredInRegistry(t *testing.T) {
	assert.True(t, engine.IsValidKind(string(engine.KindTesseract)))
}
