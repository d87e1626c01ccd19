package paddleocr

import (
	"context"
	"testing"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextOnNilImageReturnsZeroResult(t *testing.T) {
	e := New(DefaultConfig())
	res, err := e.ExtractText(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, "", res.Text)
}

func TestNormalizeDetectionsTripleShape(t *testing.T) {
	e := New(DefaultConfig())
	raw := []any{
		[]any{[]any{0.0, 0.0, 10.0, 10.0}, "LOTE", 0.9},
	}
	dets, err := e.NormalizeDetections(raw)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "LOTE", dets[0].Text)
}

func TestNormalizeDetectionsPairShape(t *testing.T) {
	e := New(DefaultConfig())
	raw := []any{
		[]any{[]any{0.0, 0.0, 10.0, 10.0}, []any{"LOTE", 0.9}},
	}
	dets, err := e.NormalizeDetections(raw)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "LOTE", dets[0].Text)
}

func TestNormalizeDetectionsFiltersByThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 0.8
	e := New(cfg)
	raw := []any{
		[]any{[]any{0.0, 0.0, 10.0, 10.0}, "LOW", 0.2},
		[]any{[]any{0.0, 0.0, 10.0, 10.0}, "HIGH", 0.95},
	}
	dets, err := e.NormalizeDetections(raw)
	require.NoError(t, err)
	require.Len(t, dets, 1)
	assert.Equal(t, "HIGH", dets[0].Text)
}

func TestRegisteredInRegistry(t *testing.T) {
	assert.True(t, engine.IsValidKind(string(engine.KindPaddleOCR)))
}
