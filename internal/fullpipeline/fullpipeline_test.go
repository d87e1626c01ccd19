package fullpipeline

import (
	"context"
	"image"
	"testing"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	engine.BaseEngine
	text string
	conf float64
}

func (s *stubEngine) Initialize(ctx context.Context) error { return nil }
func (s *stubEngine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	return engine.Result{Text: s.text, Confidence: s.conf}, nil
}
func (s *stubEngine) Close() error             { return nil }
func (s *stubEngine) GetInfo() engine.Info { return engine.Info{} }

func TestRunProducesBestDateWhenTextParses(t *testing.T) {
	eng := &stubEngine{text: "EXP 01/01/2030", conf: 0.8}
	cfg := DefaultConfig(eng)
	p := New(cfg)
	img := image.NewGray(image.Rect(0, 0, 20, 10))

	report := p.Run(context.Background(), img)
	require.True(t, report.Success)
	require.NotNil(t, report.BestDate)
	assert.Equal(t, "01/01/2030", report.BestDate.DateStr)
	assert.InDelta(t, (0.8+report.BestDate.ParseConfidence)/2, report.BestDate.CombinedConfidence, 1e-9)
}

func TestRunWithNoDateInTextHasNoBestDate(t *testing.T) {
	eng := &stubEngine{text: "NO DATE HERE", conf: 0.5}
	cfg := DefaultConfig(eng)
	p := New(cfg)
	img := image.NewGray(image.Rect(0, 0, 20, 10))

	report := p.Run(context.Background(), img)
	require.True(t, report.Success)
	assert.Nil(t, report.BestDate)
	assert.Empty(t, report.Dates)
}

func TestRunOnEmptyDetectionFails(t *testing.T) {
	eng := &stubEngine{}
	cfg := DefaultConfig(eng)
	p := New(cfg)
	report := p.Run(context.Background(), nil)
	assert.False(t, report.Success)
}
