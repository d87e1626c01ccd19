package trocr

import (
	"context"
	"math"
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

func TestLastTimestepExtractsFinalSlice(t *testing.T) {
	// shape [1, 2, 3]: two timesteps of 3 classes each
	logits := []float32{1, 2, 3, 4, 5, 6}
	got := lastTimestep(logits, []int64{1, 2, 3})
	assert.Equal(t, []float32{4, 5, 6}, got)
}

func TestLastTimestepHandlesSingleTimestep(t *testing.T) {
	logits := []float32{1, 2, 3}
	got := lastTimestep(logits, []int64{1, 1, 3})
	assert.Equal(t, []float32{1, 2, 3}, got)
}

func TestArgmaxLogProbPicksLargestLogit(t *testing.T) {
	idx, logProb := argmaxLogProb([]float32{0.1, 5.0, 0.2})
	assert.Equal(t, 1, idx)
	assert.Less(t, logProb, 0.0) // log of a probability in (0,1]
}

func TestArgmaxLogProbEmptyInput(t *testing.T) {
	idx, logProb := argmaxLogProb(nil)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0.0, logProb)
}

func TestMeanExpOfZeroLogProbsIsOne(t *testing.T) {
	got := meanExp([]float64{0, 0, 0})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestMeanExpEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, meanExp(nil))
}

func TestMeanExpAveragesAcrossTokens(t *testing.T) {
	got := meanExp([]float64{0, math.Log(0.5)})
	assert.InDelta(t, 0.75, got, 1e-9)
}

func TestRegisteredInRegistry(t *testing.T) {
	assert.True(t, engine.IsValidKind(string(engine.KindTrOCR)))
}
