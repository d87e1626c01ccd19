// Package support holds shared step-definition state for the ocrcore
// end-to-end seed suite (spec §8, "End-to-end scenarios"), following the
// teacher's godog TestContext convention.
package support

import (
	"image"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/dateparse"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/fullpipeline"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/postprocess"
)

// TestContext holds the state threaded through one scenario.
type TestContext struct {
	PipelineReport fullpipeline.Report
	DateCandidate  *dateparse.Candidate
	PostProcessed  string
	RerankWinner   string
	Err            error

	scriptedRecognizer *scriptedEngine
	postprocessor      *postprocess.Postprocessor
	dateParser         *dateparse.Parser

	warpInput  image.Image
	warpOutput image.Image

	tieVariants []string

	groundTruth string
}

// NewTestContext creates a fresh, empty scenario context.
func NewTestContext() *TestContext {
	return &TestContext{}
}
