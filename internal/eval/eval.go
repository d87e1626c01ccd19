// Package eval implements the Evaluator (§4.11): iterating a dataset of
// (image, ground_truth) pairs through a Recognition Engine and optional
// preprocessing profile, computing per-item and aggregate metrics, and
// producing the fixed set of report formats.
package eval

import (
	"context"
	"image"
	"time"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/obs"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/preprocess"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/textmetrics"
)

// DatasetItem is one (image, ground_truth) pair from the evaluation set.
type DatasetItem struct {
	ID          string
	Image       image.Image
	GroundTruth string
}

// ItemResult is the per-item metrics row, matching spec §4.11's contract.
type ItemResult struct {
	ID               string                  `json:"id"`
	Predicted        string                  `json:"predicted"`
	GroundTruth      string                  `json:"ground_truth"`
	ExactMatch       bool                    `json:"exact_match"`
	CER              float64                 `json:"cer"`
	WER              float64                 `json:"wer"`
	Similarity       float64                 `json:"similarity"`
	ErrorCategory    textmetrics.ErrorCategory `json:"error_category"`
	Confidence       float64                 `json:"confidence"`
	ProcessingTimeMS float64                 `json:"processing_time_ms"`
}

// Report is the full evaluation report: per-item results plus aggregates.
type Report struct {
	EngineName       string                 `json:"engine_name"`
	PreprocessName   string                 `json:"preprocess_name"`
	Items            []ItemResult           `json:"items"`
	Aggregate        Aggregate              `json:"aggregate"`
	ConfusionPairs   []ConfusionPair        `json:"confusion_pairs"`
}

// Evaluator runs a dataset through one engine + preprocessing profile pair.
type Evaluator struct {
	Engine     engine.Engine
	Preprocess *preprocess.Pipeline
	PreName    string

	// Progress, if set, receives a ProgressUpdate after every item so a
	// --watch client can follow the run live instead of waiting for the
	// final report.
	Progress *Broadcaster
}

// New builds an Evaluator.
func New(eng engine.Engine, preProfile preprocess.Profile) *Evaluator {
	return &Evaluator{Engine: eng, Preprocess: preprocess.NewPipeline(preProfile), PreName: preProfile.Name}
}

// EvaluateDataset runs every item through the preprocessor and engine
// serially (spec §5: the evaluator iterates images serially), computing
// per-item metrics and aggregates.
func (e *Evaluator) EvaluateDataset(ctx context.Context, items []DatasetItem) Report {
	results := make([]ItemResult, 0, len(items))
	topN := 20

	for _, item := range items {
		start := time.Now()
		processed, err := e.Preprocess.Process(item.Image)
		if err != nil {
			obs.LogStageError("eval", "preprocess", err)
			processed = item.Image
		}
		res, err := e.Engine.ExtractText(ctx, processed)
		if err != nil {
			obs.LogStageError("eval", "extract_text", err)
		}
		elapsed := time.Since(start).Seconds() * 1000

		ir := ItemResult{
			ID:               item.ID,
			Predicted:        res.Text,
			GroundTruth:      item.GroundTruth,
			ExactMatch:       textmetrics.ExactMatch(res.Text, item.GroundTruth),
			CER:              textmetrics.CER(res.Text, item.GroundTruth),
			WER:              textmetrics.WER(res.Text, item.GroundTruth),
			Similarity:       textmetrics.Similarity(res.Text, item.GroundTruth),
			Confidence:       res.Confidence,
			ProcessingTimeMS: elapsed,
		}
		ir.ErrorCategory = textmetrics.Categorize(ir.CER)
		results = append(results, ir)

		obs.ImagesProcessedTotal.WithLabelValues(e.Engine.GetName(), string(ir.ErrorCategory)).Inc()
		obs.EngineLatencySeconds.WithLabelValues(e.Engine.GetName()).Observe(elapsed / 1000)
		obs.ErrorCategoryTotal.WithLabelValues(e.Engine.GetName(), string(ir.ErrorCategory)).Inc()

		if e.Progress != nil {
			e.Progress.Broadcast(ProgressUpdate{Index: len(results), Total: len(items), Item: ir})
		}
	}

	return Report{
		EngineName:     e.Engine.GetName(),
		PreprocessName: e.PreName,
		Items:          results,
		Aggregate:      aggregateResults(results),
		ConfusionPairs: topConfusionPairs(results, topN),
	}
}
