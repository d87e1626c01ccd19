// Package fullpipeline implements the Full-pipeline adapter (§4.10): given
// a crop and optional mask from the upstream detector, mask-fill, run the
// preprocessor and chosen Recognition Engine, then attempt date parsing per
// recognized region and return the combined result shape from SPEC_FULL §6.
package fullpipeline

import (
	"context"
	"image"
	"time"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/dateparse"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/detector"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/obs"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/ocrimage"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/preprocess"
)

// Config wires together the detector, preprocessor profile, engine and date
// parser for one full-pipeline run.
type Config struct {
	Detector   detector.RegionDetector
	Preprocess preprocess.Profile
	Engine     engine.Engine
	DateParser dateparse.Config
	MaskFill   ocrimage.Fill
}

// DefaultConfig uses the deterministic Stub detector, an all-disabled
// preprocessing profile and white mask fill, matching spec §4.10's default.
func DefaultConfig(eng engine.Engine) Config {
	return Config{
		Detector:   detector.Stub{},
		Preprocess: preprocess.DefaultProfile(),
		Engine:     eng,
		DateParser: dateparse.DefaultConfig(),
		MaskFill:   ocrimage.White,
	}
}

// OCRResult is one region's recognized text and confidence.
type OCRResult struct {
	RegionIndex int     `json:"region_index"`
	Text        string  `json:"text"`
	Confidence  float64 `json:"confidence"`
}

// DateCandidate is one parsed-date candidate, tied back to its source
// region and combined confidence (arithmetic mean of OCR + parse
// confidence, per spec §4.10).
type DateCandidate struct {
	RegionIndex            int     `json:"region_index"`
	DateStr                string  `json:"date_str"`
	OCRConfidence          float64 `json:"ocr_confidence"`
	ParseConfidence        float64 `json:"parse_confidence"`
	CombinedConfidence     float64 `json:"combined_confidence"`
}

// Report is the JSON result shape from SPEC_FULL §6.
type Report struct {
	Success          bool            `json:"success"`
	Detections       int             `json:"detections"`
	OCRResults       []OCRResult     `json:"ocr_results"`
	Dates            []DateCandidate `json:"dates"`
	BestDate         *DateCandidate  `json:"best_date"`
	ProcessingTimeMS int64           `json:"processing_time_ms"`
}

// Pipeline runs the full detector -> mask-fill -> preprocess -> engine ->
// date-parse chain.
type Pipeline struct {
	cfg      Config
	pp       *preprocess.Pipeline
	dateP    *dateparse.Parser
}

// New builds a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, pp: preprocess.NewPipeline(cfg.Preprocess), dateP: dateparse.New(cfg.DateParser)}
}

// Run executes the pipeline on a single full image, producing a Report.
func (p *Pipeline) Run(ctx context.Context, img image.Image) Report {
	start := time.Now()

	crops, err := p.cfg.Detector.Detect(img)
	if err != nil || len(crops) == 0 {
		return Report{Success: false, ProcessingTimeMS: time.Since(start).Milliseconds()}
	}

	ocrResults := make([]OCRResult, 0, len(crops))
	var dates []DateCandidate

	for i, crop := range crops {
		region := crop.Image
		if crop.Mask != nil {
			region = ocrimage.ApplyMask(region, crop.Mask, p.cfg.MaskFill)
		}

		processed, perr := p.pp.Process(region)
		if perr != nil {
			obs.LogStageError("fullpipeline", "preprocess", perr)
			processed = region
		}

		result, eerr := p.cfg.Engine.ExtractText(ctx, processed)
		if eerr != nil {
			obs.LogStageError("fullpipeline", "engine.ExtractText", eerr)
		}
		ocrResults = append(ocrResults, OCRResult{RegionIndex: i, Text: result.Text, Confidence: result.Confidence})

		candidate := p.dateP.Parse(result.Text)
		if candidate == nil {
			obs.DateParseSuccessTotal.WithLabelValues("not_found").Inc()
			continue
		}
		obs.DateParseSuccessTotal.WithLabelValues("found").Inc()
		combined := (result.Confidence + candidate.ParseConfidence) / 2
		dates = append(dates, DateCandidate{
			RegionIndex:        i,
			DateStr:            candidate.DateStr,
			OCRConfidence:      result.Confidence,
			ParseConfidence:    candidate.ParseConfidence,
			CombinedConfidence: combined,
		})
	}

	var best *DateCandidate
	for i := range dates {
		if best == nil || dates[i].CombinedConfidence > best.CombinedConfidence {
			best = &dates[i]
		}
	}

	return Report{
		Success:          true,
		Detections:       len(crops),
		OCRResults:       ocrResults,
		Dates:            dates,
		BestDate:         best,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
}
