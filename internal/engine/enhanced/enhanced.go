// Package enhanced implements the Ensemble Recognizer (§4.7), registered
// under the "parseq_enhanced" kind. It is the most intricate subsystem: per
// call it detects lines (internal/linedet), normalizes each line
// geometrically (internal/geom) and photometrically (internal/photo),
// recognizes every photometric variant with an underlying single-line
// engine, reranks candidates with a weighted score, concatenates the
// selected per-line texts, and runs the result through the contextual
// postprocessor (internal/postprocess) once.
package enhanced

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"sort"
	"strings"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/geom"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/linedet"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/photo"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/postprocess"
)

// Strategy is the closed set of candidate-selection strategies (§4.7).
type Strategy string

const (
	StrategyConfidence Strategy = "confidence"
	StrategyVoting     Strategy = "voting"
	StrategyRerank     Strategy = "rerank"
)

// Config nests every component config the ensemble orchestrates.
type Config struct {
	LineDetector     linedet.Config
	Geometric        geom.Config
	Photometric      photo.Config
	Postprocessor    postprocess.Config
	Strategy         Strategy
	EnsembleEnabled  bool // when false, only the "baseline" variant is generated
	ExpectedPatterns []*regexp.Regexp
	ExpectedTerms    []string
}

// DefaultConfig wires every nested component's own defaults and selects the
// recommended rerank strategy.
func DefaultConfig() Config {
	return Config{
		LineDetector:    linedet.DefaultConfig(),
		Geometric:       geom.DefaultConfig(),
		Photometric:     photo.DefaultConfig(),
		Postprocessor:   postprocess.DefaultConfig(),
		Strategy:        StrategyRerank,
		EnsembleEnabled: true,
	}
}

// Candidate is one (variant, recognized text) pair for a single line.
type Candidate struct {
	Variant    photo.Variant
	Text       string
	Confidence float64
	order      int
}

// Engine is the ensemble recognizer. Recognizer is the underlying
// single-line model (a PARSeq-equivalent engine, injected rather than
// constructed internally so the same ensemble logic can run atop any
// Recognition Engine adapter).
type Engine struct {
	engine.BaseEngine
	cfg        Config
	lineDet    *linedet.Detector
	geomNorm   *geom.Normalizer
	photoNorm  *photo.Normalizer
	post       *postprocess.Postprocessor
	Recognizer engine.Engine
}

func init() {
	engine.Register(engine.KindPARSeqEnhanced, func(cfg any) (engine.Engine, error) {
		c, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("enhanced: expected enhanced.Config, got %T", cfg)
		}
		return New(c, nil), nil
	})
}

// New builds an ensemble engine around the given underlying recognizer.
// recognizer may be nil at construction and set later (e.g. after the
// registry resolves a concrete parseq.Engine) — ExtractText validates it.
func New(cfg Config, recognizer engine.Engine) *Engine {
	return &Engine{
		BaseEngine: engine.BaseEngine{Name: "parseq_enhanced", Version: "ensemble"},
		cfg:        cfg,
		lineDet:    linedet.New(cfg.LineDetector),
		geomNorm:   geom.New(cfg.Geometric),
		photoNorm:  photo.New(cfg.Photometric),
		post:       postprocess.New(cfg.Postprocessor),
		Recognizer: recognizer,
	}
}

// Initialize initializes the underlying recognizer, if set.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.Recognizer == nil {
		return &engine.InitializationError{Engine: e.GetName(), Err: fmt.Errorf("no underlying recognizer configured")}
	}
	if err := e.Recognizer.Initialize(ctx); err != nil {
		return &engine.InitializationError{Engine: e.GetName(), Err: err}
	}
	return nil
}

// ExtractText runs the full ensemble pipeline over img.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	if err := engine.ValidateImage(img); err != nil {
		return engine.Result{}, nil
	}
	if e.Recognizer == nil {
		return engine.Result{}, nil
	}

	lines := e.lineDet.SplitLines(img)
	lineTexts := make([]string, 0, len(lines))
	var lineConfidences []float64

	for _, line := range lines {
		text, conf := e.recognizeLine(ctx, line)
		lineTexts = append(lineTexts, text)
		lineConfidences = append(lineConfidences, conf)
	}

	joined := strings.Join(lineTexts, "\n")
	final := e.post.Process(joined)
	return engine.Result{Text: final, Confidence: mean(lineConfidences)}.Clamped(), nil
}

// recognizeLine normalizes one detected line geometrically, generates its
// photometric variant family (or just "baseline" if ensembling is
// disabled), recognizes every variant, and selects the best candidate per
// the configured strategy. A variant whose recognition crashes is recorded
// as ("", 0.0) and does not abort the line; if every variant crashes the
// line contributes "".
func (e *Engine) recognizeLine(ctx context.Context, line image.Image) (string, float64) {
	normalized, err := e.geomNorm.Normalize(line)
	if err != nil {
		normalized = line
	}

	variants := map[photo.Variant]image.Image{photo.VariantBaseline: normalized}
	if e.cfg.EnsembleEnabled {
		if vs, err := e.photoNorm.GenerateVariants(normalized); err == nil {
			variants = vs
		}
	}

	order := 0
	candidates := make([]Candidate, 0, len(variants))
	for _, name := range photo.AllVariants {
		img, ok := variants[name]
		if !ok {
			continue
		}
		res, err := e.Recognizer.ExtractText(ctx, img)
		order++
		if err != nil {
			candidates = append(candidates, Candidate{Variant: name, Text: "", Confidence: 0, order: order})
			continue
		}
		candidates = append(candidates, Candidate{Variant: name, Text: res.Text, Confidence: res.Confidence, order: order})
	}
	if len(candidates) == 0 {
		return "", 0
	}

	best := e.selectBest(candidates)
	return best.Text, best.Confidence
}

func (e *Engine) selectBest(candidates []Candidate) Candidate {
	switch e.cfg.Strategy {
	case StrategyConfidence:
		return argmaxConfidence(candidates)
	case StrategyVoting:
		return voting(candidates)
	default:
		return e.rerank(candidates)
	}
}

func argmaxConfidence(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

// voting picks the majority normalized text, breaking ties by summed
// confidence.
func voting(candidates []Candidate) Candidate {
	type group struct {
		count      int
		confSum    float64
		rep        Candidate
	}
	groups := map[string]*group{}
	for _, c := range candidates {
		key := strings.ToUpper(strings.TrimSpace(c.Text))
		g, ok := groups[key]
		if !ok {
			g = &group{rep: c}
			groups[key] = g
		}
		g.count++
		g.confSum += c.Confidence
	}
	var bestKey string
	var best *group
	for k, g := range groups {
		if best == nil || g.count > best.count || (g.count == best.count && g.confSum > best.confSum) {
			best = g
			bestKey = k
		}
	}
	_ = bestKey
	return best.rep
}

// rerank implements spec §4.7's weighted reranking score.
func (e *Engine) rerank(candidates []Candidate) Candidate {
	type scored struct {
		c     Candidate
		score float64
	}
	scoredList := make([]scored, len(candidates))
	for i, c := range candidates {
		scoredList[i] = scored{c: c, score: e.score(c)}
	}
	sort.Slice(scoredList, func(i, j int) bool {
		if scoredList[i].score != scoredList[j].score {
			return scoredList[i].score > scoredList[j].score
		}
		if scoredList[i].c.Confidence != scoredList[j].c.Confidence {
			return scoredList[i].c.Confidence > scoredList[j].c.Confidence
		}
		return scoredList[i].c.order < scoredList[j].c.order
	})
	return scoredList[0].c
}

func (e *Engine) score(c Candidate) float64 {
	text := c.Text
	upper := strings.ToUpper(text)

	var patternHit float64
	for _, re := range e.cfg.ExpectedPatterns {
		if re.MatchString(text) {
			patternHit = 1
			break
		}
	}

	var termHit float64
	for _, term := range e.cfg.ExpectedTerms {
		if strings.Contains(upper, strings.ToUpper(term)) {
			termHit = 1
			break
		}
	}

	var shortPenalty float64
	if len([]rune(text)) < 3 {
		shortPenalty = 1
	}

	score := 0.50*c.Confidence +
		0.20*patternHit +
		0.15*termHit +
		0.20*e.post.ContextualScore(text) -
		0.30*shortPenalty -
		0.20*postprocess.SymbolRatio(text) -
		0.15*postprocess.SpaceRatio(text)
	return score
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// GetInfo documents the ensemble's confidence semantics and strategy.
func (e *Engine) GetInfo() engine.Info {
	return engine.Info{
		"confidence_semantics": "mean of selected per-line confidences",
		"thread_safe":          false,
		"strategy":             string(e.cfg.Strategy),
		"ensemble_enabled":     e.cfg.EnsembleEnabled,
	}
}

// Close closes the underlying recognizer, if set.
func (e *Engine) Close() error {
	if e.Recognizer == nil {
		return nil
	}
	return e.Recognizer.Close()
}
