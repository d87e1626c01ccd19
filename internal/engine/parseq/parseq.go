// Package parseq implements the "parseq" Recognition Engine adapter
// (§4.3): a permutation-based scene-text model taking a single-line crop
// resized to a fixed (H,W), e.g. 32x128. The model identifier maps a small
// alias set (tiny|base|large and synonyms) to canonical weight file names.
// Decoded output may arrive from the graph as a per-position class
// distribution (the common PARSeq ONNX export); this adapter always
// normalizes it to a string, per spec's "decoded output may arrive as
// list, tuple, string, or object" robustness note.
package parseq

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/onnxsession"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/onnx"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/recognizer"
)

// ModelSize is the canonical weight-size alias.
type ModelSize string

const (
	SizeTiny  ModelSize = "tiny"
	SizeBase  ModelSize = "base"
	SizeLarge ModelSize = "large"
)

// aliasToCanonical maps the small alias set (and common synonyms) to the
// canonical weight file stem. Unknown aliases fall back to SizeBase.
var aliasToCanonical = map[string]ModelSize{
	"tiny": SizeTiny, "t": SizeTiny, "small": SizeTiny,
	"base": SizeBase, "b": SizeBase, "default": SizeBase, "": SizeBase,
	"large": SizeLarge, "l": SizeLarge, "big": SizeLarge,
}

// ResolveModelAlias maps an arbitrary user-supplied identifier to the
// canonical weight size.
func ResolveModelAlias(alias string) ModelSize {
	if size, ok := aliasToCanonical[strings.ToLower(alias)]; ok {
		return size
	}
	return SizeBase
}

// Config controls the PARSeq adapter.
type Config struct {
	ModelPath    string
	DictPath     string
	ModelName    string // alias, resolved via ResolveModelAlias
	InputHeight  int
	InputWidth   int
	EOSIndex     int
	NumThreads   int
	GPU          onnx.GPUConfig
}

// DefaultConfig uses the standard PARSeq 32x128 input and "base" alias.
func DefaultConfig() Config {
	return Config{InputHeight: 32, InputWidth: 128, ModelName: "base", EOSIndex: 0}
}

// Engine adapts a PARSeq-style ONNX recognizer.
type Engine struct {
	engine.BaseEngine
	cfg     Config
	session *onnxsession.Session
	charset *recognizer.Charset
}

func init() {
	engine.Register(engine.KindPARSeq, func(cfg any) (engine.Engine, error) {
		c, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("parseq: expected parseq.Config, got %T", cfg)
		}
		return New(c), nil
	})
}

// New builds an uninitialized PARSeq engine.
func New(cfg Config) *Engine {
	size := ResolveModelAlias(cfg.ModelName)
	return &Engine{BaseEngine: engine.BaseEngine{Name: "parseq", Version: string(size)}, cfg: cfg}
}

// Initialize opens the ONNX session and loads the character dictionary.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.session != nil {
		return nil
	}
	sess, err := onnxsession.Open(onnxsession.Config{ModelPath: e.cfg.ModelPath, NumThreads: e.cfg.NumThreads, GPU: e.cfg.GPU})
	if err != nil {
		return &engine.InitializationError{Engine: e.GetName(), Err: err}
	}
	charset, err := recognizer.LoadCharset(e.cfg.DictPath)
	if err != nil {
		sess.Close()
		return &engine.InitializationError{Engine: e.GetName(), Err: err}
	}
	e.session = sess
	e.charset = charset
	return nil
}

// ExtractText resizes img to the fixed (H,W) and runs PARSeq's single
// forward-pass decode: per-position argmax, no CTC collapsing, stopping at
// the first EOS position.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	if err := engine.ValidateImage(img); err != nil {
		return engine.Result{}, nil
	}
	if e.session == nil {
		if err := e.Initialize(ctx); err != nil {
			return engine.Result{}, nil
		}
	}

	h, w := e.cfg.InputHeight, e.cfg.InputWidth
	data := onnxsession.EncodeNCHW(img, w, h, onnxsession.DefaultMeanStd[0], onnxsession.DefaultMeanStd[1])

	outputs, err := e.session.Run(data, []int64{1, 3, int64(h), int64(w)})
	if err != nil {
		return engine.Result{}, nil
	}
	defer onnxsession.DestroyAll(outputs)

	logits, shape, err := onnxsession.FloatOutput(outputs[0])
	if err != nil {
		return engine.Result{}, nil
	}
	text, conf := decodePerPosition(logits, shape, e.charset, e.cfg.EOSIndex)
	return engine.Result{Text: text, Confidence: conf}.Clamped(), nil
}

// decodePerPosition reads a [1, T, C] tensor of per-position class logits,
// taking argmax at each position until EOS or T is exhausted.
func decodePerPosition(logits []float32, shape []int64, charset *recognizer.Charset, eosIndex int) (string, float64) {
	if len(shape) != 3 || shape[0] < 1 {
		return "", 0
	}
	t, c := int(shape[1]), int(shape[2])
	var sb strings.Builder
	var probs []float64
	for step := 0; step < t; step++ {
		start := step * c
		if start+c > len(logits) {
			break
		}
		cls := logits[start : start+c]
		idx, prob := argmaxSoftmax(cls)
		if idx == eosIndex {
			break
		}
		sb.WriteString(charset.LookupToken(idx))
		probs = append(probs, prob)
	}
	return sb.String(), mean(probs)
}

func argmaxSoftmax(v []float32) (int, float64) {
	if len(v) == 0 {
		return -1, 0
	}
	maxV := v[0]
	idx := 0
	for i, x := range v {
		if x > maxV {
			maxV = x
			idx = i
		}
	}
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - maxV))
	}
	if denom == 0 {
		return idx, 0
	}
	return idx, 1 / denom
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

// GetInfo documents PARSeq's fixed-size input requirement and resolved
// weight alias.
func (e *Engine) GetInfo() engine.Info {
	return engine.Info{
		"confidence_semantics": "mean per-position softmax probability before EOS",
		"thread_safe":          false,
		"input_size":           fmt.Sprintf("%dx%d", e.cfg.InputHeight, e.cfg.InputWidth),
		"resolved_model_size":  string(ResolveModelAlias(e.cfg.ModelName)),
	}
}

// Close releases the ONNX session.
func (e *Engine) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Close()
	e.session = nil
	return err
}
