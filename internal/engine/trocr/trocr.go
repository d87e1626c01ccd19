// Package trocr implements the "trocr" Recognition Engine adapter (§4.3):
// a vision transformer encoder-decoder, single-line only, decoded greedily
// token-by-token with confidence from the generation log-probs. Grounded
// on the teacher's internal/recognizer ONNX session lifecycle
// (internal/engine/onnxsession), generalized from CTC's single forward
// pass to an autoregressive decode loop over a merged encoder-decoder
// graph (pixel_values + decoder_input_ids -> logits), the common ONNX
// export shape for HuggingFace vision2seq models.
package trocr

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
	onnxrt "github.com/yalue/onnxruntime_go"
)

// Config controls the TrOCR adapter.
type Config struct {
	ModelPath    string
	VocabPath    string // one token per line, index = line number (reuses recognizer.Charset's loader)
	ImageHeight  int
	ImageWidth   int
	BOSTokenID   int
	EOSTokenID   int
	MaxNewTokens int
	NumThreads   int
	GPU          onnx.GPUConfig
}

// DefaultConfig matches the standard 384x384 TrOCR-base preprocessing.
func DefaultConfig() Config {
	return Config{ImageHeight: 384, ImageWidth: 384, BOSTokenID: 0, EOSTokenID: 2, MaxNewTokens: 64}
}

// Engine adapts a TrOCR-style ONNX encoder-decoder.
type Engine struct {
	engine.BaseEngine
	cfg     Config
	session *onnxsession.Session
	vocab   *recognizer.Charset
}

func init() {
	engine.Register(engine.KindTrOCR, func(cfg any) (engine.Engine, error) {
		c, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("trocr: expected trocr.Config, got %T", cfg)
		}
		return New(c), nil
	})
}

// New builds an uninitialized TrOCR engine.
func New(cfg Config) *Engine {
	return &Engine{BaseEngine: engine.BaseEngine{Name: "trocr", Version: "onnx"}, cfg: cfg}
}

// Initialize opens the ONNX session and loads the token vocabulary.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.session != nil {
		return nil
	}
	sess, err := onnxsession.Open(onnxsession.Config{ModelPath: e.cfg.ModelPath, NumThreads: e.cfg.NumThreads, GPU: e.cfg.GPU})
	if err != nil {
		return &engine.InitializationError{Engine: e.GetName(), Err: err}
	}
	vocab, err := recognizer.LoadCharset(e.cfg.VocabPath)
	if err != nil {
		sess.Close()
		return &engine.InitializationError{Engine: e.GetName(), Err: err}
	}
	e.session = sess
	e.vocab = vocab
	return nil
}

// ExtractText greedily decodes a single line of text from img.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	if err := engine.ValidateImage(img); err != nil {
		return engine.Result{}, nil
	}
	if e.session == nil {
		if err := e.Initialize(ctx); err != nil {
			return engine.Result{}, nil
		}
	}

	pixelData := onnxsession.EncodeNCHW(img, e.cfg.ImageWidth, e.cfg.ImageHeight, onnxsession.DefaultMeanStd[0], onnxsession.DefaultMeanStd[1])
	pixelShape := []int64{1, 3, int64(e.cfg.ImageHeight), int64(e.cfg.ImageWidth)}

	tokens := []int64{int64(e.cfg.BOSTokenID)}
	var logProbs []float64

	for step := 0; step < e.cfg.MaxNewTokens; step++ {
		nextID, logProb, err := e.decodeStep(pixelData, pixelShape, tokens)
		if err != nil {
			break
		}
		logProbs = append(logProbs, logProb)
		if nextID == e.cfg.EOSTokenID {
			break
		}
		tokens = append(tokens, int64(nextID))
	}

	var sb strings.Builder
	for _, id := range tokens[1:] {
		sb.WriteString(e.vocab.LookupToken(int(id)))
	}
	return engine.Result{Text: strings.TrimSpace(sb.String()), Confidence: meanExp(logProbs)}.Clamped(), nil
}

func (e *Engine) decodeStep(pixelData []float32, pixelShape []int64, tokens []int64) (int, float64, error) {
	pixelTensor, err := onnxrt.NewTensor(onnxrt.NewShape(pixelShape...), pixelData)
	if err != nil {
		return 0, 0, err
	}
	defer pixelTensor.Destroy()

	tokenTensor, err := onnxrt.NewTensor(onnxrt.NewShape(1, int64(len(tokens))), tokens)
	if err != nil {
		return 0, 0, err
	}
	defer tokenTensor.Destroy()

	outputs, err := e.session.RunValues([]onnxrt.Value{pixelTensor, tokenTensor})
	if err != nil {
		return 0, 0, err
	}
	defer onnxsession.DestroyAll(outputs)

	logits, shape, err := onnxsession.FloatOutput(outputs[0])
	if err != nil {
		return 0, 0, err
	}
	lastStepLogits := lastTimestep(logits, shape)
	idx, logProb := argmaxLogProb(lastStepLogits)
	return idx, logProb, nil
}

// lastTimestep extracts the final time step's class distribution from a
// [1, T, V] logits tensor.
func lastTimestep(logits []float32, shape []int64) []float32 {
	if len(shape) != 3 {
		return logits
	}
	t, v := int(shape[1]), int(shape[2])
	if t == 0 {
		return nil
	}
	start := (t - 1) * v
	if start+v > len(logits) {
		return nil
	}
	return logits[start : start+v]
}

func argmaxLogProb(logits []float32) (int, float64) {
	if len(logits) == 0 {
		return 0, 0
	}
	maxV := logits[0]
	idx := 0
	for i, v := range logits {
		if v > maxV {
			maxV = v
			idx = i
		}
	}
	var denom float64
	for _, v := range logits {
		denom += math.Exp(float64(v - maxV))
	}
	if denom == 0 {
		return idx, 0
	}
	prob := 1 / denom // exp(maxV-maxV)=1 over the sum
	return idx, math.Log(prob)
}

func meanExp(logProbs []float64) float64 {
	if len(logProbs) == 0 {
		return 0
	}
	var sum float64
	for _, lp := range logProbs {
		sum += math.Exp(lp)
	}
	return sum / float64(len(logProbs))
}

// GetInfo documents TrOCR's generation-based confidence semantics.
func (e *Engine) GetInfo() engine.Info {
	return engine.Info{
		"confidence_semantics": "mean of per-token generation probabilities (exp of log-prob)",
		"thread_safe":          false,
		"single_line_only":     true,
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
