// Package paddleocr implements the "paddleocr" Recognition Engine adapter
// (§4.3): a DB-detector + CRNN-recognizer pipeline. ExtractText recognizes
// a single pre-cropped line the same way the easyocr adapter does (the two
// share the CRNN+CTC decode machinery); NormalizeDetections additionally
// demonstrates the spec's compatibility note that different PaddleOCR
// versions return detection results shaped either
// [[bbox, (text, conf)], ...] or [bbox, text, conf] — the adapter must
// detect the shape at runtime rather than assume one.
package paddleocr

import (
	"context"
	"fmt"
	"image"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/ctcdecode"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/onnxsession"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/onnx"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/recognizer"
)

// Config controls the PaddleOCR adapter.
type Config struct {
	ModelPath            string
	DictPath             string
	ImageHeight          int
	MaxWidth             int
	NumThreads           int
	GPU                  onnx.GPUConfig
	BlankIndex           int
	ClassesFirst         bool
	ConfidenceThreshold  float64 // kept-item threshold for NormalizeDetections filtering
}

// DefaultConfig mirrors PP-OCR mobile recognizer defaults.
func DefaultConfig() Config {
	return Config{ImageHeight: 48, MaxWidth: 960, BlankIndex: 0, ClassesFirst: false, ConfidenceThreshold: 0.5}
}

// Detection is one recognized region from a full detector+recognizer pass.
type Detection struct {
	BBox       [4]float64
	Text       string
	Confidence float64
}

// Engine adapts a PaddleOCR-style ONNX CRNN recognizer.
type Engine struct {
	engine.BaseEngine
	cfg     Config
	session *onnxsession.Session
	charset *recognizer.Charset
}

func init() {
	engine.Register(engine.KindPaddleOCR, func(cfg any) (engine.Engine, error) {
		c, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("paddleocr: expected paddleocr.Config, got %T", cfg)
		}
		return New(c), nil
	})
}

// New builds an uninitialized PaddleOCR engine.
func New(cfg Config) *Engine {
	return &Engine{BaseEngine: engine.BaseEngine{Name: "paddleocr", Version: "onnx"}, cfg: cfg}
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

// ExtractText runs the CRNN recognizer over a single pre-cropped line.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	if err := engine.ValidateImage(img); err != nil {
		return engine.Result{}, nil
	}
	if e.session == nil {
		if err := e.Initialize(ctx); err != nil {
			return engine.Result{}, nil
		}
	}
	targetH := e.cfg.ImageHeight
	targetW := targetWidth(img, targetH, e.cfg.MaxWidth)
	data := onnxsession.EncodeNCHW(img, targetW, targetH, onnxsession.DefaultMeanStd[0], onnxsession.DefaultMeanStd[1])

	outputs, err := e.session.Run(data, []int64{1, 3, int64(targetH), int64(targetW)})
	if err != nil {
		return engine.Result{}, nil
	}
	defer onnxsession.DestroyAll(outputs)

	logits, shape, err := onnxsession.FloatOutput(outputs[0])
	if err != nil {
		return engine.Result{}, nil
	}
	text, conf := ctcdecode.Decode(logits, shape, e.charset, e.cfg.BlankIndex, e.cfg.ClassesFirst)
	return engine.Result{Text: text, Confidence: conf}.Clamped(), nil
}

func targetWidth(img image.Image, height, maxWidth int) int {
	b := img.Bounds()
	if b.Dy() == 0 {
		return maxWidth
	}
	w := b.Dx() * height / b.Dy()
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	if w < 8 {
		w = 8
	}
	return w
}

// NormalizeDetections accepts either of the two shapes a PaddleOCR
// detection pass may return — []any{bbox, (text, conf)} entries, or flat
// []any{bbox, text, conf} triples — and normalizes both into []Detection,
// filtering by ConfidenceThreshold.
func (e *Engine) NormalizeDetections(raw []any) ([]Detection, error) {
	var out []Detection
	for _, item := range raw {
		d, ok := normalizeOne(item)
		if !ok {
			continue
		}
		if d.Confidence >= e.cfg.ConfidenceThreshold {
			out = append(out, d)
		}
	}
	return out, nil
}

func normalizeOne(item any) (Detection, bool) {
	switch v := item.(type) {
	case []any:
		// Shape: [bbox, text, conf]
		if len(v) == 3 {
			bbox, ok1 := toBBox(v[0])
			text, ok2 := v[1].(string)
			conf, ok3 := toFloat(v[2])
			if ok1 && ok2 && ok3 {
				return Detection{BBox: bbox, Text: text, Confidence: conf}, true
			}
		}
		// Shape: [bbox, (text, conf)]
		if len(v) == 2 {
			bbox, ok1 := toBBox(v[0])
			pair, ok2 := v[1].([]any)
			if ok1 && ok2 && len(pair) == 2 {
				text, ok3 := pair[0].(string)
				conf, ok4 := toFloat(pair[1])
				if ok3 && ok4 {
					return Detection{BBox: bbox, Text: text, Confidence: conf}, true
				}
			}
		}
	}
	return Detection{}, false
}

func toBBox(v any) ([4]float64, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 4 {
		return [4]float64{}, false
	}
	var out [4]float64
	for i, x := range arr {
		f, ok := toFloat(x)
		if !ok {
			return [4]float64{}, false
		}
		out[i] = f
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// GetInfo documents PaddleOCR's reported-confidence semantics.
func (e *Engine) GetInfo() engine.Info {
	return engine.Info{
		"confidence_semantics": "mean per-character softmax probability after CTC collapse",
		"thread_safe":          false,
		"recognition_height":   e.cfg.ImageHeight,
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
