// Package easyocr implements the "easyocr" Recognition Engine adapter
// (§4.3): a CRNN-style ONNX recognizer returning a single (text,
// confidence) pair per crop, matching EasyOCR's list-of-(bbox,text,
// confidence) result shape reduced to its recognition half. Grounded on
// the teacher's internal/recognizer CRNN pipeline: same CTC greedy decode
// and Charset dictionary, generalized to the engine.Engine contract and a
// model-path-driven (rather than PP-OCR-fixed) configuration.
package easyocr

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

// Config controls the EasyOCR adapter.
type Config struct {
	ModelPath    string
	DictPath     string
	ImageHeight  int
	ImageWidth   int // 0 keeps the source aspect ratio, clamped to MaxWidth
	MaxWidth     int
	NumThreads   int
	GPU          onnx.GPUConfig
	BlankIndex   int
	ClassesFirst bool // true for [N,C,T] logits, false for [N,T,C]
}

// DefaultConfig mirrors the teacher's mobile-recognizer defaults.
func DefaultConfig() Config {
	return Config{
		ImageHeight:  48,
		MaxWidth:     960,
		BlankIndex:   0,
		ClassesFirst: false,
	}
}

// Engine adapts an EasyOCR-style ONNX CRNN recognizer.
type Engine struct {
	engine.BaseEngine
	cfg     Config
	session *onnxsession.Session
	charset *recognizer.Charset
}

func init() {
	engine.Register(engine.KindEasyOCR, func(cfg any) (engine.Engine, error) {
		c, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("easyocr: expected easyocr.Config, got %T", cfg)
		}
		return New(c), nil
	})
}

// New builds an uninitialized EasyOCR engine.
func New(cfg Config) *Engine {
	return &Engine{BaseEngine: engine.BaseEngine{Name: "easyocr", Version: "onnx"}, cfg: cfg}
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

// ExtractText resizes img to the fixed recognition height and runs the
// CRNN + CTC decode pipeline.
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
	targetW := e.targetWidth(img)
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

func (e *Engine) targetWidth(img image.Image) int {
	if e.cfg.ImageWidth > 0 {
		return e.cfg.ImageWidth
	}
	b := img.Bounds()
	if b.Dy() == 0 {
		return e.cfg.MaxWidth
	}
	w := b.Dx() * e.cfg.ImageHeight / b.Dy()
	if e.cfg.MaxWidth > 0 && w > e.cfg.MaxWidth {
		w = e.cfg.MaxWidth
	}
	if w < 8 {
		w = 8
	}
	return w
}

// GetInfo documents EasyOCR's reported-confidence semantics and the model's
// fixed recognition height, per spec §9.
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
