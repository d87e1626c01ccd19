// Package openocr implements the "openocr" Recognition Engine adapter
// (§4.3): a backend-selectable (onnx|torch) detector+recognizer returning
// per-region text and score, aggregated the same way as easyocr/paddleocr.
// Only the onnx backend is runnable in this pack: no Go-native torch
// binding exists among the example repos, so backend=="torch" fails fast
// with a clear InitializationError at Initialize time rather than silently
// degrading, per spec §7's "raise EngineError for unrecoverable state".
package openocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/ctcdecode"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine/onnxsession"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/onnx"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/recognizer"
)

// Backend is the closed set of inference backends.
type Backend string

const (
	BackendONNX  Backend = "onnx"
	BackendTorch Backend = "torch"
)

// Device is the closed set of compute devices.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// Config controls the OpenOCR adapter.
type Config struct {
	Backend             Backend
	Device              Device
	ModelPath           string
	DictPath            string
	ImageHeight         int
	MaxWidth            int
	NumThreads          int
	GPU                 onnx.GPUConfig
	BlankIndex          int
	ClassesFirst        bool
	ConfidenceThreshold float64
}

// DefaultConfig selects the onnx backend on cpu, matching easyocr/paddleocr
// preprocessing defaults.
func DefaultConfig() Config {
	return Config{Backend: BackendONNX, Device: DeviceCPU, ImageHeight: 48, MaxWidth: 960, ConfidenceThreshold: 0.3}
}

// Region is one recognized per-region detection.
type Region struct {
	Text       string
	Confidence float64
}

// Engine adapts an OpenOCR-style detector+recognizer.
type Engine struct {
	engine.BaseEngine
	cfg     Config
	session *onnxsession.Session
	charset *recognizer.Charset
}

func init() {
	engine.Register(engine.KindOpenOCR, func(cfg any) (engine.Engine, error) {
		c, ok := cfg.(Config)
		if !ok {
			return nil, fmt.Errorf("openocr: expected openocr.Config, got %T", cfg)
		}
		return New(c), nil
	})
}

// New builds an uninitialized OpenOCR engine.
func New(cfg Config) *Engine {
	return &Engine{BaseEngine: engine.BaseEngine{Name: "openocr", Version: string(cfg.Backend)}, cfg: cfg}
}

// Initialize opens the configured backend. The torch backend is rejected
// up front since this pack carries no Go torch binding.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.cfg.Backend == BackendTorch {
		return &engine.InitializationError{Engine: e.GetName(), Err: fmt.Errorf("torch backend unsupported: no Go torch binding available, use backend=onnx")}
	}
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

// ExtractText recognizes a single pre-cropped region; multi-region
// aggregation (when a caller supplies several crops from an upstream
// detector) is handled by AggregateRegions.
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	if err := engine.ValidateImage(img); err != nil {
		return engine.Result{}, nil
	}
	if e.cfg.Backend == BackendTorch {
		return engine.Result{}, nil
	}
	if e.session == nil {
		if err := e.Initialize(ctx); err != nil {
			return engine.Result{}, nil
		}
	}

	w := targetWidth(img, e.cfg.ImageHeight, e.cfg.MaxWidth)
	data := onnxsession.EncodeNCHW(img, w, e.cfg.ImageHeight, onnxsession.DefaultMeanStd[0], onnxsession.DefaultMeanStd[1])

	outputs, err := e.session.Run(data, []int64{1, 3, int64(e.cfg.ImageHeight), int64(w)})
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

// AggregateRegions filters per-region results by ConfidenceThreshold,
// concatenating surviving texts space-joined and averaging their
// confidences, matching the easyocr/paddleocr aggregation convention.
func (e *Engine) AggregateRegions(regions []Region) engine.Result {
	var texts []string
	var sum float64
	var count int
	for _, r := range regions {
		if r.Confidence < e.cfg.ConfidenceThreshold {
			continue
		}
		texts = append(texts, r.Text)
		sum += r.Confidence
		count++
	}
	if count == 0 {
		return engine.Result{}
	}
	return engine.Result{Text: strings.Join(texts, " "), Confidence: sum / float64(count)}.Clamped()
}

func targetWidth(img image.Image, height, maxWidth int) int {
	b := img.Bounds()
	if b.Dy() == 0 {
		return maxWidth
	}
	ratio := float64(b.Dx()) / float64(b.Dy())
	w := int(float64(height) * ratio)
	if w < 8 {
		w = 8
	}
	if w > maxWidth {
		w = maxWidth
	}
	return w
}

// GetInfo documents backend/device and explicitly flags torch as
// unsupported so callers can branch before attempting Initialize.
func (e *Engine) GetInfo() engine.Info {
	return engine.Info{
		"confidence_semantics": "mean of kept per-region confidences",
		"thread_safe":          false,
		"backend":              string(e.cfg.Backend),
		"device":               string(e.cfg.Device),
		"torch_supported":      false,
	}
}

// Close releases the ONNX session, if any.
func (e *Engine) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Close()
	e.session = nil
	return err
}
