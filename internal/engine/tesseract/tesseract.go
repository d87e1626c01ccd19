// Package tesseract implements the "tesseract" Recognition Engine adapter
// (§4.3): the classical, non-neural recognizer backed by the Tesseract C++
// library via gosseract. Grounded on wudi-pdfkit's ocr/tesseract adapter,
// generalized from its region-cropping ocr.Input contract to the
// engine.Engine interface operating directly on image.Image.
package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/engine"
	"github.com/otiai10/gosseract/v2"
)

// Config controls the Tesseract adapter.
type Config struct {
	Languages   []string
	DPI         int
	PageSegMode *gosseract.PageSegMode
	Whitelist   string // SetVariable tessedit_char_whitelist
}

// DefaultConfig returns English with automatic page segmentation.
func DefaultConfig() Config {
	return Config{Languages: []string{"eng"}}
}

// Engine adapts gosseract.Client to the engine.Engine contract.
type Engine struct {
	engine.BaseEngine
	cfg    Config
	client *gosseract.Client
}

func init() {
	engine.Register(engine.KindTesseract, func(cfg any) (engine.Engine, error) {
		c, _ := cfg.(Config)
		return New(c), nil
	})
}

// New builds an uninitialized Tesseract engine.
func New(cfg Config) *Engine {
	return &Engine{BaseEngine: engine.BaseEngine{Name: "tesseract", Version: "gosseract-v2"}, cfg: cfg}
}

// Initialize creates the underlying gosseract client. Idempotent.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.client != nil {
		return nil
	}
	client := gosseract.NewClient()
	if len(e.cfg.Languages) > 0 {
		if err := client.SetLanguage(e.cfg.Languages...); err != nil {
			return &engine.InitializationError{Engine: e.GetName(), Err: err}
		}
	}
	if e.cfg.DPI > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(e.cfg.DPI)); err != nil {
			return &engine.InitializationError{Engine: e.GetName(), Err: err}
		}
	}
	if e.cfg.Whitelist != "" {
		if err := client.SetVariable(gosseract.SettableVariable("tessedit_char_whitelist"), e.cfg.Whitelist); err != nil {
			return &engine.InitializationError{Engine: e.GetName(), Err: err}
		}
	}
	if e.cfg.PageSegMode != nil {
		if err := client.SetPageSegMode(*e.cfg.PageSegMode); err != nil {
			return &engine.InitializationError{Engine: e.GetName(), Err: err}
		}
	}
	e.client = client
	return nil
}

// ExtractText runs Tesseract OCR over img and returns ("", 0.0) on any
// recoverable input or inference failure (spec §7 InputError/EngineRuntimeError).
func (e *Engine) ExtractText(ctx context.Context, img image.Image) (engine.Result, error) {
	if err := engine.ValidateImage(img); err != nil {
		return engine.Result{}, nil
	}
	if e.client == nil {
		if err := e.Initialize(ctx); err != nil {
			return engine.Result{}, nil
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return engine.Result{}, nil
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return engine.Result{}, nil
	}

	text, err := e.client.Text()
	if err != nil {
		return engine.Result{}, nil
	}
	conf := averageWordConfidence(e.client)
	return engine.Result{Text: strings.TrimSpace(text), Confidence: conf}.Clamped(), nil
}

func averageWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}

// GetInfo documents Tesseract's reported-confidence semantics and
// thread-safety, per spec §9's "expose resolution in get_info" rough edge.
func (e *Engine) GetInfo() engine.Info {
	return engine.Info{
		"confidence_semantics": "mean of per-word RIL_WORD confidences, [0,100] rescaled to [0,1]",
		"thread_safe":          false,
		"languages":            e.cfg.Languages,
	}
}

// Close releases the gosseract client, which owns a cgo Tesseract handle.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}

