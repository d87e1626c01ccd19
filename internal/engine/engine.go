// Package engine defines the Recognition Engine contract (§4.2) and a
// registry mapping the closed set of engine-kind strings to constructors.
// Concrete adapters live in sibling packages (tesseract, easyocr, paddleocr,
// trocr, parseq, openocr, enhanced) and register themselves in their
// package init(), following the teacher's "register, don't inherit"
// convention for its pluggable batch/benchmark strategies.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
)

// Kind is one of the closed-set engine kinds from spec §3.
type Kind string

const (
	KindTesseract      Kind = "tesseract"
	KindEasyOCR        Kind = "easyocr"
	KindPaddleOCR      Kind = "paddleocr"
	KindTrOCR          Kind = "trocr"
	KindPARSeq         Kind = "parseq"
	KindPARSeqEnhanced Kind = "parseq_enhanced"
	KindOpenOCR        Kind = "openocr"
)

// ValidKinds is the closed set the config loader validates engine.kind
// against.
var ValidKinds = []Kind{
	KindTesseract, KindEasyOCR, KindPaddleOCR, KindTrOCR, KindPARSeq, KindPARSeqEnhanced, KindOpenOCR,
}

// IsValidKind reports whether kind is in the closed set.
func IsValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

// Result is a recognition result: {text, confidence}. A recognition engine
// never returns nil; absence of text is the empty string with confidence 0.
type Result struct {
	Text       string
	Confidence float64
}

// Clamped returns a copy of r with Confidence clamped to [0,1].
func (r Result) Clamped() Result {
	c := r.Confidence
	if c < 0 {
		c = 0
	} else if c > 1 {
		c = 1
	}
	return Result{Text: r.Text, Confidence: c}
}

// Info is the free-form metadata map returned by GetInfo, documenting
// things like reported-confidence semantics, thread-safety and resolution
// limits (spec §9's "expose resolution in get_info" rough edge).
type Info map[string]any

// Engine is the uniform contract every concrete recognizer implements.
type Engine interface {
	// Initialize loads model weights; idempotent. May fail with
	// InitializationError.
	Initialize(ctx context.Context) error
	// ExtractText validates img and returns (text, confidence). Never
	// raises for recoverable input errors — returns ("", 0.0) instead.
	ExtractText(ctx context.Context, img image.Image) (Result, error)
	GetName() string
	GetVersion() string
	GetInfo() Info
	// Postprocess applies the engine's default postprocessing; the base
	// behavior (see Postprocess below) strips whitespace.
	Postprocess(text string) string
	// Close releases model resources. Safe to call multiple times.
	Close() error
}

// Postprocess is the default Engine.Postprocess behavior adapters can embed
// via BaseEngine: strip whitespace.
func Postprocess(text string) string { return strings.TrimSpace(text) }

// BaseEngine supplies the default Postprocess/GetVersion implementations so
// concrete adapters only need to implement the engine-specific parts.
type BaseEngine struct {
	Name    string
	Version string
}

func (b BaseEngine) GetName() string           { return b.Name }
func (b BaseEngine) GetVersion() string         { return b.Version }
func (b BaseEngine) Postprocess(text string) string { return Postprocess(text) }

// InitializationError reports a failure in Engine.Initialize.
type InitializationError struct {
	Engine string
	Err    error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("engine %s: initialization failed: %v", e.Engine, e.Err)
}
func (e *InitializationError) Unwrap() error { return e.Err }

// EngineRuntimeError reports a transient inference failure (spec §7).
type EngineRuntimeError struct {
	Engine string
	Err    error
}

func (e *EngineRuntimeError) Error() string {
	return fmt.Sprintf("engine %s: runtime error: %v", e.Engine, e.Err)
}
func (e *EngineRuntimeError) Unwrap() error { return e.Err }

// Constructor builds an Engine from an opaque configuration value; concrete
// adapter packages type-assert cfg to their own Config type.
type Constructor func(cfg any) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[Kind]Constructor{}
)

// Register adds a constructor for kind to the registry. Call from a
// concrete adapter package's init().
func Register(kind Kind, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = ctor
}

// New builds an engine of the given kind using its registered constructor.
func New(kind Kind, cfg any) (Engine, error) {
	registryMu.RLock()
	ctor, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("engine: unknown or unregistered kind %q", kind)
	}
	return ctor(cfg)
}

// ErrInvalidImage is returned internally by adapters validating input; it
// is never propagated to callers of ExtractText — they get ("", 0.0) instead.
var ErrInvalidImage = errors.New("engine: invalid image")

// ValidateImage reports whether img is acceptable input: non-nil,
// non-zero-area. Adapters call this first in ExtractText.
func ValidateImage(img image.Image) error {
	if img == nil {
		return ErrInvalidImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ErrInvalidImage
	}
	return nil
}
