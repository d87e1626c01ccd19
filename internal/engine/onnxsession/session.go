// Package onnxsession is the ONNX Runtime session lifecycle shared by the
// easyocr, paddleocr, trocr, parseq and openocr(onnx backend) adapters:
// library discovery, session open/close, and NCHW tensor image encoding.
// Adapted from the teacher's internal/recognizer.NewRecognizer and
// internal/onnx helpers, generalized from a single fixed CRNN model to an
// arbitrary single-input/single-output (or single-input/dual-output for
// detector-style models) ONNX graph.
package onnxsession

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/mempool"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/obs"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/onnx"
	onnxrt "github.com/yalue/onnxruntime_go"
)

// Config describes how to open a session.
type Config struct {
	ModelPath  string
	NumThreads int
	GPU        onnx.GPUConfig
}

// Session wraps an ONNX Runtime dynamic session plus its I/O metadata.
// Run, RunValues and Close serialize on an internal mutex, so concurrent
// calls queue rather than run in parallel (spec §5's single-threaded engine
// contract).
type Session struct {
	mu      sync.Mutex
	handle  *onnxrt.DynamicAdvancedSession
	inputs  []onnxrt.InputOutputInfo
	outputs []onnxrt.InputOutputInfo
}

// Open loads the model at cfg.ModelPath and prepares a dynamic session.
func Open(cfg Config) (*Session, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnxsession: empty model path")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("onnxsession: model not found: %w", err)
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnxsession: failed to initialize runtime: %w", err)
		}
	}
	inputs, outputs, err := onnxrt.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("onnxsession: failed to read model I/O: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("onnxsession: model has no inputs or outputs")
	}

	opts, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnxsession: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	if cfg.NumThreads > 0 {
		_ = opts.SetIntraOpNumThreads(cfg.NumThreads)
	}
	if err := onnx.ConfigureSessionForGPU(opts, cfg.GPU); err != nil {
		// GPU unavailable falls back to CPU with a logged warning per spec
		// §5's "Shared resource policy".
		obs.Logger.Warn("onnxsession: gpu unavailable, falling back to cpu", "model", cfg.ModelPath, "error", err)
	}

	inputNames := make([]string, len(inputs))
	for i, in := range inputs {
		inputNames[i] = in.Name
	}
	outputNames := make([]string, len(outputs))
	for i, out := range outputs {
		outputNames[i] = out.Name
	}

	handle, err := onnxrt.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("onnxsession: failed to create session: %w", err)
	}
	return &Session{handle: handle, inputs: inputs, outputs: outputs}, nil
}

// InputShape returns the first input's declared dimensions.
func (s *Session) InputShape() []int64 {
	if len(s.inputs) == 0 {
		return nil
	}
	return s.inputs[0].Dimensions
}

// Close releases the underlying ONNX Runtime session. Safe to call
// multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil
	}
	err := s.handle.Destroy()
	s.handle = nil
	return err
}

// Run executes the session on a single NCHW float32 input tensor, returning
// the raw output tensors in declared output order. Callers must Destroy()
// each returned Value when done with it.
func (s *Session) Run(inputData []float32, shape []int64) ([]onnxrt.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil, fmt.Errorf("onnxsession: session closed")
	}
	inputTensor, err := onnxrt.NewTensor(onnxrt.NewShape(shape...), inputData)
	if err != nil {
		return nil, fmt.Errorf("onnxsession: failed to build input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputs := make([]onnxrt.Value, len(s.outputs))
	if err := s.handle.Run([]onnxrt.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("onnxsession: inference failed: %w", err)
	}
	return outputs, nil
}

// RunValues executes the session with caller-constructed input Values, in
// input-declaration order — used by multi-input graphs such as an
// encoder-decoder's (pixel_values, decoder_input_ids) pair. Callers own
// the lifecycle of inputs and must Destroy() returned outputs.
func (s *Session) RunValues(inputs []onnxrt.Value) ([]onnxrt.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return nil, fmt.Errorf("onnxsession: session closed")
	}
	outputs := make([]onnxrt.Value, len(s.outputs))
	if err := s.handle.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnxsession: inference failed: %w", err)
	}
	return outputs, nil
}

// EncodeNCHW converts img to a row-major NCHW float32 buffer of the given
// target size, normalizing pixel values to [0,1] then applying mean/std
// per-channel standardization with the given mean/std (callers pass
// DefaultMeanStd for ImageNet-style values; no default is substituted),
// matching the teacher's recognizer preprocessing convention.
func EncodeNCHW(img image.Image, targetW, targetH int, mean, std [3]float64) []float32 {
	n := 3 * targetH * targetW
	data := mempool.GetFloat32(n)
	bounds := img.Bounds()
	sx := float64(bounds.Dx()) / float64(targetW)
	sy := float64(bounds.Dy()) / float64(targetH)
	planeSize := targetH * targetW
	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			srcX := bounds.Min.X + int(float64(x)*sx)
			srcY := bounds.Min.Y + int(float64(y)*sy)
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			rf := float64(r>>8) / 255
			gf := float64(g>>8) / 255
			bf := float64(b>>8) / 255
			idx := y*targetW + x
			data[0*planeSize+idx] = float32((rf - mean[0]) / std[0])
			data[1*planeSize+idx] = float32((gf - mean[1]) / std[1])
			data[2*planeSize+idx] = float32((bf - mean[2]) / std[2])
		}
	}
	return data
}

// DefaultMeanStd is the ImageNet-style normalization most of the pack's
// recognition models (CRNN/transformer backbones) were trained with.
var DefaultMeanStd = [2][3]float64{
	{0.485, 0.456, 0.406},
	{0.229, 0.224, 0.225},
}

// FloatOutput type-asserts an output Value to a float32 tensor and returns
// its data and shape, matching the teacher's recognizer.inference decode
// entry point.
func FloatOutput(v onnxrt.Value) ([]float32, []int64, error) {
	tensor, ok := v.(*onnxrt.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("onnxsession: expected float32 tensor, got %T", v)
	}
	return tensor.GetData(), tensor.GetShape(), nil
}

// DestroyAll releases every non-nil output Value; safe to defer right
// after a successful Run.
func DestroyAll(values []onnxrt.Value) {
	for _, v := range values {
		if v != nil {
			_ = v.Destroy()
		}
	}
}
