// Boundary adapter for the upstream region detector (SPEC_FULL §3.2). The
// full-pipeline adapter (§4.10) needs *a* detector in front of the OCR core,
// but reimplementing the upstream segmentation/bbox model is explicitly out
// of scope. RegionDetector is the narrow seam: anything satisfying it sits
// in front of fullpipeline, whether that's a real upstream segmentation
// model or, for tests and the evaluator's self-check mode, Stub.
package detector

import (
	"image"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/ocrimage"
)

// RegionDetector is the narrow boundary the full-pipeline adapter depends
// on; this package holds no concrete segmentation model, only Stub.
type RegionDetector interface {
	Detect(img image.Image) ([]ocrimage.Crop, error)
}

// Stub is a deterministic RegionDetector used by tests and the evaluator's
// self-check mode: it returns the whole image as a single unmasked crop,
// so callers can exercise the rest of the pipeline without a real
// segmentation model or test fixtures for one.
type Stub struct{}

// Detect returns img's full bounds as the sole crop.
func (Stub) Detect(img image.Image) ([]ocrimage.Crop, error) {
	if img == nil {
		return nil, nil
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, nil
	}
	return []ocrimage.Crop{{
		Image: img,
		Box:   ocrimage.Box{X1: float64(b.Min.X), Y1: float64(b.Min.Y), X2: float64(b.Max.X), Y2: float64(b.Max.Y)},
	}}, nil
}
