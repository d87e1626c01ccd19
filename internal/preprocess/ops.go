package preprocess

import (
	"errors"
	"image"
	"image/color"
	"log/slog"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/cvutil"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/ocrimage"
	"github.com/disintegration/imaging"
)

func logStepFailure(step StepName, err error) {
	slog.Warn("preprocessing step skipped", "step", string(step), "error", err)
}

// normalizeColors rebalances channels. Single-channel input is passed
// through untouched (each color-normalizing transform must detect and
// branch on channel count, per spec §9's second rough-edge safeguard).
func normalizeColors(img image.Image, cfg StepConfig) (image.Image, error) {
	if ocrimage.Channels(img) == 1 {
		return img, nil
	}
	switch cfg.Method {
	case "gray_world":
		return grayWorldBalance(img), nil
	case "histogram_equalization":
		return histogramEqualize(img), nil
	case "simple_white_balance", "":
		return simpleWhiteBalance(img), nil
	default:
		return nil, errors.New("unknown normalize_colors method: " + cfg.Method)
	}
}

// histogramEqualize equalizes the luma channel via cvutil and repaints it,
// collapsing to single-channel output (sufficient for OCR contrast repair).
func histogramEqualize(img image.Image) image.Image {
	gray := cvutil.ToGray(img)
	hist := gray.Histogram()
	total := len(gray.Pix)
	if total == 0 {
		return img
	}
	var lut [256]uint8
	var cdf int
	for i, c := range hist {
		cdf += c
		lut[i] = uint8(cdf * 255 / total) //nolint:gosec // bounded by total
	}
	out := cvutil.NewGray(gray.W, gray.H)
	for i, v := range gray.Pix {
		out.Pix[i] = lut[v]
	}
	return out.ToImage()
}

func grayWorldBalance(img image.Image) image.Image {
	b := img.Bounds()
	var rSum, gSum, bSum float64
	var n float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rSum += float64(r >> 8)
			gSum += float64(g >> 8)
			bSum += float64(bl >> 8)
			n++
		}
	}
	if n == 0 {
		return img
	}
	avg := (rSum + gSum + bSum) / (3 * n)
	rGain, gGain, bGain := avg/(rSum/n+1e-6), avg/(gSum/n+1e-6), avg/(bSum/n+1e-6)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: scaleByte(c.R, rGain),
			G: scaleByte(c.G, gGain),
			B: scaleByte(c.B, bGain),
			A: c.A,
		}
	})
}

func scaleByte(v uint8, gain float64) uint8 {
	return toByte(float64(v) * gain)
}

func toByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func simpleWhiteBalance(img image.Image) image.Image {
	b := img.Bounds()
	var minR, minG, minB = 255.0, 255.0, 255.0
	var maxR, maxG, maxB = 0.0, 0.0, 0.0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(bl>>8)
			minR, maxR = minFloat(minR, rf), maxFloat(maxR, rf)
			minG, maxG = minFloat(minG, gf), maxFloat(maxG, gf)
			minB, maxB = minFloat(minB, bf), maxFloat(maxB, bf)
		}
	}
	stretch := func(v, lo, hi float64) uint8 {
		if hi-lo < 1 {
			return toByte(v)
		}
		return toByte((v - lo) / (hi - lo) * 255)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: stretch(float64(c.R), minR, maxR),
			G: stretch(float64(c.G), minG, maxG),
			B: stretch(float64(c.B), minB, maxB),
			A: c.A,
		}
	})
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// resizeStep upscales if the image is below the configured minima.
func resizeStep(img image.Image, cfg StepConfig) (image.Image, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ocrimage.ErrEmptyImage
	}
	needsUpscale := (cfg.MinHeight > 0 && h < cfg.MinHeight) || (cfg.MinWidth > 0 && w < cfg.MinWidth)
	if !needsUpscale && cfg.Target <= 0 {
		return img, nil
	}

	filter := interpolationFilter(cfg.Interpolation)
	targetH := h
	targetW := w
	if cfg.Target > 0 {
		targetH = cfg.Target
	} else if cfg.MinHeight > 0 && h < cfg.MinHeight {
		targetH = cfg.MinHeight
	}
	switch {
	case cfg.MaintainAspect:
		scale := float64(targetH) / float64(h)
		targetW = int(float64(w) * scale)
	case cfg.MinWidth > 0 && w < cfg.MinWidth:
		targetW = cfg.MinWidth
	}
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	return imaging.Resize(img, targetW, targetH, filter), nil
}

func interpolationFilter(name string) imaging.ResampleFilter {
	switch name {
	case "bicubic":
		return imaging.CatmullRom
	case "lanczos":
		return imaging.Lanczos
	case "bilinear", "":
		return imaging.Linear
	default:
		return imaging.Linear
	}
}

// deskewStep estimates skew via the configured method and rotates within
// [-max_angle, +max_angle].
func deskewStep(img image.Image, cfg StepConfig) (image.Image, error) {
	maxAngle := cfg.MaxAngle
	if maxAngle <= 0 {
		maxAngle = 10
	}
	gray := cvutil.ToGray(img)
	var angle float64
	switch cfg.Method {
	case "projection":
		// cvutil.Rotate turns clockwise for positive angles and imaging.Rotate
		// counter-clockwise, so the projection estimate is negated.
		angle = -estimateAngleByProjection(gray, maxAngle)
	case "moments":
		angle = estimateAngleByMoments(gray, maxAngle)
	case "hough", "":
		angle = gray.EstimateSkewAngle(maxAngle)
	default:
		return nil, errors.New("unknown deskew method")
	}
	if angle == 0 {
		return img, nil
	}
	return rotateImage(img, angle), nil
}

// estimateAngleByProjection finds the row-projection skew by testing small
// angle increments and picking the one that maximizes profile sharpness
// (the variance of row ink-mass after rotation) — a horizontal text line
// produces a peaky projection profile only when upright.
func estimateAngleByProjection(gray *cvutil.Gray, maxAngle float64) float64 {
	bin := gray.Threshold(gray.OtsuThreshold())
	bestAngle := 0.0
	bestScore := -1.0
	for a := -maxAngle; a <= maxAngle; a += 1.0 {
		rotated := bin.Rotate(a)
		profile := rotated.RowProfile()
		score := profileVariance(profile)
		if score > bestScore {
			bestScore = score
			bestAngle = a
		}
	}
	return bestAngle
}

func profileVariance(profile []int) float64 {
	if len(profile) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range profile {
		sum += float64(v)
		sumSq += float64(v) * float64(v)
	}
	n := float64(len(profile))
	mean := sum / n
	return sumSq/n - mean*mean
}

func estimateAngleByMoments(gray *cvutil.Gray, maxAngle float64) float64 {
	c, ok := gray.LargestContour()
	if !ok {
		return 0
	}
	return clampAngle(c.AngleDegrees, maxAngle)
}

func clampAngle(a, max float64) float64 {
	if a > max {
		return max
	}
	if a < -max {
		return -max
	}
	return a
}

func rotateImage(img image.Image, angleDegrees float64) image.Image {
	// imaging.Rotate rotates counter-clockwise for positive degrees and
	// enlarges the canvas to hold the whole result. The uncovered corners are
	// filled with one colour, that of the top-left source pixel; edge pixels
	// are not replicated.
	return imaging.Rotate(img, angleDegrees, replicateEdgeColor(img))
}

func replicateEdgeColor(img image.Image) color.Color {
	b := img.Bounds()
	return img.At(b.Min.X, b.Min.Y)
}

// claheStep applies adaptive contrast. Single-channel input gets greyscale
// CLAHE directly; colour input is converted to grey, equalized, and returned
// as a grey RGBA image (see applyLumaOnly), so the original colours are not
// restored.
func claheStep(img image.Image, cfg StepConfig) (image.Image, error) {
	clip := cfg.ClipLimit
	if clip < 1.0 {
		clip = 1.5
	}
	tgx, tgy := cfg.TileGridX, cfg.TileGridY
	if tgx <= 0 {
		tgx = 8
	}
	if tgy <= 0 {
		tgy = 8
	}
	if ocrimage.Channels(img) == 1 {
		gray := cvutil.ToGray(img)
		return gray.CLAHE(clip, tgx, tgy).ToImage(), nil
	}
	return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.CLAHE(clip, tgx, tgy) }), nil
}

// applyLumaOnly converts to grey, applies op, and returns the grey result
// painted back as an RGBA image (channel count is intentionally collapsed
// here — CLAHE/threshold/sharpen downstream recognition only needs luma).
func applyLumaOnly(img image.Image, op func(*cvutil.Gray) *cvutil.Gray) image.Image {
	gray := cvutil.ToGray(img)
	return op(gray).ToRGBA()
}

func morphologyStep(img image.Image, cfg StepConfig) (image.Image, error) {
	kernel := cfg.KernelSize
	if kernel < 1 {
		kernel = 3
	}
	var op cvutil.MorphOp
	switch cfg.Op {
	case "closing":
		op = cvutil.MorphClosing
	case "opening", "":
		op = cvutil.MorphOpening
	default:
		return nil, errors.New("unknown morphology op: " + cfg.Op)
	}
	return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.Morphology(op, kernel) }), nil
}

func sharpenStep(img image.Image, cfg StepConfig) (image.Image, error) {
	strength := cfg.Strength
	if strength <= 0 {
		strength = 0.5
	}
	if strength > 2 {
		strength = 2
	}
	switch cfg.Method {
	case "laplacian":
		return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.LaplacianSharpen(strength) }), nil
	case "kernel":
		return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.KernelSharpen(strength) }), nil
	case "unsharp_mask", "":
		return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.UnsharpMask(1.0, strength) }), nil
	default:
		return nil, errors.New("unknown sharpen method")
	}
}

func denoiseStep(img image.Image, cfg StepConfig) (image.Image, error) {
	switch cfg.Method {
	case "bilateral":
		sigma := cfg.Sigma
		if sigma <= 0 {
			sigma = 25
		}
		return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.BilateralBlur(9, sigma, sigma) }), nil
	case "median":
		k := cfg.KernelSize
		if k < 3 {
			k = 5
		}
		return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.MedianBlur(k) }), nil
	case "gaussian", "":
		sigma := cfg.Sigma
		if sigma <= 0 {
			sigma = 1.0
		}
		return applyLumaOnly(img, func(g *cvutil.Gray) *cvutil.Gray { return g.GaussianBlur(sigma) }), nil
	case "none":
		return img, nil
	default:
		return nil, errors.New("unknown denoise method")
	}
}

func thresholdStep(img image.Image, cfg StepConfig) (image.Image, error) {
	gray := cvutil.ToGray(img)
	switch cfg.Method {
	case "otsu", "":
		return gray.Threshold(gray.OtsuThreshold()).ToImage(), nil
	case "fixed":
		t := cfg.Fixed
		if t <= 0 {
			t = 128
		}
		return gray.Threshold(uint8(clampIntByte(t))).ToImage(), nil
	case "adaptive_gaussian":
		block := cfg.BlockSize
		if block < 3 {
			block = 11
		}
		return gray.AdaptiveGaussianThreshold(block, cfg.C).ToImage(), nil
	default:
		return nil, errors.New("unknown threshold method")
	}
}

func clampIntByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// paddingStep adds a border of pixels filled with cfg.Fill, accepting
// either a scalar or an (R,G,B) triple (this was a known bug class in the
// original system per spec §9: the converter must accept both).
func paddingStep(img image.Image, cfg StepConfig) (image.Image, error) {
	if cfg.Pixels <= 0 {
		return img, nil
	}
	fill := cfg.Fill
	if len(fill) == 0 {
		fill = []int{0}
	}
	f, err := ocrimage.ParseFill(fill)
	if err != nil {
		return nil, err
	}
	channels := ocrimage.Channels(img)
	return imaging.PasteCenter(
		imaging.New(
			img.Bounds().Dx()+2*cfg.Pixels,
			img.Bounds().Dy()+2*cfg.Pixels,
			f.Color(channels),
		),
		img,
	), nil
}

func brightnessNormalizeStep(img image.Image, cfg StepConfig) (image.Image, error) {
	targetMean := cfg.TargetMean
	if targetMean <= 0 {
		targetMean = 128
	}
	alpha := cfg.Alpha
	if alpha <= 0 {
		alpha = 1.0
	}
	gray := cvutil.ToGray(img)
	mean := gray.Mean()
	if mean <= 0 {
		return img, nil
	}
	scale := 1.0 + alpha*((targetMean-mean)/255.0)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scaleByte(c.R, scale), G: scaleByte(c.G, scale), B: scaleByte(c.B, scale), A: c.A}
	}), nil
}
