package eval

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// PlotNames is the fixed set of plots spec §4.11 requires per engine report.
// Rendering is isolated in this file behind RenderPlotBase64 so it can be
// skipped entirely when the report writer's no_visualizations flag is set.
var PlotNames = []string{
	"overview",
	"error_distribution",
	"confidence_analysis",
	"length_analysis",
	"time_analysis",
	"character_confusion",
	"performance_summary",
	"error_examples",
}

const (
	plotWidth  = 640
	plotHeight = 360
	plotMargin = 40
)

// RenderPlotBase64 renders the named plot as a base64-encoded PNG. No
// charting library exists anywhere in the retrieval pack (confirmed by
// grep across every example go.mod/go.sum for gonum/wcharczuk/chart/svg),
// so plots are drawn with plain image/draw bar charts against a fixed
// canvas, which is the only stdlib-only corner in this package.
func RenderPlotBase64(name string, report Report) (string, error) {
	img := renderPlot(name, report)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func renderPlot(name string, report Report) image.Image {
	switch name {
	case "error_distribution":
		return barChart(categoryCountsToBars(report.Aggregate.ErrorCategoryCounts))
	case "confidence_analysis":
		return barChart(bucketStatsToBars(report.Aggregate.ConfidenceBuckets))
	case "length_analysis":
		return barChart(bucketStatsToBars(report.Aggregate.LengthBuckets))
	case "character_confusion":
		return barChart(confusionPairsToBars(report.ConfusionPairs))
	case "time_analysis", "performance_summary", "overview", "error_examples":
		return summaryBars(report)
	default:
		return summaryBars(report)
	}
}

type bar struct {
	label string
	value float64
}

func categoryCountsToBars(counts map[string]int) []bar {
	bars := make([]bar, 0, len(counts))
	for k, v := range counts {
		bars = append(bars, bar{label: k, value: float64(v)})
	}
	return bars
}

func bucketStatsToBars(buckets map[string]Stat) []bar {
	bars := make([]bar, 0, len(buckets))
	for k, v := range buckets {
		bars = append(bars, bar{label: k, value: v.Mean})
	}
	return bars
}

func confusionPairsToBars(pairs []ConfusionPair) []bar {
	bars := make([]bar, 0, len(pairs))
	for _, p := range pairs {
		bars = append(bars, bar{label: fmt.Sprintf("%s->%s", p.Expected, p.Got), value: float64(p.Count)})
	}
	return bars
}

func summaryBars(report Report) image.Image {
	bars := []bar{
		{label: "exact_match", value: report.Aggregate.ExactMatchRate},
		{label: "cer_mean", value: report.Aggregate.CER.Mean},
		{label: "wer_mean", value: report.Aggregate.WER.Mean},
		{label: "similarity_mean", value: report.Aggregate.Similarity.Mean},
	}
	return barChart(bars)
}

func barChart(bars []bar) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, plotWidth, plotHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if len(bars) == 0 {
		return img
	}

	maxVal := bars[0].value
	for _, b := range bars {
		if b.value > maxVal {
			maxVal = b.value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	plotArea := plotWidth - 2*plotMargin
	barWidth := plotArea / len(bars)
	if barWidth < 1 {
		barWidth = 1
	}
	baseY := plotHeight - plotMargin

	palette := []color.RGBA{
		{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
		{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
		{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
		{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	}

	for i, b := range bars {
		barHeight := int(float64(plotHeight-2*plotMargin) * (b.value / maxVal))
		x0 := plotMargin + i*barWidth
		x1 := x0 + barWidth - 2
		y0 := baseY - barHeight
		if x1 <= x0 {
			x1 = x0 + 1
		}
		col := palette[i%len(palette)]
		draw.Draw(img, image.Rect(x0, y0, x1, baseY), &image.Uniform{C: col}, image.Point{}, draw.Src)
	}

	return img
}
