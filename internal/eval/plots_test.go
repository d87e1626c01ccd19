package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlotBase64AllNamesSucceed(t *testing.T) {
	report := sampleReport()
	for _, name := range PlotNames {
		b64, err := RenderPlotBase64(name, report)
		require.NoError(t, err, name)
		assert.NotEmpty(t, b64, name)
	}
}

func TestBarChartWithNoBarsReturnsBlankCanvas(t *testing.T) {
	img := barChart(nil)
	assert.Equal(t, plotWidth, img.Bounds().Dx())
	assert.Equal(t, plotHeight, img.Bounds().Dy())
}

func TestSampleReportExactMatchRateIsHalf(t *testing.T) {
	report := sampleReport()
	bars := []bar{
		{label: "exact_match", value: report.Aggregate.ExactMatchRate},
	}
	assert.Equal(t, 0.5, bars[0].value)
}
