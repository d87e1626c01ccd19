package eval

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() Report {
	items := []ItemResult{
		{ID: "1", Predicted: "01/01/2030", GroundTruth: "01/01/2030", ExactMatch: true, Confidence: 0.9},
		{ID: "2", Predicted: "2O30", GroundTruth: "2030", ExactMatch: false, CER: 0.25, Confidence: 0.4},
	}
	return Report{
		EngineName:     "tesseract",
		PreprocessName: "default",
		Items:          items,
		Aggregate:      aggregateResults(items),
		ConfusionPairs: topConfusionPairs(items, 20),
	}
}

func TestWriteJSONProducesValidJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "tesseract", decoded.EngineName)
	assert.Len(t, decoded.Items, 2)
}

func TestWriteCSVHasHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
}

func TestWriteMarkdownSummaryContainsEngineName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdownSummary(&buf, sampleReport()))
	assert.True(t, strings.Contains(buf.String(), "tesseract"))
}

func TestWriteHTMLWithNoVisualizationsSkipsImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleReport(), true))
	assert.False(t, strings.Contains(buf.String(), "<img"))
}

func TestWriteHTMLWithVisualizationsEmbedsImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleReport(), false))
	assert.True(t, strings.Contains(buf.String(), "<img"))
}
