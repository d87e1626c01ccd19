package eval

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON emits the full report as JSON statistics.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteCSV emits one row per item, the per-item results output.
func WriteCSV(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	header := []string{"id", "predicted", "ground_truth", "exact_match", "cer", "wer", "similarity", "error_category", "confidence", "processing_time_ms"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, it := range report.Items {
		row := []string{
			it.ID,
			it.Predicted,
			it.GroundTruth,
			strconv.FormatBool(it.ExactMatch),
			strconv.FormatFloat(it.CER, 'f', 4, 64),
			strconv.FormatFloat(it.WER, 'f', 4, 64),
			strconv.FormatFloat(it.Similarity, 'f', 4, 64),
			string(it.ErrorCategory),
			strconv.FormatFloat(it.Confidence, 'f', 4, 64),
			strconv.FormatFloat(it.ProcessingTimeMS, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteMarkdownSummary emits the Markdown summary report.
func WriteMarkdownSummary(w io.Writer, report Report) error {
	_, err := fmt.Fprintf(w, `# Evaluation report: %s / %s

- Items: %d
- Exact match rate: %.2f%%
- CER mean/median: %.4f / %.4f
- WER mean/median: %.4f / %.4f
- Similarity mean/median: %.4f / %.4f
- Processing time mean (ms): %.2f

## Error categories

`,
		report.EngineName, report.PreprocessName, len(report.Items),
		report.Aggregate.ExactMatchRate*100,
		report.Aggregate.CER.Mean, report.Aggregate.CER.Median,
		report.Aggregate.WER.Mean, report.Aggregate.WER.Median,
		report.Aggregate.Similarity.Mean, report.Aggregate.Similarity.Median,
		report.Aggregate.ProcessingTimeMS.Mean,
	)
	if err != nil {
		return err
	}
	for cat, count := range report.Aggregate.ErrorCategoryCounts {
		if _, err := fmt.Fprintf(w, "- %s: %d\n", cat, count); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n## Top character confusions\n\n| expected | got | count |\n|---|---|---|\n"); err != nil {
		return err
	}
	for _, p := range report.ConfusionPairs {
		if _, err := fmt.Fprintf(w, "| %q | %q | %d |\n", p.Expected, p.Got, p.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteHTML emits a self-contained per-engine HTML report with the fixed
// plot set embedded as inline base64 PNGs (see plots.go). Set
// noVisualizations to skip rendering plots and leave the img tags out,
// matching spec §4.11's "Plot rendering... may be disabled" flag.
func WriteHTML(w io.Writer, report Report, noVisualizations bool) error {
	if _, err := fmt.Fprintf(w, "<html><head><title>%s / %s</title></head><body>\n", report.EngineName, report.PreprocessName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "<h1>%s / %s</h1>\n<p>Items: %d, exact match: %.2f%%</p>\n",
		report.EngineName, report.PreprocessName, len(report.Items), report.Aggregate.ExactMatchRate*100); err != nil {
		return err
	}
	if !noVisualizations {
		for _, name := range PlotNames {
			b64, err := RenderPlotBase64(name, report)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n<img src=\"data:image/png;base64,%s\" />\n", name, b64); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprint(w, "</body></html>\n")
	return err
}
