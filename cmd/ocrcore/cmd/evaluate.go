package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/config"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/eval"
	"github.com/spf13/cobra"
)

var (
	evalDatasetDir     string
	evalGroundTruth    string
	evalOutDir         string
	evalNoViz          bool
	evalWatchAddr      string
	evalBundlePDF      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a Recognition Engine over a dataset and report accuracy metrics",
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalDatasetDir, "dataset", "", "directory of dataset images (required)")
	evaluateCmd.Flags().StringVar(&evalGroundTruth, "ground-truth", "", "ground-truth JSON annotations file (required)")
	evaluateCmd.Flags().StringVar(&evalOutDir, "out", "report", "output directory for report artifacts")
	evaluateCmd.Flags().BoolVar(&evalNoViz, "no-visualizations", false, "skip rendering plot images into the HTML report")
	evaluateCmd.Flags().StringVar(&evalWatchAddr, "watch", "", "serve live progress over websocket at this address (e.g. :8090)")
	evaluateCmd.Flags().BoolVar(&evalBundlePDF, "pdf", false, "also bundle the rendered plots into a PDF via report_pdf.BundlePDF")
	_ = evaluateCmd.MarkFlagRequired("dataset")
	_ = evaluateCmd.MarkFlagRequired("ground-truth")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return wrapConfigErr(err)
	}

	gt, err := config.LoadGroundTruth(evalGroundTruth)
	if err != nil {
		return wrapDatasetErr(err)
	}
	items, err := loadDataset(evalDatasetDir, gt)
	if err != nil {
		return wrapDatasetErr(err)
	}

	eng, err := cfg.BuildEngine()
	if err != nil {
		return wrapEngineErr(err)
	}
	if err := eng.Initialize(ctx); err != nil {
		return wrapEngineErr(err)
	}
	defer func() { _ = eng.Close() }()

	evaluator := eval.New(eng, cfg.Preprocess)

	var broadcaster *eval.Broadcaster
	var watchServer *http.Server
	if evalWatchAddr != "" {
		broadcaster = eval.NewBroadcaster()
		evaluator.Progress = broadcaster

		mux := http.NewServeMux()
		mux.HandleFunc("/ws", broadcaster.HandleWebSocket)
		watchServer = &http.Server{Addr: evalWatchAddr, Handler: mux}
		go func() {
			_ = watchServer.ListenAndServe()
		}()
		defer func() { _ = watchServer.Close() }()
	}

	report := evaluator.EvaluateDataset(ctx, items)

	if err := writeReportArtifacts(evalOutDir, eng.GetName(), report); err != nil {
		return wrapRuntimeErr(err)
	}

	fmt.Fprintf(c.OutOrStdout(), "wrote report for %d item(s) to %s\n", len(report.Items), evalOutDir)
	return nil
}

// writeReportArtifacts writes every report format spec §6 names into dir,
// named by engine.
func writeReportArtifacts(dir, engineName string, report eval.Report) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	jsonPath := filepath.Join(dir, fmt.Sprintf("%s_results.json", engineName))
	if err := writeFile(jsonPath, func(f *os.File) error { return eval.WriteJSON(f, report) }); err != nil {
		return err
	}

	csvPath := filepath.Join(dir, fmt.Sprintf("%s_results.csv", engineName))
	if err := writeFile(csvPath, func(f *os.File) error { return eval.WriteCSV(f, report) }); err != nil {
		return err
	}

	statsPath := filepath.Join(dir, "statistics.json")
	statsBytes, err := json.MarshalIndent(report.Aggregate, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	if err := os.WriteFile(statsPath, statsBytes, 0o600); err != nil {
		return fmt.Errorf("write statistics.json: %w", err)
	}

	mdPath := filepath.Join(dir, "report.md")
	if err := writeFile(mdPath, func(f *os.File) error { return eval.WriteMarkdownSummary(f, report) }); err != nil {
		return err
	}

	htmlPath := filepath.Join(dir, "report.html")
	if err := writeFile(htmlPath, func(f *os.File) error { return eval.WriteHTML(f, report, evalNoViz) }); err != nil {
		return err
	}

	if evalBundlePDF {
		if err := eval.BundlePDF(report, filepath.Join(dir, "report.pdf")); err != nil {
			return fmt.Errorf("bundle pdf: %w", err)
		}
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path) //nolint:gosec // G304: path is built from CLI-controlled --out, same trust level as other writes here
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
