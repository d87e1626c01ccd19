package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/eval"
	"github.com/spf13/cobra"
)

var (
	reportInPath  string
	reportOutDir  string
	reportNoViz   bool
	reportWatch   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate report formats from a previously saved evaluation report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportInPath, "in", "", "path to a saved <engine>_results.json file (required)")
	reportCmd.Flags().StringVar(&reportOutDir, "out", "report", "output directory for regenerated artifacts")
	reportCmd.Flags().BoolVar(&reportNoViz, "no-visualizations", false, "skip rendering plot images into the HTML report")
	reportCmd.Flags().StringVar(&reportWatch, "watch", "", "serve the saved report's websocket progress endpoint and block (e.g. :8090)")
	_ = reportCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(reportCmd)
}

func runReport(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(reportInPath) //nolint:gosec // G304: path is an explicit CLI argument
	if err != nil {
		return wrapDatasetErr(fmt.Errorf("open %s: %w", reportInPath, err))
	}
	defer func() { _ = f.Close() }()

	var report eval.Report
	if err := json.NewDecoder(f).Decode(&report); err != nil {
		return wrapDatasetErr(fmt.Errorf("decode %s: %w", reportInPath, err))
	}

	evalNoViz = reportNoViz
	if err := writeReportArtifacts(reportOutDir, report.EngineName, report); err != nil {
		return wrapRuntimeErr(err)
	}
	fmt.Fprintf(c.OutOrStdout(), "regenerated report artifacts in %s\n", reportOutDir)

	if reportWatch != "" {
		broadcaster := eval.NewBroadcaster()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", broadcaster.HandleWebSocket)
		srv := &http.Server{Addr: reportWatch, Handler: mux}
		fmt.Fprintf(c.OutOrStdout(), "serving websocket progress endpoint at %s/ws\n", reportWatch)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case <-ctx.Done():
			_ = srv.Close()
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return wrapRuntimeErr(err)
			}
		}
	}

	return nil
}
