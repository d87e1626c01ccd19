package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/fullpipeline"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/utils"
	"github.com/spf13/cobra"
)

var recognizeImagePath string

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Run the full detect-preprocess-recognize-parse pipeline over a single image",
	RunE:  runRecognize,
}

func init() {
	recognizeCmd.Flags().StringVar(&recognizeImagePath, "image", "", "image file to recognize (required)")
	_ = recognizeCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(c *cobra.Command, _ []string) error {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return wrapConfigErr(err)
	}

	img, _, err := utils.LoadImage(recognizeImagePath)
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

	pcfg := fullpipeline.DefaultConfig(eng)
	pcfg.Preprocess = cfg.Preprocess
	pcfg.DateParser = cfg.BuildDateParser()

	pipeline := fullpipeline.New(pcfg)
	report := pipeline.Run(ctx, img)

	enc := json.NewEncoder(c.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return wrapRuntimeErr(fmt.Errorf("encode report: %w", err))
	}
	return nil
}
