package eval

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// BundlePDF renders the fixed plot set to temporary PNG files and imports
// them into a single multi-page PDF at outPath, one plot per page,
// mirroring the teacher's use of pdfcpu's api package for PDF I/O (there
// it extracts images from a PDF; here the operation runs in reverse,
// importing generated plot images into one). The Markdown summary is not
// embeddable through pdfcpu's image-import path, so WriteMarkdownSummary
// should be used to emit an accompanying .md file alongside the PDF.
func BundlePDF(report Report, outPath string) error {
	tempDir, err := os.MkdirTemp("", "ocrcore-report-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var files []string
	for _, name := range PlotNames {
		b64, err := RenderPlotBase64(name, report)
		if err != nil {
			continue
		}
		path := filepath.Join(tempDir, name+".png")
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			continue
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			continue
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		return fmt.Errorf("no plots rendered for %s/%s", report.EngineName, report.PreprocessName)
	}

	return api.ImportImagesFile(files, outPath, nil, nil)
}
