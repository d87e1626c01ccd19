package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/config"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/eval"
	"github.com/dev-rafaelmachado/datalid-ocrcore/internal/utils"
)

// loadDataset walks dir for supported image files and pairs each with its
// ground-truth text by filename, per spec §6's ground-truth schema. Images
// present on disk with no matching annotation, and annotations with no
// matching file, are both reported as errors rather than silently skipped.
func loadDataset(dir string, gt *config.GroundTruth) ([]eval.DatasetItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dataset dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !utils.IsSupportedImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no supported images found in %s", dir)
	}

	items := make([]eval.DatasetItem, 0, len(names))
	var missing []string
	for _, name := range names {
		truth, ok := gt.Annotations[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		img, _, err := utils.LoadImage(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		items = append(items, eval.DatasetItem{ID: name, Image: img, GroundTruth: truth})
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%d image(s) have no ground-truth annotation: %v", len(missing), missing)
	}

	var orphaned []string
	for name := range gt.Annotations {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			orphaned = append(orphaned, name)
		}
	}
	if len(orphaned) > 0 {
		sort.Strings(orphaned)
		return nil, fmt.Errorf("%d annotation(s) have no matching image file: %v", len(orphaned), orphaned)
	}

	return items, nil
}
