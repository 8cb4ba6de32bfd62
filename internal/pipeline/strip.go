package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/6801318d8d/proquest-dl/internal/pdf"
)

// transform applies op to every PDF in inDir, writing a file of the
// same name to outDir. Files whose output already exists are skipped so
// an interrupted run resumes cheaply. Any op failure aborts the stage.
func transform(inDir, outDir string, log *slog.Logger, op func(in, out string) error) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		in := filepath.Join(inDir, entry.Name())
		out := filepath.Join(outDir, entry.Name())

		if _, err := os.Stat(out); err == nil {
			log.Debug("skipping, output exists", "file", entry.Name())
			continue
		}
		log.Debug("processing", "file", entry.Name())
		if err := op(in, out); err != nil {
			return fmt.Errorf("file %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// StripLastPages drops the final page of every article PDF, removing
// the trailing copyright notice the aggregator appends to each
// download.
func StripLastPages(inDir, outDir string, log *slog.Logger) error {
	log.Info("removing trailing copyright pages")
	return transform(inDir, outDir, log, pdf.RemoveLastPage)
}

// StripCropBoxes removes page-level crop boxes from every article PDF
// so later stages see the full media box.
func StripCropBoxes(inDir, outDir string, log *slog.Logger) error {
	log.Info("removing crop boxes")
	return transform(inDir, outDir, log, pdf.StripCropBox)
}
