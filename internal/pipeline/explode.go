package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
)

// Explode splits every article PDF in inDir into one file per physical
// page in outDir. The printed page numbers come from the article's file
// name; the i-th physical page of the file becomes pages_<n>.pdf for
// the i-th smallest declared page number. After this stage no
// multi-page article files flow further down the pipeline.
func Explode(inDir, outDir string, log *slog.Logger) error {
	log.Info("extracting single pages from article PDFs")

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inDir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(inDir, entry.Name()))
		}
	}
	pagerange.SortNatural(files)

	for _, file := range files {
		pages, err := pagerange.FromFileName(file)
		if err != nil {
			return fmt.Errorf("cannot derive pages of %s: %w", filepath.Base(file), err)
		}

		for i, page := range pages {
			out := filepath.Join(outDir, pagerange.SinglePageFileName(page))
			if _, err := os.Stat(out); err == nil {
				log.Debug("skipping page, output exists", "page", page)
				continue
			}
			log.Debug("extracting page",
				"file", filepath.Base(file), "physical", i+1, "page", page)
			if err := pdf.ExtractPage(file, out, i+1); err != nil {
				return err
			}
		}
	}
	return nil
}
