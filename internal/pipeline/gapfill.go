package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/6801318d8d/proquest-dl/internal/pagerange"
)

// FillGaps completes the page set: every page number in [1, max] that
// has no file in pagesDir gets a copy of the blank template. After this
// stage the directory holds exactly one file per page of the issue.
// An empty page set is fatal; an issue with no known pages cannot be
// completed.
func FillGaps(pagesDir, blankPath string, log *slog.Logger) error {
	ledger, err := pagerange.LedgerFromDir(pagesDir)
	if err != nil {
		return err
	}
	if ledger.Len() == 0 {
		return fmt.Errorf("no pages found in %s, cannot determine issue length", pagesDir)
	}

	blank, err := os.ReadFile(blankPath)
	if err != nil {
		return fmt.Errorf("failed to read blank page template: %w", err)
	}

	max := ledger.Max()
	log.Info("filling page gaps", "pages_present", ledger.Len(), "max_page", max)

	for page := 1; page <= max; page++ {
		if ledger.Has(page) {
			continue
		}
		out := filepath.Join(pagesDir, pagerange.SinglePageFileName(page))
		log.Debug("inserting blank page", "page", page)
		if err := os.WriteFile(out, blank, 0o644); err != nil {
			return fmt.Errorf("failed to write blank page %d: %w", page, err)
		}
	}
	return nil
}
