package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
	"github.com/6801318d8d/proquest-dl/internal/profile"
	"github.com/6801318d8d/proquest-dl/internal/synth"
)

// generatedTOCName is the fixed slot a synthesized table of contents
// occupies: two pages immediately after the cover.
const generatedTOCName = "pages_2-3.pdf"

// tocCornerText reads the page-number stamp from the top-right corner
// of a TOC's first page. Overridable in tests, where no scanned TOC
// with a real stamp is available.
var tocCornerText = func(path string, pageWidth, pageHeight float64, layout profile.TOCLayout) (string, error) {
	return pdf.TextNearTopRight(path, pageWidth, pageHeight, layout.XOffset, layout.YOffset)
}

// PlaceSuppliedTOC resolves the page range a downloaded TOC occupies
// and copies it into articleDir under that range's file name, so the
// explode stage treats it like any other article. The TOC skips the
// regular strip stages, so its trailing copyright page is removed here.
//
// The start page is read from a corner stamp whose position the
// publication profile supplies; out-of-bounds readings are fatal
// because a misread would corrupt the final page ordering.
func PlaceSuppliedTOC(iss *issue.Issue, layout profile.TOCLayout, tocDir, articleDir string, log *slog.Logger) error {
	tocPath := filepath.Join(tocDir, pagerange.TOCFileName)
	stripped := filepath.Join(tocDir, "toc_stripped.pdf")

	if err := pdf.RemoveLastPage(tocPath, stripped); err != nil {
		return err
	}

	text, err := tocCornerText(stripped, iss.PageWidth, iss.PageHeight, layout)
	if err != nil {
		return err
	}
	start, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("TOC corner stamp %q is not a page number: %w", text, err)
	}
	if start <= 0 || start > layout.MaxStartPage {
		return fmt.Errorf("TOC start page %d outside (0, %d], layout heuristic misfired",
			start, layout.MaxStartPage)
	}

	count, err := pdf.PageCount(stripped)
	if err != nil {
		return err
	}
	if count <= 0 || count > layout.MaxTOCPages {
		return fmt.Errorf("TOC length %d outside (0, %d], layout heuristic misfired",
			count, layout.MaxTOCPages)
	}

	pages := make([]int, count)
	for i := range pages {
		pages[i] = start + i
	}
	log.Info("placing supplied TOC", "pages", pagerange.Compact(pages))

	data, err := os.ReadFile(stripped)
	if err != nil {
		return fmt.Errorf("failed to read stripped TOC: %w", err)
	}
	dest := filepath.Join(articleDir, pagerange.FileName(pages))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to place TOC at %s: %w", dest, err)
	}
	return nil
}

// GenerateTOC synthesizes a table of contents from the article list and
// places it at the fixed pages_2-3 slot in articleDir.
func GenerateTOC(iss *issue.Issue, tocDir, articleDir string, log *slog.Logger) error {
	log.Info("no table of contents supplied, generating one")

	scratch := filepath.Join(tocDir, "generated_toc.pdf")
	if err := synth.TOCDocument(iss.Articles, scratch, iss.PageWidth, iss.PageHeight); err != nil {
		return err
	}
	dest := filepath.Join(articleDir, generatedTOCName)
	if err := os.Rename(scratch, dest); err != nil {
		return fmt.Errorf("failed to place generated TOC: %w", err)
	}
	return nil
}
