// Package synth generates the pages the aggregator never supplies: the
// all-white filler page, a full-bleed cover page from a downloaded
// image, and a typeset table of contents when the issue ships without
// one. All output is sized exactly to the issue's page dimensions.
package synth

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
)

// newDoc returns an empty gofpdf document with a custom page size in
// points and no margins.
func newDoc(width, height float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

// BlankPage writes a single empty page of the given size to path.
func BlankPage(path string, width, height float64) error {
	pdf := newDoc(width, height)
	pdf.AddPage()
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write blank page %s: %w", path, err)
	}
	return nil
}

// CoverPage converts a downloaded cover image into a one-page PDF,
// scaled to fill the page completely.
func CoverPage(imagePath, outPath string, width, height float64) error {
	imageType, err := imageTypeFromPath(imagePath)
	if err != nil {
		return err
	}

	pdf := newDoc(width, height)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	pdf.RegisterImageOptions(imagePath, opts)
	pdf.ImageOptions(imagePath, 0, 0, width, height, false, opts, 0, "")

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to write cover page %s: %w", outPath, err)
	}
	return nil
}

// imageTypeFromPath maps a cover image extension to a gofpdf image type.
func imageTypeFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG", nil
	case ".png":
		return "PNG", nil
	case ".gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported cover image format %q", filepath.Ext(path))
	}
}

// TOCDocument typesets a two-page table of contents listing every
// non-TOC article with its page citation, and writes it to outPath.
// The result is padded to exactly two pages to match the fixed
// pages_2-3 slot it occupies in the issue.
func TOCDocument(articles []issue.Article, outPath string, width, height float64) error {
	const margin = 36.0

	pdf := newDoc(width, height)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 28, "Table of Contents", "", 1, "L", false, 0, "")
	pdf.Ln(8)

	titleWidth := width - 2*margin - 60
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "", 10)
	for _, article := range articles {
		if article.IsTOC {
			continue
		}
		pdf.CellFormat(titleWidth, 14, tr(article.Title), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 14, pagerange.Compact(article.Pages), "", 1, "R", false, 0, "")
	}

	for pdf.PageCount() < 2 {
		pdf.AddPage()
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to write generated TOC %s: %w", outPath, err)
	}
	return nil
}
