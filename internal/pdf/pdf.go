// Package pdf wraps the document-level PDF operations the pipeline
// needs: page counting and dimensions, page removal and extraction,
// crop box stripping, merging, bookmarks, region text extraction, and
// lossy compression. Callers treat documents as opaque; no package
// outside this one touches PDF structure.
package pdf

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

// Bookmark is one navigation entry of the final document.
type Bookmark struct {
	Title string
	Page  int // 1-based page number the bookmark points at
}

// PageCount returns the number of physical pages in a PDF file.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count of %s: %w", path, err)
	}
	return count, nil
}

// PageSize returns the media box dimensions of the first page, in PDF
// user space units (points).
func PageSize(path string) (width, height float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	dims, err := api.PageDims(f, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get page dimensions of %s: %w", path, err)
	}
	if len(dims) == 0 {
		return 0, 0, fmt.Errorf("PDF %s has no pages", path)
	}
	return dims[0].Width, dims[0].Height, nil
}

// RemoveLastPage writes inPath without its final page to outPath.
func RemoveLastPage(inPath, outPath string) error {
	if err := api.RemovePagesFile(inPath, outPath, []string{"l"}, nil); err != nil {
		return fmt.Errorf("failed to remove last page of %s: %w", inPath, err)
	}
	return nil
}

// StripCropBox writes inPath to outPath with every page-level crop box
// removed, so downstream size detection and merging see the full media
// box.
func StripCropBox(inPath, outPath string) error {
	pb, err := api.PageBoundariesFromBoxList("crop")
	if err != nil {
		return fmt.Errorf("failed to build crop box selector: %w", err)
	}
	if err := api.RemoveBoxesFile(inPath, outPath, nil, pb, nil); err != nil {
		return fmt.Errorf("failed to strip crop boxes from %s: %w", inPath, err)
	}
	return nil
}

// ExtractPage writes the single physical page n (1-based) of inPath to
// outPath.
func ExtractPage(inPath, outPath string, n int) error {
	if err := api.TrimFile(inPath, outPath, []string{strconv.Itoa(n)}, nil); err != nil {
		return fmt.Errorf("failed to extract page %d of %s: %w", n, inPath, err)
	}
	return nil
}

// Merge concatenates the given files, in the order given, into outPath.
func Merge(inPaths []string, outPath string) error {
	if len(inPaths) == 0 {
		return fmt.Errorf("no files to merge")
	}
	if err := api.MergeCreateFile(inPaths, outPath, false, nil); err != nil {
		return fmt.Errorf("failed to merge %d files into %s: %w", len(inPaths), outPath, err)
	}
	return nil
}

// AddBookmarks writes inPath to outPath with the given bookmarks,
// replacing any existing outline.
func AddBookmarks(inPath, outPath string, bookmarks []Bookmark) error {
	bms := make([]pdfcpu.Bookmark, len(bookmarks))
	for i, b := range bookmarks {
		bms[i] = pdfcpu.Bookmark{
			Title:    b.Title,
			PageFrom: b.Page,
		}
	}
	if err := api.AddBookmarksFile(inPath, outPath, bms, true, nil); err != nil {
		return fmt.Errorf("failed to add bookmarks to %s: %w", inPath, err)
	}
	return nil
}
