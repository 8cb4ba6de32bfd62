package pdf

import (
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// TextNearTopRight extracts the text inside a rectangle anchored to the
// top-right corner of the first page, using pdftotext (poppler-utils).
// xOffset and yOffset are the rectangle's extent from the right and top
// edges, in page units. Page dimensions must be supplied by the caller.
func TextNearTopRight(path string, pageWidth, pageHeight, xOffset, yOffset float64) (string, error) {
	x := int(math.Max(0, pageWidth-xOffset))
	w := int(math.Ceil(xOffset))
	h := int(math.Ceil(yOffset))

	cmd := exec.Command("pdftotext",
		"-f", "1",
		"-l", "1",
		"-x", strconv.Itoa(x),
		"-y", "0",
		"-W", strconv.Itoa(w),
		"-H", strconv.Itoa(h),
		path,
		"-",
	)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed on %s: %w", path, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Compress applies lossy size compression tuned for reading-device
// delivery, via ghostscript's ebook preset.
func Compress(inPath, outPath string) error {
	cmd := exec.Command("gs",
		"-q",
		"-dNOPAUSE",
		"-dBATCH",
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=/ebook",
		"-sOutputFile="+outPath,
		inPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gs failed on %s: %w (output: %s)", inPath, err, string(output))
	}
	return nil
}
