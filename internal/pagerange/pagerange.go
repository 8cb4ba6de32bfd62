// Package pagerange parses printed page citations and the pages_* file
// naming convention used to track download and split progress on disk.
package pagerange

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// TOCMarker is the literal page token used for a table of contents
// entry that carries no page citation.
const TOCMarker = "toc"

// TOCFileName is the fixed name a supplied TOC is downloaded under.
const TOCFileName = "pages_" + TOCMarker + ".pdf"

// Parse converts a raw page citation into a sorted, deduplicated set of
// page numbers. Accepted forms: "7", "12-14", "12-14,16" and any
// comma-joined combination. Whitespace around tokens is ignored.
func Parse(raw string) ([]int, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty page citation")
	}

	seen := make(map[int]bool)
	for _, token := range strings.Split(cleaned, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("malformed page citation %q", raw)
		}

		lo, hi, err := parseToken(token)
		if err != nil {
			return nil, fmt.Errorf("malformed page citation %q: %w", raw, err)
		}
		for p := lo; p <= hi; p++ {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}

// parseToken parses a single comma-separated token, either "7" or "12-14".
func parseToken(token string) (lo, hi int, err error) {
	parts := strings.SplitN(token, "-", 2)
	lo, err = parsePage(parts[0])
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 1 {
		return lo, lo, nil
	}
	hi, err = parsePage(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("descending range %q", token)
	}
	return lo, hi, nil
}

func parsePage(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive page number %d", n)
	}
	return n, nil
}

// FileName returns the download file name for a set of pages:
// pages_<p1>,<p2>,....pdf with pages listed in ascending order.
func FileName(pages []int) string {
	sorted := make([]int, len(pages))
	copy(sorted, pages)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return "pages_" + strings.Join(parts, ",") + ".pdf"
}

// SinglePageFileName returns the post-split file name for one physical
// page: pages_<n>.pdf.
func SinglePageFileName(page int) string {
	return fmt.Sprintf("pages_%d.pdf", page)
}

// FromFileName reverses FileName: it extracts the page numbers encoded
// in a pages_* file name, expanding any hyphenated ranges. The base name
// of the path is used, so full paths are accepted.
func FromFileName(path string) ([]int, error) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "pages_") || !strings.HasSuffix(base, ".pdf") {
		return nil, fmt.Errorf("file %q does not follow the pages_* naming convention", base)
	}
	spec := strings.TrimSuffix(strings.TrimPrefix(base, "pages_"), ".pdf")
	if spec == TOCMarker {
		return nil, fmt.Errorf("file %q is a TOC placeholder, not a page range", base)
	}
	return Parse(spec)
}

// Compact renders a page set in compressed citation form, joining
// consecutive runs with a hyphen: [12 13 14 16] -> "12-14,16".
func Compact(pages []int) string {
	sorted := make([]int, len(pages))
	copy(sorted, pages)
	sort.Ints(sorted)

	var parts []string
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, fmt.Sprintf("%d-%d", sorted[i], sorted[j]))
		} else {
			parts = append(parts, strconv.Itoa(sorted[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}

// SortNatural orders pages_* file paths by the numeric value of their
// first encoded page number, so pages_5.pdf sorts before pages_10.pdf.
// Paths whose names do not decode sort last, lexicographically.
func SortNatural(paths []string) {
	key := func(path string) (int, bool) {
		pages, err := FromFileName(path)
		if err != nil || len(pages) == 0 {
			return 0, false
		}
		return pages[0], true
	}

	sort.SliceStable(paths, func(i, j int) bool {
		ni, oki := key(paths[i])
		nj, okj := key(paths[j])
		if oki && okj {
			if ni != nj {
				return ni < nj
			}
			return paths[i] < paths[j]
		}
		if oki != okj {
			return oki
		}
		return paths[i] < paths[j]
	})
}
