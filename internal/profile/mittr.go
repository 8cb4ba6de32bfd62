package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// mittr covers MIT Technology Review. Issue labels look like
// "Sep/Oct 2023;" (month abbreviation first, year in the second word);
// the issue is dated to the first of the month. Its TOC citation
// includes page numbers, so no corner-stamp heuristic is needed, and
// the cover image comes from a configured URL.
type mittr struct {
	coverURL string
}

func (mittr) ID() string { return MITTRID }

func (mittr) ResolveIssueDate(label string) (time.Time, error) {
	label = strings.TrimSpace(label)
	if len(label) < 3 {
		return time.Time{}, fmt.Errorf("cannot parse MIT Technology Review issue date %q", label)
	}

	month, err := time.Parse("Jan", label[:3])
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse month of issue date %q: %w", label, err)
	}

	fields := strings.Fields(label)
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("cannot parse year of issue date %q", label)
	}
	yearText := strings.TrimFunc(fields[1], func(r rune) bool { return r < '0' || r > '9' })
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse year of issue date %q: %w", label, err)
	}

	return time.Date(year, month.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

func (m mittr) CoverImageURL(time.Time) string {
	return m.coverURL
}

func (mittr) TOCLayout() (TOCLayout, bool) {
	return TOCLayout{}, false
}
