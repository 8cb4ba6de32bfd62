package pagerange

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ledger is an append-only record of which printed page numbers are
// covered by files on disk, and which file owns each page. Stages pass
// it along instead of re-parsing directory contents; directory scans
// happen only when a run is (re)started.
type Ledger struct {
	owner map[int]string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{owner: make(map[int]string)}
}

// LedgerFromDir rebuilds a ledger by scanning a directory for files
// following the pages_* naming convention. TOC placeholders and
// non-conforming names are ignored.
func LedgerFromDir(dir string) (*Ledger, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	l := NewLedger()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		pages, err := FromFileName(entry.Name())
		if err != nil {
			continue
		}
		l.Add(filepath.Join(dir, entry.Name()), pages...)
	}
	return l, nil
}

// Add records that file covers the given pages. Pages already present
// keep their original owner; the ledger is append-only.
func (l *Ledger) Add(file string, pages ...int) {
	for _, p := range pages {
		if _, ok := l.owner[p]; !ok {
			l.owner[p] = file
		}
	}
}

// Has reports whether a page is covered.
func (l *Ledger) Has(page int) bool {
	_, ok := l.owner[page]
	return ok
}

// Covers reports whether every page in the set is already covered.
// An empty set is trivially covered.
func (l *Ledger) Covers(pages []int) bool {
	for _, p := range pages {
		if !l.Has(p) {
			return false
		}
	}
	return true
}

// Owner returns the file covering a page, or "" if none.
func (l *Ledger) Owner(page int) string {
	return l.owner[page]
}

// Pages returns all covered pages in ascending order.
func (l *Ledger) Pages() []int {
	pages := make([]int, 0, len(l.owner))
	for p := range l.owner {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Max returns the highest covered page, or 0 for an empty ledger.
func (l *Ledger) Max() int {
	max := 0
	for p := range l.owner {
		if p > max {
			max = p
		}
	}
	return max
}

// Len returns the number of covered pages.
func (l *Ledger) Len() int {
	return len(l.owner)
}
