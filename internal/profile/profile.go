// Package profile isolates per-publication behavior: issue date
// parsing, cover image location, and the layout heuristic for a
// supplied table of contents. Each known publication implements
// Profile once; the rest of the pipeline is publication-agnostic.
package profile

import (
	"fmt"
	"time"
)

// Known publication IDs on the aggregator.
const (
	EconomistID = "41716"
	MITTRID     = "35850"
)

// TOCLayout describes where a publication stamps the page number on the
// first page of its scanned table of contents, as offsets from the
// top-right corner of the page, together with sanity bounds for the
// values read back.
type TOCLayout struct {
	XOffset float64 // distance from the right edge, page units
	YOffset float64 // distance from the top edge, page units

	MaxStartPage int // resolved start page must lie in (0, MaxStartPage]
	MaxTOCPages  int // resolved TOC length must lie in (0, MaxTOCPages]
}

// Profile captures publication-specific behavior.
type Profile interface {
	// ID is the publication's aggregator ID.
	ID() string

	// ResolveIssueDate parses the issue date label shown by the
	// aggregator's issue selector.
	ResolveIssueDate(label string) (time.Time, error)

	// CoverImageURL returns the URL of the issue's cover image, or ""
	// when the publication has no known cover source.
	CoverImageURL(date time.Time) string

	// TOCLayout returns the corner-stamp heuristic for a supplied TOC.
	// ok is false when the publication's citation metadata already
	// carries TOC page numbers and no heuristic is needed.
	TOCLayout() (layout TOCLayout, ok bool)
}

// Options carries configured values some profiles need.
type Options struct {
	// MITTRCoverURL is the cover image URL for MIT Technology Review,
	// which publishes no predictable per-issue cover location.
	MITTRCoverURL string
}

// ForPublication selects the profile for a publication ID.
func ForPublication(id string, opts Options) (Profile, error) {
	switch id {
	case EconomistID:
		return economist{}, nil
	case MITTRID:
		return mittr{coverURL: opts.MITTRCoverURL}, nil
	default:
		return nil, fmt.Errorf("no profile for publication ID %q", id)
	}
}
