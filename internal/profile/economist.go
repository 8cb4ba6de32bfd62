package profile

import (
	"fmt"
	"strings"
	"time"
)

// economist covers The Economist. Its issue selector labels look like
// "Sep 9, 2023; London Vol. 448", its TOC citation carries no page
// numbers (the printed page number is stamped in the top-right corner
// of the TOC's first page), and its cover image URL is derived from the
// issue date.
type economist struct{}

func (economist) ID() string { return EconomistID }

func (economist) ResolveIssueDate(label string) (time.Time, error) {
	datePart := strings.TrimSpace(strings.SplitN(label, ";", 2)[0])
	t, err := time.Parse("Jan 2, 2006", datePart)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse Economist issue date %q: %w", label, err)
	}
	return t, nil
}

func (economist) CoverImageURL(date time.Time) string {
	return fmt.Sprintf(
		"https://www.economist.com/img/b/1280/1684/90/media-assets/image/%s_DE_EU.jpg",
		date.Format("20060102"),
	)
}

func (economist) TOCLayout() (TOCLayout, bool) {
	return TOCLayout{
		XOffset:      40,
		YOffset:      50,
		MaxStartPage: 10,
		MaxTOCPages:  5,
	}, true
}
