package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/profile"
	"github.com/6801318d8d/proquest-dl/internal/session"
)

// tocTitle is the result title the aggregator gives a supplied table of
// contents.
const tocTitle = "Table of Contents"

// IssueSelection narrows which issue of the publication to download.
// The zero value means the latest issue.
type IssueSelection struct {
	Year  int
	Month int
	Index int // 0 = most recent issue of the month
}

// Latest reports whether the selection means the newest issue.
func (s IssueSelection) Latest() bool {
	return s.Year == 0 && s.Month == 0 && s.Index == 0
}

// Validate checks the selection against the aggregator's bounds.
func (s IssueSelection) Validate() error {
	if s.Latest() {
		return nil
	}
	if s.Year < 1900 || s.Year > 2999 {
		return fmt.Errorf("year %d outside [1900, 2999]", s.Year)
	}
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("month %d outside [1, 12]", s.Month)
	}
	if s.Index < 0 || s.Index > 4 {
		return fmt.Errorf("issue index %d outside [0, 4]", s.Index)
	}
	return nil
}

// citationPages extracts the page portion of a reference string: the
// text after the last colon, e.g.
// "The Economist; London Vol. 448, Iss. 9362, (Sep 9, 2023): 7." -> "7".
var citationPages = regexp.MustCompile(`.*:(.*)`)

// ScrapeIssue builds the issue model from the currently selected issue
// page: publication name, issue date, and one article per result entry.
// A malformed citation on anything but the TOC is fatal — proceeding
// would corrupt the final page numbering.
func ScrapeIssue(ctx context.Context, sess session.Session, prof profile.Profile, sel IssueSelection, log *slog.Logger) (*issue.Issue, error) {
	iss := &issue.Issue{PublicationID: prof.ID()}

	name, err := sess.PublicationName()
	if err != nil {
		return nil, err
	}
	iss.PublicationName = name
	log.Info("publication", "name", name)

	if !sel.Latest() {
		if err := sess.SelectIssue(ctx, sel.Year, sel.Month, sel.Index); err != nil {
			return nil, err
		}
	}

	count, err := sess.ArticleCount(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("articles listed", "count", count)

	label, err := sess.IssueDateLabel()
	if err != nil {
		return nil, err
	}
	iss.Date, err = prof.ResolveIssueDate(label)
	if err != nil {
		return nil, err
	}
	log.Info("issue date", "date", iss.Date.Format("2006-01-02"))

	entries, err := sess.Entries()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		article, err := articleFromEntry(entry)
		if err != nil {
			return nil, err
		}
		if article.IsTOC {
			iss.HasTOC = true
		}
		iss.Articles = append(iss.Articles, article)
	}
	return iss, nil
}

// articleFromEntry converts one result row into an article, parsing its
// page citation.
func articleFromEntry(entry session.Entry) (issue.Article, error) {
	article := issue.Article{
		Title:     entry.Title,
		PDFSource: entry.PDFURL,
		IsTOC:     entry.Title == tocTitle,
	}

	m := citationPages.FindStringSubmatch(entry.Citation)
	var pages []int
	var err error
	if m != nil {
		raw := strings.TrimSpace(strings.ReplaceAll(m[1], ".", ""))
		pages, err = pagerange.Parse(raw)
	} else {
		err = fmt.Errorf("no page citation in %q", entry.Citation)
	}
	if err != nil {
		if article.IsTOC {
			// The TOC legitimately has no page numbers for some
			// publications; its true pages are resolved later.
			return article, nil
		}
		return issue.Article{}, fmt.Errorf("article %q: %w", entry.Title, err)
	}

	article.Pages = pages
	return article, nil
}
