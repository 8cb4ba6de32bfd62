// Package session talks to the content aggregator. The pipeline only
// consumes the Session interface; the HTTP implementation keeps a
// cookie jar and the currently loaded page, and suspends on an Operator
// checkpoint whenever the aggregator presents a bot challenge.
package session

import "context"

// Entry is one result row of an issue page.
type Entry struct {
	Title    string
	Citation string // raw reference text, pages after the last colon
	PDFURL   string // article page exposing the embedded PDF
}

// Session is the aggregator-facing surface the pipeline consumes.
type Session interface {
	// Navigate loads the given URL as the current page.
	Navigate(ctx context.Context, url string) error

	// PublicationName extracts the publication name from the current page.
	PublicationName() (string, error)

	// Entries enumerates the result rows of the current page. Rows
	// without a PDF link are omitted.
	Entries() ([]Entry, error)

	// ArticleCount returns the number of result rows, reloading the
	// current page a few times if the issue has not rendered yet.
	ArticleCount(ctx context.Context) (int, error)

	// IssueDateLabel returns the raw label of the currently selected
	// issue, as shown by the aggregator's issue selector.
	IssueDateLabel() (string, error)

	// SelectIssue switches the current page to the issue identified by
	// year, month and issue index (0 = most recent of that month).
	SelectIssue(ctx context.Context, year, month, issueIndex int) error

	// ResolvePDFURL navigates to an article page and returns the source
	// URL of its embedded PDF document.
	ResolvePDFURL(ctx context.Context, articleURL string) (string, error)

	// FetchBytes downloads a raw resource such as PDF bytes or a cover
	// image.
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
