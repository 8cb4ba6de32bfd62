package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
)

// Selectors on the aggregator's issue and article pages.
const (
	selPublicationName = "div#pubContentSummaryFormZone div.contentSummaryHeader h1"
	selResultItem      = "li.resultItem.ltr"
	selResultTitle     = "div.truncatedResultsTitle"
	selResultCitation  = "span.jnlArticle"
	selResultPDFLink   = "a.format_pdf"
	selIssueSelect     = "select#issueSelected option"
	selEmbeddedPDF     = "embed#embedded-pdf"
	selChallenge       = "form#verifyCaptcha"
)

// articleCountRetries bounds the reloads ArticleCount performs while
// waiting for the issue listing to render.
const articleCountRetries = 3

// HTTPSession implements Session over plain HTTP with a cookie jar.
type HTTPSession struct {
	client    *http.Client
	userAgent string
	operator  Operator
	log       *slog.Logger

	current    *goquery.Document
	currentURL *url.URL
}

// Options configures an HTTPSession.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Operator  Operator
	Logger    *slog.Logger
}

// NewHTTP creates an HTTP-backed session.
func NewHTTP(opts Options) (*HTTPSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSession{
		client:    &http.Client{Jar: jar, Timeout: timeout},
		userAgent: opts.UserAgent,
		operator:  opts.Operator,
		log:       log,
	}, nil
}

// Navigate loads url as the current page. When the response carries a
// bot challenge the session suspends on the operator checkpoint and
// retries the same URL; there is no bound on retries because a human
// resolves the challenge.
func (s *HTTPSession) Navigate(ctx context.Context, rawURL string) error {
	for {
		doc, finalURL, err := s.get(ctx, rawURL)
		if err != nil {
			return err
		}
		if doc.Find(selChallenge).Length() == 0 {
			s.current = doc
			s.currentURL = finalURL
			return nil
		}
		s.log.Warn("bot challenge presented", "url", rawURL)
		if s.operator == nil {
			return fmt.Errorf("bot challenge at %s and no operator available", rawURL)
		}
		if err := s.operator.Await(ctx, "Solve the challenge in your browser session"); err != nil {
			return fmt.Errorf("challenge checkpoint interrupted: %w", err)
		}
	}
}

func (s *HTTPSession) get(ctx context.Context, rawURL string) (*goquery.Document, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	return doc, resp.Request.URL, nil
}

// PublicationName extracts the publication name from the current page.
func (s *HTTPSession) PublicationName() (string, error) {
	if s.current == nil {
		return "", fmt.Errorf("no page loaded")
	}
	name := strings.TrimSpace(s.current.Find(selPublicationName).First().Text())
	if name == "" {
		return "", fmt.Errorf("publication name not found on current page")
	}
	return name, nil
}

// Entries enumerates the result rows of the current page. Rows without
// a PDF link are skipped.
func (s *HTTPSession) Entries() ([]Entry, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no page loaded")
	}

	var entries []Entry
	s.current.Find(selResultItem).Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find(selResultPDFLink).First().Attr("href")
		if !ok {
			return
		}
		entries = append(entries, Entry{
			Title:    strings.TrimSpace(item.Find(selResultTitle).First().Text()),
			Citation: strings.TrimSpace(item.Find(selResultCitation).First().Text()),
			PDFURL:   s.absoluteURL(href),
		})
	})
	return entries, nil
}

// ArticleCount returns the number of result rows on the current page,
// reloading a few times when the listing has not rendered yet.
func (s *HTTPSession) ArticleCount(ctx context.Context) (int, error) {
	if s.currentURL == nil {
		return 0, fmt.Errorf("no page loaded")
	}
	for attempt := 0; ; attempt++ {
		count := s.current.Find(selResultItem).Length()
		if count > 0 {
			return count, nil
		}
		if attempt >= articleCountRetries {
			return 0, fmt.Errorf("no articles listed at %s", s.currentURL)
		}
		s.log.Debug("issue listing empty, reloading", "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(5 * time.Second):
		}
		if err := s.Navigate(ctx, s.currentURL.String()); err != nil {
			return 0, err
		}
	}
}

// IssueDateLabel returns the label of the selected issue option, or the
// first option when none is marked selected.
func (s *HTTPSession) IssueDateLabel() (string, error) {
	if s.current == nil {
		return "", fmt.Errorf("no page loaded")
	}
	options := s.current.Find(selIssueSelect)
	label := strings.TrimSpace(options.Filter("[selected]").First().Text())
	if label == "" {
		label = strings.TrimSpace(options.First().Text())
	}
	if label == "" {
		return "", fmt.Errorf("issue selector not found on current page")
	}
	return label, nil
}

// SelectIssue reloads the current page with the issue selector form
// submitted for the given year, month and issue index.
func (s *HTTPSession) SelectIssue(ctx context.Context, year, month, issueIndex int) error {
	if s.currentURL == nil {
		return fmt.Errorf("no page loaded")
	}

	target := *s.currentURL
	q := target.Query()
	q.Set("yearSelected", strconv.Itoa(year))
	q.Set("monthSelected", time.Month(month).String())
	q.Set("issueSelected", strconv.Itoa(issueIndex))
	target.RawQuery = q.Encode()

	s.log.Info("selecting issue", "year", year, "month", month, "index", issueIndex)
	return s.Navigate(ctx, target.String())
}

// ResolvePDFURL navigates to an article page and returns the source URL
// of its embedded PDF viewer. A missing embed is an error; the caller
// treats it as fatal because a silently dropped article corrupts the
// final page numbering.
func (s *HTTPSession) ResolvePDFURL(ctx context.Context, articleURL string) (string, error) {
	if err := s.Navigate(ctx, articleURL); err != nil {
		return "", err
	}
	src, ok := s.current.Find(selEmbeddedPDF).First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("no embedded PDF found at %s", articleURL)
	}
	return s.absoluteURL(src), nil
}

// FetchBytes downloads a raw resource, retrying transient failures with
// backoff.
func (s *HTTPSession) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to build request for %s: %w", rawURL, err))
			}
			req.Header.Set("User-Agent", s.userAgent)

			resp, err := s.client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", rawURL, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
			}

			data, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rawURL, err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// absoluteURL resolves href against the current page URL.
func (s *HTTPSession) absoluteURL(href string) string {
	if s.currentURL == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.currentURL.ResolveReference(ref).String()
}
