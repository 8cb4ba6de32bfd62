// Package fetch downloads the article PDFs of one issue into the
// working tree. Work already on disk is skipped, so an interrupted run
// can be re-invoked and picks up where it stopped.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/session"
	"github.com/6801318d8d/proquest-dl/internal/workdir"
)

// Request contains the parameters for downloading an issue's articles.
type Request struct {
	Issue   *issue.Issue
	Session session.Session
	Run     *workdir.Run

	// Delay returns the current politeness bounds. It is consulted
	// before every sleep so live config changes take effect mid-run.
	Delay func() (min, max time.Duration)

	Logger *slog.Logger // optional
}

// Articles downloads every article of the issue that is not already
// covered on disk. Any failure to resolve an article's PDF source is
// returned immediately: a silently dropped article would corrupt the
// final page numbering.
func Articles(ctx context.Context, req Request) error {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}

	// Pages already materialized by an earlier (possibly interrupted) run.
	downloaded, err := pagerange.LedgerFromDir(req.Run.RawArticlesDir())
	if err != nil {
		return err
	}
	log.Info("starting article downloads",
		"articles", len(req.Issue.Articles), "pages_on_disk", downloaded.Len())

	for _, article := range req.Issue.Articles {
		if err := downloadArticle(ctx, req, log, downloaded, article); err != nil {
			return fmt.Errorf("article %q: %w", article.Title, err)
		}
	}
	return nil
}

func downloadArticle(
	ctx context.Context,
	req Request,
	log *slog.Logger,
	downloaded *pagerange.Ledger,
	article issue.Article,
) error {
	var dest string
	switch {
	case len(article.Pages) == 0:
		if !article.IsTOC {
			return fmt.Errorf("article has no pages and is not a table of contents")
		}
		dest = filepath.Join(req.Run.TOCDir(), pagerange.TOCFileName)
	default:
		if downloaded.Covers(article.Pages) {
			log.Info("skipping article, pages already covered",
				"pages", pagerange.Compact(article.Pages))
			return nil
		}
		dest = filepath.Join(req.Run.RawArticlesDir(), pagerange.FileName(article.Pages))
	}

	if _, err := os.Stat(dest); err == nil {
		log.Info("skipping article, file already downloaded", "file", filepath.Base(dest))
		downloaded.Add(dest, article.Pages...)
		return nil
	}

	// Record the pages before attempting the download: if the process
	// dies mid-transfer, the partial file is absent on restart and the
	// range is downloaded again instead of silently skipped.
	downloaded.Add(dest, article.Pages...)

	log.Info("downloading article", "file", filepath.Base(dest))

	pdfURL, err := req.Session.ResolvePDFURL(ctx, article.PDFSource)
	if err != nil {
		return fmt.Errorf("failed to resolve PDF source: %w", err)
	}

	data, err := req.Session.FetchBytes(ctx, pdfURL)
	if err != nil {
		return fmt.Errorf("failed to download PDF: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	return politeSleep(ctx, req.Delay)
}

// politeSleep waits a random duration within the configured bounds to
// reduce the chance of triggering bot detection.
func politeSleep(ctx context.Context, delay func() (min, max time.Duration)) error {
	if delay == nil {
		return nil
	}
	min, max := delay()
	if max < min {
		max = min
	}
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
