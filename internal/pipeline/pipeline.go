// Package pipeline turns one aggregator issue into a single
// page-accurate, bookmarked, compressed PDF. Every stage is a transform
// between two directories of the working tree; file names record
// progress, so re-running an interrupted pipeline skips finished work.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/6801318d8d/proquest-dl/internal/config"
	"github.com/6801318d8d/proquest-dl/internal/fetch"
	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
	"github.com/6801318d8d/proquest-dl/internal/profile"
	"github.com/6801318d8d/proquest-dl/internal/session"
	"github.com/6801318d8d/proquest-dl/internal/synth"
	"github.com/6801318d8d/proquest-dl/internal/workdir"
)

// Pipeline holds the collaborators of one download run.
type Pipeline struct {
	Run      *workdir.Run
	Session  session.Session
	Operator session.Operator
	Profile  profile.Profile

	// Config returns the live configuration; politeness bounds are
	// re-read through it between article downloads.
	Config func() *config.Config

	Selection IssueSelection
	Logger    *slog.Logger
}

// Execute runs the whole pipeline: scrape (or resume from the
// manifest), download, post-process, fill, assemble, and clean up the
// working tree. The final artifact lands at the deterministic output
// path; an occupied output path aborts the run before any work.
func (p *Pipeline) Execute(ctx context.Context) error {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	iss, err := p.prepareIssue(ctx, log)
	if err != nil {
		return err
	}

	outPath := filepath.Join(p.Config().OutputDir, iss.OutputFileName())
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("output file %s already exists, refusing to clobber a prior run", outPath)
	}
	log.Info("output file", "path", outPath)

	if err := fetch.Articles(ctx, fetch.Request{
		Issue:   iss,
		Session: p.Session,
		Run:     p.Run,
		Delay:   p.delayBounds,
		Logger:  log,
	}); err != nil {
		return fmt.Errorf("download stage: %w", err)
	}

	if err := StripLastPages(p.Run.RawArticlesDir(), p.Run.StrippedArticlesDir(), log); err != nil {
		return fmt.Errorf("strip stage: %w", err)
	}
	if err := StripCropBoxes(p.Run.StrippedArticlesDir(), p.Run.CleanArticlesDir(), log); err != nil {
		return fmt.Errorf("crop box stage: %w", err)
	}

	if err := p.detectPageSize(iss, log); err != nil {
		return err
	}

	if err := p.resolveTOC(iss, log); err != nil {
		return fmt.Errorf("TOC stage: %w", err)
	}

	if err := Explode(p.Run.CleanArticlesDir(), p.Run.PagesDir(), log); err != nil {
		return fmt.Errorf("explode stage: %w", err)
	}

	if err := p.ensureBlankPage(iss); err != nil {
		return err
	}
	if err := FillGaps(p.Run.PagesDir(), p.Run.BlankPagePath(), log); err != nil {
		return fmt.Errorf("gap fill stage: %w", err)
	}

	coverURL := p.Profile.CoverImageURL(iss.Date)
	if err := AttachCover(ctx, p.Session, p.Run, iss, coverURL, log); err != nil {
		return fmt.Errorf("cover stage: %w", err)
	}

	if err := Assemble(p.Run, iss, outPath, log); err != nil {
		return fmt.Errorf("assemble stage: %w", err)
	}

	log.Info("removing working tree", "path", p.Run.Root())
	if err := p.Run.Remove(); err != nil {
		return fmt.Errorf("failed to remove working tree: %w", err)
	}

	log.Info("done", "output", outPath)
	return nil
}

// prepareIssue loads the issue manifest from a previous interrupted run
// or scrapes the aggregator and persists a fresh one.
func (p *Pipeline) prepareIssue(ctx context.Context, log *slog.Logger) (*issue.Issue, error) {
	if _, err := os.Stat(p.Run.ManifestPath()); err == nil {
		log.Info("resuming from issue manifest", "path", p.Run.ManifestPath())
		return issue.LoadManifest(p.Run.ManifestPath())
	}

	pubURL := fmt.Sprintf("%s/publication/%s", p.Config().Aggregator.BaseURL, p.Profile.ID())
	log.Info("connecting to aggregator", "url", pubURL)
	if err := p.Session.Navigate(ctx, pubURL); err != nil {
		return nil, err
	}
	if p.Operator != nil {
		if err := p.Operator.Await(ctx, "Log in to the aggregator if required"); err != nil {
			return nil, err
		}
	}

	iss, err := ScrapeIssue(ctx, p.Session, p.Profile, p.Selection, log)
	if err != nil {
		return nil, err
	}
	if err := iss.SaveManifest(p.Run.ManifestPath()); err != nil {
		return nil, err
	}
	return iss, nil
}

// detectPageSize reads the issue's page dimensions from the first
// processed article, once, and caches them in the manifest.
func (p *Pipeline) detectPageSize(iss *issue.Issue, log *slog.Logger) error {
	if iss.PageWidth > 0 && iss.PageHeight > 0 {
		return nil
	}

	entries, err := os.ReadDir(p.Run.CleanArticlesDir())
	if err != nil {
		return fmt.Errorf("failed to read article directory: %w", err)
	}
	var first string
	for _, entry := range entries {
		if !entry.IsDir() {
			first = filepath.Join(p.Run.CleanArticlesDir(), entry.Name())
			break
		}
	}
	if first == "" {
		return fmt.Errorf("no processed articles, cannot determine page size")
	}

	w, h, err := pdf.PageSize(first)
	if err != nil {
		return err
	}
	iss.PageWidth, iss.PageHeight = w, h
	log.Info("page size detected", "width", w, "height", h, "from", filepath.Base(first))

	return iss.SaveManifest(p.Run.ManifestPath())
}

// resolveTOC places the supplied TOC under its true page range, or
// generates one when the issue shipped without a TOC.
func (p *Pipeline) resolveTOC(iss *issue.Issue, log *slog.Logger) error {
	if iss.HasTOC {
		layout, ok := p.Profile.TOCLayout()
		if !ok {
			// The TOC's citation already carried page numbers, so it
			// was downloaded and processed like any other article.
			return nil
		}
		return PlaceSuppliedTOC(iss, layout, p.Run.TOCDir(), p.Run.CleanArticlesDir(), log)
	}
	return GenerateTOC(iss, p.Run.TOCDir(), p.Run.CleanArticlesDir(), log)
}

// ensureBlankPage synthesizes the all-white filler template sized to
// the issue's pages.
func (p *Pipeline) ensureBlankPage(iss *issue.Issue) error {
	if _, err := os.Stat(p.Run.BlankPagePath()); err == nil {
		return nil
	}
	return synth.BlankPage(p.Run.BlankPagePath(), iss.PageWidth, iss.PageHeight)
}

// delayBounds returns the current politeness bounds from live config.
func (p *Pipeline) delayBounds() (min, max time.Duration) {
	cfg := p.Config().Politeness
	min = time.Duration(cfg.MinDelaySeconds * float64(time.Second))
	max = time.Duration(cfg.MaxDelaySeconds * float64(time.Second))
	return min, max
}
