package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
	"github.com/6801318d8d/proquest-dl/internal/session"
	"github.com/6801318d8d/proquest-dl/internal/synth"
	"github.com/6801318d8d/proquest-dl/internal/workdir"
)

// synthCoverPage converts the downloaded cover image into the page-1
// PDF. Overridable in tests that have no decodable cover image.
var synthCoverPage = synth.CoverPage

// addBookmarks writes the navigation outline. Overridable in tests to
// observe the anchors of the final document.
var addBookmarks = pdf.AddBookmarks

// AttachCover downloads the issue's cover image and replaces page 1
// with a full-bleed cover page. Whatever currently occupies page 1 — a
// gap-filled blank or an actual article page — is deleted first. When
// coverURL is empty the page set is left as is.
func AttachCover(ctx context.Context, sess session.Session, run *workdir.Run, iss *issue.Issue, coverURL string, log *slog.Logger) error {
	if coverURL == "" {
		log.Info("no cover source for this publication, keeping existing page 1")
		return nil
	}

	log.Info("downloading cover", "url", coverURL)
	data, err := sess.FetchBytes(ctx, coverURL)
	if err != nil {
		return fmt.Errorf("failed to download cover: %w", err)
	}

	imgPath := run.CoverPath(coverExt(coverURL))
	if err := os.WriteFile(imgPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cover image: %w", err)
	}

	page1 := filepath.Join(run.PagesDir(), pagerange.SinglePageFileName(1))
	if err := os.Remove(page1); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing page 1: %w", err)
	}
	return synthCoverPage(imgPath, page1, iss.PageWidth, iss.PageHeight)
}

// coverExt extracts the file extension of a cover URL, defaulting to jpg.
func coverExt(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "jpg"
	}
	return strings.ToLower(ext)
}

// Assemble merges all single-page files in natural numeric order,
// inserts navigation bookmarks, compresses the result, and moves it to
// outPath. A file already at outPath is fatal; the deterministic output
// name is the guard against clobbering a prior successful run.
func Assemble(run *workdir.Run, iss *issue.Issue, outPath string, log *slog.Logger) error {
	entries, err := os.ReadDir(run.PagesDir())
	if err != nil {
		return fmt.Errorf("failed to read pages directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(run.PagesDir(), entry.Name()))
		}
	}
	pagerange.SortNatural(files)

	log.Info("merging pages", "count", len(files))
	merged := run.StagingPath("merged")
	if err := pdf.Merge(files, merged); err != nil {
		return err
	}

	bookmarked := merged
	if bms := bookmarks(iss); len(bms) > 0 {
		log.Info("inserting bookmarks", "count", len(bms))
		bookmarked = run.StagingPath("bookmarked")
		if err := addBookmarks(merged, bookmarked, bms); err != nil {
			return err
		}
	}

	log.Info("compressing")
	compressed := run.StagingPath("compressed")
	if err := pdf.Compress(bookmarked, compressed); err != nil {
		return err
	}

	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("output file %s already exists", outPath)
	}
	log.Info("moving final document", "path", outPath)
	return moveFile(compressed, outPath)
}

// bookmarks builds one navigation entry per titled article with a known
// page set, anchored at the article's first page, in article order.
func bookmarks(iss *issue.Issue) []pdf.Bookmark {
	var bms []pdf.Bookmark
	for _, article := range iss.Articles {
		if article.Title == "" || len(article.Pages) == 0 {
			continue
		}
		bms = append(bms, pdf.Bookmark{Title: article.Title, Page: article.Pages[0]})
	}
	return bms
}

// moveFile renames src to dst, falling back to copy-and-remove when the
// two live on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", dst, err)
	}
	return os.Remove(src)
}
