// Package workdir lays out the working tree of one download run. The
// tree is the only durable state a run has: every stage reads one
// subdirectory and writes the next, and file names record progress.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// DownloadDirName holds everything a run produces before the final move.
	DownloadDirName = "download"

	// Stage subdirectories, in pipeline order.
	RawArticlesDirName      = "1_articles" // as downloaded
	StrippedArticlesDirName = "2_articles" // trailing boilerplate page removed
	CleanArticlesDirName    = "3_articles" // crop boxes stripped
	PagesDirName            = "4_pages"    // one file per printed page
	TOCDirName              = "toc"        // supplied TOC and generated TOC scratch

	// ManifestFileName is the persisted issue manifest.
	ManifestFileName = "issue.yaml"

	// BlankFileName is the synthesized all-white filler page.
	BlankFileName = "blank.pdf"
)

// Run is the working tree of a single download run.
type Run struct {
	root string
}

// New creates a Run rooted at path. If path is empty a directory named
// proquest-dl-temp under the current working directory is used.
func New(path string) (*Run, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, "proquest-dl-temp")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return &Run{root: abs}, nil
}

// Root returns the root path of the working tree.
func (r *Run) Root() string {
	return r.root
}

// Exists reports whether the working tree is already present on disk.
func (r *Run) Exists() bool {
	_, err := os.Stat(r.root)
	return err == nil
}

// EnsureExists creates the full stage directory tree. When resume is
// false an already-existing tree is an error, so a fresh run cannot
// silently mix with the remains of an older one.
func (r *Run) EnsureExists(resume bool) error {
	if !resume && r.Exists() {
		return fmt.Errorf("working directory %s already exists (use --continue to resume)", r.root)
	}
	for _, dir := range []string{
		r.RawArticlesDir(),
		r.StrippedArticlesDir(),
		r.CleanArticlesDir(),
		r.PagesDir(),
		r.TOCDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Remove deletes the whole working tree.
func (r *Run) Remove() error {
	return os.RemoveAll(r.root)
}

// DownloadDir returns the directory holding all run output.
func (r *Run) DownloadDir() string {
	return filepath.Join(r.root, DownloadDirName)
}

// RawArticlesDir returns the directory of freshly downloaded article PDFs.
func (r *Run) RawArticlesDir() string {
	return filepath.Join(r.DownloadDir(), RawArticlesDirName)
}

// StrippedArticlesDir returns the directory of PDFs with the trailing
// boilerplate page removed.
func (r *Run) StrippedArticlesDir() string {
	return filepath.Join(r.DownloadDir(), StrippedArticlesDirName)
}

// CleanArticlesDir returns the directory of PDFs with crop boxes stripped.
func (r *Run) CleanArticlesDir() string {
	return filepath.Join(r.DownloadDir(), CleanArticlesDirName)
}

// PagesDir returns the directory of single-page PDFs.
func (r *Run) PagesDir() string {
	return filepath.Join(r.DownloadDir(), PagesDirName)
}

// TOCDir returns the directory for table-of-contents files.
func (r *Run) TOCDir() string {
	return filepath.Join(r.DownloadDir(), TOCDirName)
}

// ManifestPath returns the path of the issue manifest.
func (r *Run) ManifestPath() string {
	return filepath.Join(r.DownloadDir(), ManifestFileName)
}

// BlankPagePath returns the path of the blank filler page template.
func (r *Run) BlankPagePath() string {
	return filepath.Join(r.DownloadDir(), BlankFileName)
}

// CoverPath returns the path for the downloaded cover image with the
// given extension (without a leading dot).
func (r *Run) CoverPath(ext string) string {
	return filepath.Join(r.DownloadDir(), "cover."+ext)
}

// StagingPath returns a unique path for an intermediate artifact such
// as the merged or compressed document.
func (r *Run) StagingPath(stage string) string {
	return filepath.Join(r.DownloadDir(), fmt.Sprintf("%s-%s.pdf", stage, uuid.New().String()))
}
