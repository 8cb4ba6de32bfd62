package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/6801318d8d/proquest-dl/internal/config"
	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
	"github.com/6801318d8d/proquest-dl/internal/profile"
	"github.com/6801318d8d/proquest-dl/internal/session"
	"github.com/6801318d8d/proquest-dl/internal/workdir"
)

// writeTestPDF writes a PDF with the given number of pages, each
// carrying its page index as text.
func writeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.Text(72, 72, fmt.Sprintf("page %d", i))
	}
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatal(err)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRun(t *testing.T) *workdir.Run {
	t.Helper()
	run, err := workdir.New(filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatal(err)
	}
	if err := run.EnsureExists(false); err != nil {
		t.Fatal(err)
	}
	return run
}

// fakeSession serves canned issue metadata and PDF bytes, recording
// which calls touched the network-facing surface.
type fakeSession struct {
	name    string
	label   string
	count   int
	entries []session.Entry
	pdfs    map[string]string // article URL -> PDF source URL
	blobs   map[string][]byte // URL -> resource bytes

	navigations []string
	fetches     int
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.navigations = append(s.navigations, url)
	return nil
}

func (s *fakeSession) PublicationName() (string, error) { return s.name, nil }

func (s *fakeSession) Entries() ([]session.Entry, error) { return s.entries, nil }

func (s *fakeSession) ArticleCount(context.Context) (int, error) { return s.count, nil }

func (s *fakeSession) IssueDateLabel() (string, error) { return s.label, nil }

func (s *fakeSession) SelectIssue(_ context.Context, year, month, issueIndex int) error {
	s.navigations = append(s.navigations, fmt.Sprintf("select:%d-%d-%d", year, month, issueIndex))
	return nil
}

func (s *fakeSession) ResolvePDFURL(_ context.Context, articleURL string) (string, error) {
	url, ok := s.pdfs[articleURL]
	if !ok {
		return "", fmt.Errorf("no PDF for %s", articleURL)
	}
	return url, nil
}

func (s *fakeSession) FetchBytes(_ context.Context, url string) ([]byte, error) {
	s.fetches++
	data, ok := s.blobs[url]
	if !ok {
		return nil, fmt.Errorf("no resource at %s", url)
	}
	return data, nil
}

// fakeProfile is a publication profile with fixed answers.
type fakeProfile struct {
	id       string
	date     time.Time
	coverURL string
	layout   profile.TOCLayout
	layoutOK bool
}

func (p *fakeProfile) ID() string { return p.id }

func (p *fakeProfile) ResolveIssueDate(string) (time.Time, error) { return p.date, nil }

func (p *fakeProfile) CoverImageURL(time.Time) string { return p.coverURL }

func (p *fakeProfile) TOCLayout() (profile.TOCLayout, bool) { return p.layout, p.layoutOK }

func TestExecuteRefusesExistingOutput(t *testing.T) {
	run := newTestRun(t)
	outDir := t.TempDir()

	iss := &issue.Issue{
		PublicationID:   "9999",
		PublicationName: "Test Weekly",
		Date:            time.Date(2023, 9, 9, 0, 0, 0, 0, time.UTC),
	}
	if err := iss.SaveManifest(run.ManifestPath()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, iss.OutputFileName()), []byte("prior run"), 0o644); err != nil {
		t.Fatal(err)
	}

	sess := &fakeSession{}
	cfg := config.DefaultConfig()
	cfg.OutputDir = outDir

	p := &Pipeline{
		Run:     run,
		Session: sess,
		Profile: &fakeProfile{id: "9999"},
		Config:  func() *config.Config { return cfg },
		Logger:  testLogger(),
	}
	err := p.Execute(context.Background())
	if err == nil {
		t.Fatal("expected error for occupied output path")
	}
	if sess.fetches != 0 || len(sess.navigations) != 0 {
		t.Errorf("session touched before the output check: %d navigations, %d fetches",
			len(sess.navigations), sess.fetches)
	}
}

// TestExecuteEndToEnd drives the whole pipeline against a fake
// aggregator: one article on pages 4-5, no supplied TOC. The result
// must be a five page document with a generated TOC at pages 2-3 and
// blanks where nothing was published.
func TestExecuteEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("gs"); err != nil {
		t.Skip("gs not installed")
	}

	run := newTestRun(t)
	outDir := t.TempDir()

	// Raw downloads carry the aggregator's trailing copyright page.
	articleDir := t.TempDir()
	articlePDF := filepath.Join(articleDir, "a.pdf")
	writeTestPDF(t, articlePDF, 3)
	articleBytes, err := os.ReadFile(articlePDF)
	if err != nil {
		t.Fatal(err)
	}

	sess := &fakeSession{
		name:  "Test Weekly",
		label: "Sep 9, 2023",
		count: 1,
		entries: []session.Entry{
			{
				Title:    "A",
				Citation: "Test Weekly; Vol. 1, Iss. 2, (Sep 9, 2023): 4-5.",
				PDFURL:   "https://agg.example/article/a",
			},
		},
		pdfs:  map[string]string{"https://agg.example/article/a": "https://agg.example/pdf/a"},
		blobs: map[string][]byte{"https://agg.example/pdf/a": articleBytes},
	}

	cfg := config.DefaultConfig()
	cfg.OutputDir = outDir
	cfg.Politeness.MinDelaySeconds = 0
	cfg.Politeness.MaxDelaySeconds = 0

	var anchors []pdf.Bookmark
	origAdd := addBookmarks
	addBookmarks = func(inPath, outPath string, bms []pdf.Bookmark) error {
		anchors = append(anchors, bms...)
		return origAdd(inPath, outPath, bms)
	}
	t.Cleanup(func() { addBookmarks = origAdd })

	p := &Pipeline{
		Run:     run,
		Session: sess,
		Profile: &fakeProfile{
			id:   "9999",
			date: time.Date(2023, 9, 9, 0, 0, 0, 0, time.UTC),
		},
		Config: func() *config.Config { return cfg },
		Logger: testLogger(),
	}
	if err := p.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(anchors) != 1 || anchors[0] != (pdf.Bookmark{Title: "A", Page: 4}) {
		t.Errorf("outline anchors = %v, want exactly [{A 4}]", anchors)
	}

	outPath := filepath.Join(outDir, "TestWeekly-2023-09-09.pdf")
	count, err := pdf.PageCount(outPath)
	if err != nil {
		t.Fatalf("final document unreadable: %v", err)
	}
	if count != 5 {
		t.Errorf("final document has %d pages, want 5", count)
	}
	if run.Exists() {
		t.Error("working tree not removed after success")
	}
	if _, err := os.Stat(run.ManifestPath()); err == nil {
		t.Error("manifest survived working tree removal")
	}
}

// A second Execute over the same working tree must reuse the manifest
// instead of scraping again.
func TestExecuteResumesFromManifest(t *testing.T) {
	if _, err := exec.LookPath("gs"); err != nil {
		t.Skip("gs not installed")
	}

	run := newTestRun(t)
	outDir := t.TempDir()

	articlePDF := filepath.Join(t.TempDir(), "a.pdf")
	writeTestPDF(t, articlePDF, 2)
	articleBytes, err := os.ReadFile(articlePDF)
	if err != nil {
		t.Fatal(err)
	}

	iss := &issue.Issue{
		PublicationID:   "9999",
		PublicationName: "Test Weekly",
		Date:            time.Date(2023, 9, 9, 0, 0, 0, 0, time.UTC),
		Articles: []issue.Article{
			{Title: "A", Pages: []int{1}, PDFSource: "https://agg.example/article/a"},
		},
	}
	if err := iss.SaveManifest(run.ManifestPath()); err != nil {
		t.Fatal(err)
	}

	sess := &fakeSession{
		pdfs:  map[string]string{"https://agg.example/article/a": "https://agg.example/pdf/a"},
		blobs: map[string][]byte{"https://agg.example/pdf/a": articleBytes},
	}

	cfg := config.DefaultConfig()
	cfg.OutputDir = outDir
	cfg.Politeness.MinDelaySeconds = 0
	cfg.Politeness.MaxDelaySeconds = 0

	p := &Pipeline{
		Run:     run,
		Session: sess,
		Profile: &fakeProfile{id: "9999", date: iss.Date},
		Config:  func() *config.Config { return cfg },
		Logger:  testLogger(),
	}
	if err := p.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(sess.navigations) != 0 {
		t.Errorf("scraped despite existing manifest: %v", sess.navigations)
	}
}
