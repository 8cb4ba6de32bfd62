package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
)

func TestAttachCoverKeepsPageOneWithoutSource(t *testing.T) {
	run := newTestRun(t)
	page1 := filepath.Join(run.PagesDir(), "pages_1.pdf")
	writeTestPDF(t, page1, 1)
	before, err := os.ReadFile(page1)
	if err != nil {
		t.Fatal(err)
	}

	sess := &fakeSession{}
	if err := AttachCover(context.Background(), sess, run, &issue.Issue{}, "", testLogger()); err != nil {
		t.Fatalf("AttachCover failed: %v", err)
	}

	after, err := os.ReadFile(page1)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("page 1 modified despite missing cover source")
	}
	if sess.fetches != 0 {
		t.Errorf("fetched %d resources without a cover source", sess.fetches)
	}
}

func TestAttachCoverReplacesPageOne(t *testing.T) {
	run := newTestRun(t)
	writeTestPDF(t, filepath.Join(run.PagesDir(), "pages_1.pdf"), 1)

	orig := synthCoverPage
	synthCoverPage = func(imagePath, outPath string, width, height float64) error {
		writeTestPDF(t, outPath, 1)
		return nil
	}
	t.Cleanup(func() { synthCoverPage = orig })

	sess := &fakeSession{
		blobs: map[string][]byte{"https://cdn.example/cover.jpg": []byte("jpeg bytes")},
	}
	iss := &issue.Issue{PageWidth: 595, PageHeight: 842}
	err := AttachCover(context.Background(), sess, run, iss, "https://cdn.example/cover.jpg", testLogger())
	if err != nil {
		t.Fatalf("AttachCover failed: %v", err)
	}

	if _, err := os.Stat(run.CoverPath("jpg")); err != nil {
		t.Errorf("cover image not written: %v", err)
	}
	count, err := pdf.PageCount(filepath.Join(run.PagesDir(), "pages_1.pdf"))
	if err != nil || count != 1 {
		t.Errorf("cover page: count=%d err=%v", count, err)
	}
}

func TestCoverExt(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example/a/b/20230909_DE_EU.jpg", "jpg"},
		{"https://cdn.example/cover.PNG?x=1", "png"},
		{"https://cdn.example/cover", "jpg"},
	}
	for _, tt := range tests {
		if got := coverExt(tt.url); got != tt.want {
			t.Errorf("coverExt(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestBookmarks(t *testing.T) {
	iss := &issue.Issue{
		Articles: []issue.Article{
			{Title: "Table of Contents", Pages: []int{2, 3}, IsTOC: true},
			{Title: "Leader", Pages: []int{7, 8}},
			{Title: "", Pages: []int{9}},
			{Title: "Pageless"},
		},
	}

	got := bookmarks(iss)
	want := []pdf.Bookmark{
		{Title: "Table of Contents", Page: 2},
		{Title: "Leader", Page: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d bookmarks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bookmark %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAssemble(t *testing.T) {
	if _, err := exec.LookPath("gs"); err != nil {
		t.Skip("gs not installed")
	}

	run := newTestRun(t)
	// Deliberately unordered creation; natural order must win out.
	for _, page := range []int{10, 2, 1} {
		writeTestPDF(t, filepath.Join(run.PagesDir(), pagerange.SinglePageFileName(page)), 1)
	}

	iss := &issue.Issue{
		Articles: []issue.Article{{Title: "Only", Pages: []int{2}}},
	}
	outPath := filepath.Join(t.TempDir(), "out.pdf")
	if err := Assemble(run, iss, outPath, testLogger()); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	count, err := pdf.PageCount(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("assembled document has %d pages, want 3", count)
	}
}

func TestAssembleRefusesExistingOutput(t *testing.T) {
	if _, err := exec.LookPath("gs"); err != nil {
		t.Skip("gs not installed")
	}

	run := newTestRun(t)
	writeTestPDF(t, filepath.Join(run.PagesDir(), "pages_1.pdf"), 1)

	outPath := filepath.Join(t.TempDir(), "out.pdf")
	if err := os.WriteFile(outPath, []byte("prior"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Assemble(run, &issue.Issue{}, outPath, testLogger()); err == nil {
		t.Fatal("expected error for occupied output path")
	}
	data, err := os.ReadFile(outPath)
	if err != nil || string(data) != "prior" {
		t.Error("existing output was clobbered")
	}
}
