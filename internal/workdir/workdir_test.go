package workdir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureExistsFresh(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run")
	r, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.EnsureExists(false); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	for _, dir := range []string{
		r.RawArticlesDir(),
		r.StrippedArticlesDir(),
		r.CleanArticlesDir(),
		r.PagesDir(),
		r.TOCDir(),
	} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s to exist", dir)
		}
	}
}

func TestEnsureExistsRefusesExistingTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "run")
	r, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.EnsureExists(false); err != nil {
		t.Fatal(err)
	}

	if err := r.EnsureExists(false); err == nil {
		t.Error("expected error for pre-existing working directory")
	}
	if err := r.EnsureExists(true); err != nil {
		t.Errorf("resume should tolerate an existing tree: %v", err)
	}
}

func TestStagingPathsUnique(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "run"))
	if err != nil {
		t.Fatal(err)
	}
	a := r.StagingPath("merged")
	b := r.StagingPath("merged")
	if a == b {
		t.Errorf("staging paths should be unique, got %s twice", a)
	}
	if !strings.HasPrefix(filepath.Base(a), "merged-") {
		t.Errorf("staging path should carry the stage name: %s", a)
	}
}

func TestLayout(t *testing.T) {
	r, err := New("/tmp/x")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.RawArticlesDir(); got != "/tmp/x/download/1_articles" {
		t.Errorf("RawArticlesDir = %s", got)
	}
	if got := r.PagesDir(); got != "/tmp/x/download/4_pages" {
		t.Errorf("PagesDir = %s", got)
	}
	if got := r.CoverPath("jpg"); got != "/tmp/x/download/cover.jpg" {
		t.Errorf("CoverPath = %s", got)
	}
}
