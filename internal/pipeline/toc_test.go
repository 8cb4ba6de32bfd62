package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/6801318d8d/proquest-dl/internal/issue"
	"github.com/6801318d8d/proquest-dl/internal/pagerange"
	"github.com/6801318d8d/proquest-dl/internal/pdf"
	"github.com/6801318d8d/proquest-dl/internal/profile"
)

// stampReading routes the corner stamp hook to a fixed value for the
// duration of one test.
func stampReading(t *testing.T, text string) {
	t.Helper()
	orig := tocCornerText
	tocCornerText = func(string, float64, float64, profile.TOCLayout) (string, error) {
		return text, nil
	}
	t.Cleanup(func() { tocCornerText = orig })
}

func suppliedTOCLayout() profile.TOCLayout {
	return profile.TOCLayout{XOffset: 40, YOffset: 50, MaxStartPage: 10, MaxTOCPages: 5}
}

func TestPlaceSuppliedTOC(t *testing.T) {
	tocDir, articleDir := t.TempDir(), t.TempDir()
	// Three raw pages: two of TOC plus the trailing copyright page.
	writeTestPDF(t, filepath.Join(tocDir, pagerange.TOCFileName), 3)
	stampReading(t, "4")

	iss := &issue.Issue{PageWidth: 595, PageHeight: 842}
	if err := PlaceSuppliedTOC(iss, suppliedTOCLayout(), tocDir, articleDir, testLogger()); err != nil {
		t.Fatalf("PlaceSuppliedTOC failed: %v", err)
	}

	placed := filepath.Join(articleDir, "pages_4,5.pdf")
	count, err := pdf.PageCount(placed)
	if err != nil {
		t.Fatalf("placed TOC unreadable: %v", err)
	}
	if count != 2 {
		t.Errorf("placed TOC has %d pages, want 2", count)
	}
}

func TestPlaceSuppliedTOCRejectsBadStamps(t *testing.T) {
	tests := []struct {
		name  string
		stamp string
		pages int // raw TOC pages including trailing copyright page
	}{
		{"not a number", "iv", 3},
		{"zero start", "0", 3},
		{"start beyond bound", "11", 3},
		{"too many pages", "4", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tocDir, articleDir := t.TempDir(), t.TempDir()
			writeTestPDF(t, filepath.Join(tocDir, pagerange.TOCFileName), tt.pages)
			stampReading(t, tt.stamp)

			iss := &issue.Issue{PageWidth: 595, PageHeight: 842}
			err := PlaceSuppliedTOC(iss, suppliedTOCLayout(), tocDir, articleDir, testLogger())
			if err == nil {
				t.Fatal("expected fatal error")
			}
		})
	}
}

func TestGenerateTOC(t *testing.T) {
	tocDir, articleDir := t.TempDir(), t.TempDir()
	iss := &issue.Issue{
		PageWidth:  595,
		PageHeight: 842,
		Articles: []issue.Article{
			{Title: "First", Pages: []int{4, 5}},
			{Title: "Second", Pages: []int{7}},
		},
	}

	if err := GenerateTOC(iss, tocDir, articleDir, testLogger()); err != nil {
		t.Fatalf("GenerateTOC failed: %v", err)
	}

	count, err := pdf.PageCount(filepath.Join(articleDir, generatedTOCName))
	if err != nil {
		t.Fatalf("generated TOC unreadable: %v", err)
	}
	if count != 2 {
		t.Errorf("generated TOC has %d pages, want 2", count)
	}
}
