// Package issue holds the in-memory model for one periodical issue and
// its articles, plus the YAML manifest persisted in the working
// directory so an interrupted run can resume without re-scraping.
package issue

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v2"
)

// Article is one downloadable entry of an issue. Pages are printed page
// numbers, unique and ascending; the set is empty only for a table of
// contents whose citation carries no page numbers.
type Article struct {
	Title      string `yaml:"title"`
	Pages      []int  `yaml:"pages,flow"`
	PDFSource  string `yaml:"pdf_source"`
	DetailsURL string `yaml:"details_url,omitempty"`
	IsTOC      bool   `yaml:"is_toc,omitempty"`
}

// Issue is one issue of a publication. PublicationID is known up front;
// PageWidth/PageHeight are discovered only after the first article PDF
// has been fetched and processed.
type Issue struct {
	PublicationID   string    `yaml:"publication_id"`
	PublicationName string    `yaml:"publication_name"`
	Date            time.Time `yaml:"date"`
	PageWidth       float64   `yaml:"page_width,omitempty"`
	PageHeight      float64   `yaml:"page_height,omitempty"`
	HasTOC          bool      `yaml:"has_toc"`
	Articles        []Article `yaml:"articles"`
}

var whitespace = regexp.MustCompile(`\s+`)

// OutputFileName returns the deterministic name of the final artifact:
// the publication name with whitespace removed, the issue date, and the
// .pdf extension, e.g. "TheEconomist-2023-09-09.pdf".
func (i *Issue) OutputFileName() string {
	name := whitespace.ReplaceAllString(i.PublicationName, "")
	return fmt.Sprintf("%s-%s.pdf", name, i.Date.Format("2006-01-02"))
}

// SaveManifest writes the issue to path as YAML.
func (i *Issue) SaveManifest(path string) error {
	data, err := yaml.Marshal(i)
	if err != nil {
		return fmt.Errorf("failed to marshal issue manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write issue manifest: %w", err)
	}
	return nil
}

// LoadManifest reads an issue manifest previously written by SaveManifest.
func LoadManifest(path string) (*Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read issue manifest: %w", err)
	}
	var iss Issue
	if err := yaml.Unmarshal(data, &iss); err != nil {
		return nil, fmt.Errorf("failed to parse issue manifest %s: %w", path, err)
	}
	return &iss, nil
}
