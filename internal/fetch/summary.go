package fetch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dtnitsch/doc2draft/models"
	"github.com/dtnitsch/doc2draft/pkg/parser"
	"github.com/dtnitsch/doc2draft/pkg/snapshot"
	"github.com/dtnitsch/doc2draft/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Summary is the YAML report printed to stdout after a run.
type Summary struct {
	Title      string         `yaml:"title"`
	Language   string         `yaml:"language,omitempty"`
	SourceURL  string         `yaml:"source_url,omitempty"`
	Paragraphs int            `yaml:"paragraphs"`
	Subs       int            `yaml:"subs"`
	Images     int            `yaml:"images"`
	Dropped    int            `yaml:"dropped"`
	Roles      map[string]int `yaml:"roles"`
	Warnings   []string       `yaml:"warnings,omitempty"`
	Files      []string       `yaml:"files,omitempty"`
	Draft      *DraftSummary  `yaml:"draft,omitempty"`
}

// DraftSummary records what happened on the publishing platform.
type DraftSummary struct {
	MediaID string `yaml:"media_id"`
	Action  string `yaml:"action"`
}

func BuildSummary(doc *models.Document, res *parser.BuildResult) Summary {
	s := Summary{
		Title:      doc.Title,
		Language:   doc.Language,
		SourceURL:  doc.SourceURL,
		Paragraphs: len(doc.Paragraphs),
		Images:     doc.ImageCount(),
		Roles:      make(map[string]int, len(models.Roles)),
	}
	for _, p := range doc.Paragraphs {
		s.Subs += len(p.Subs)
	}
	if res == nil {
		return s
	}

	s.Dropped = res.Dropped
	for role, n := range res.Roles {
		s.Roles[role.String()] = n
	}
	for _, w := range res.Warnings {
		s.Warnings = append(s.Warnings, w.Error())
	}
	return s
}

func (s Summary) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return enc.Close()
}

// SaveArtifacts writes the paragraph snapshot and the rendered HTML to the
// output directory and returns the written paths.
func SaveArtifacts(store *storage.Storage, doc *models.Document, html string) ([]string, error) {
	var buf bytes.Buffer
	if err := snapshot.Save(&buf, doc); err != nil {
		return nil, err
	}

	snapPath, err := store.SaveFile(storage.SnapshotFile, buf.Bytes())
	if err != nil {
		return nil, err
	}
	htmlPath, err := store.SaveFile(storage.ResultFile, []byte(html))
	if err != nil {
		return nil, err
	}
	return []string{snapPath, htmlPath}, nil
}
