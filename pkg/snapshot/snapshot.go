// Package snapshot persists a parsed document as versioned YAML so it can be
// reloaded later in place of fetching and parsing the source again.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/doc2draft/models"
	"gopkg.in/yaml.v3"
)

// Version is the schema version written by Save.
const Version = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrInvalidTree        = errors.New("invalid paragraph tree")
)

// file is the on-disk layout. Field names are fixed by the schema, independent
// of the in-memory model.
type file struct {
	Version    int         `yaml:"version"`
	Title      string      `yaml:"title,omitempty"`
	Author     string      `yaml:"author,omitempty"`
	Digest     string      `yaml:"digest,omitempty"`
	Language   string      `yaml:"language,omitempty"`
	SourceURL  string      `yaml:"source_url,omitempty"`
	Paragraphs []paragraph `yaml:"paragraphs"`
}

type paragraph struct {
	Lead   string      `yaml:"lead"`
	Body   []string    `yaml:"body,omitempty"`
	ImgURL string      `yaml:"img_url,omitempty"`
	Subs   []paragraph `yaml:"subs,omitempty"`
}

// Save writes doc to w.
func Save(w io.Writer, doc *models.Document) error {
	f := file{
		Version:    Version,
		Title:      doc.Title,
		Author:     doc.Author,
		Digest:     doc.Digest,
		Language:   doc.Language,
		SourceURL:  doc.SourceURL,
		Paragraphs: toFile(doc.Paragraphs),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// Load reads a document written by Save.
func Load(r io.Reader) (*models.Document, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	paras, err := fromFile(f.Paragraphs, 0)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		Title:      f.Title,
		Author:     f.Author,
		Digest:     f.Digest,
		Language:   f.Language,
		SourceURL:  f.SourceURL,
		Paragraphs: paras,
	}, nil
}

// SaveFile writes doc to path.
func SaveFile(path string, doc *models.Document) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := Save(out, doc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (*models.Document, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()
	return Load(in)
}

func toFile(paras []*models.Paragraph) []paragraph {
	if len(paras) == 0 {
		return nil
	}
	out := make([]paragraph, len(paras))
	for i, p := range paras {
		out[i] = paragraph{
			Lead:   p.Lead,
			Body:   p.Body,
			ImgURL: p.ImgURL,
			Subs:   toFile(p.Subs),
		}
	}
	return out
}

func fromFile(paras []paragraph, depth int) ([]*models.Paragraph, error) {
	if len(paras) == 0 {
		return nil, nil
	}
	if depth > 1 {
		return nil, fmt.Errorf("%w: sub-paragraphs cannot hold subs", ErrInvalidTree)
	}

	out := make([]*models.Paragraph, len(paras))
	for i, p := range paras {
		subs, err := fromFile(p.Subs, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = &models.Paragraph{
			Lead:   p.Lead,
			Body:   p.Body,
			ImgURL: p.ImgURL,
			Subs:   subs,
		}
	}
	return out, nil
}
