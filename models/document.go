package models

import "strings"

// Document is a parsed article: its metadata plus the paragraph tree.
type Document struct {
	Title      string       `yaml:"title,omitempty" json:"title,omitempty"`
	Author     string       `yaml:"author,omitempty" json:"author,omitempty"`
	Digest     string       `yaml:"digest,omitempty" json:"digest,omitempty"`
	Language   string       `yaml:"language,omitempty" json:"language,omitempty"`
	SourceURL  string       `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	Paragraphs []*Paragraph `yaml:"paragraphs" json:"paragraphs"`
}

// ToPlainText concatenates leads and body lines of every paragraph.
func (d *Document) ToPlainText() string {
	var sb strings.Builder

	var write func(p *Paragraph)
	write = func(p *Paragraph) {
		if p.Lead != "" {
			sb.WriteString(p.Lead)
			sb.WriteString("\n")
		}
		for _, line := range p.Body {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		for _, sub := range p.Subs {
			write(sub)
		}
	}

	for _, p := range d.Paragraphs {
		write(p)
	}
	return sb.String()
}

// ImageCount returns the number of paragraphs carrying an image.
func (d *Document) ImageCount() int {
	n := 0
	for _, p := range d.Paragraphs {
		if p.ImgURL != "" {
			n++
		}
		for _, sub := range p.Subs {
			if sub.ImgURL != "" {
				n++
			}
		}
	}
	return n
}
