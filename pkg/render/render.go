// Package render turns a paragraph tree into WeChat article HTML.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/dtnitsch/doc2draft/models"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

//go:embed templates/article.html
var templates embed.FS

// Renderer executes the article template.
type Renderer struct {
	tmpl *template.Template
}

// New returns a Renderer for the template at path, or for the built-in
// template when path is empty.
func New(path string) (*Renderer, error) {
	var (
		tmpl *template.Template
		err  error
	)
	if path == "" {
		tmpl, err = template.ParseFS(templates, "templates/article.html")
	} else {
		tmpl, err = template.ParseFiles(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type view struct {
	Title      string
	Author     string
	Lang       string
	Paragraphs []*models.Paragraph
}

// Render returns the article body HTML for doc.
func (r *Renderer) Render(doc *models.Document) (string, error) {
	lang := doc.Language
	if lang == "" {
		lang = "zh"
	}

	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, view{
		Title:      doc.Title,
		Author:     doc.Author,
		Lang:       lang,
		Paragraphs: doc.Paragraphs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

var minifier = func() *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return m
}()

// Minify collapses whitespace in rendered HTML. The draft editor treats
// newlines between tags as content, so drafts are always sent minified.
func Minify(content string) (string, error) {
	out, err := minifier.String("text/html", content)
	if err != nil {
		return "", fmt.Errorf("failed to minify content: %w", err)
	}
	return out, nil
}
