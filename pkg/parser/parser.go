package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/doc2draft/models"
	"github.com/go-shiori/go-readability"
)

// EditorSelector matches the Quill editor body of an exported Shimo document.
const EditorSelector = "div.ql-editor"

// ErrNoContent is returned when neither the editor nor readability finds a body.
var ErrNoContent = errors.New("no document content found")

// Source is the located top-level node sequence of one document.
type Source struct {
	Title    string
	Nodes    []Node
	Fallback bool // true when readability located the content
}

// Locate returns the children of the editor container. When the page has no
// editor container it lets go-readability find the main content instead.
func Locate(doc *goquery.Document, pageURL string) (*Source, error) {
	title := normalizeText(doc.Find("title").First().Text())

	editor := doc.Find(EditorSelector).First()
	if editor.Length() > 0 {
		return &Source{Title: title, Nodes: Nodes(editor.Children())}, nil
	}

	rawHTML, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil || parsedURL.Host == "" {
		parsedURL = &url.URL{Scheme: "https", Host: "localhost"}
	}

	readabilityParser := readability.NewParser()
	article, err := readabilityParser.Parse(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, ErrNoContent
	}

	content, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse readability content: %w", err)
	}

	container := content.Find("body")
	// Readability wraps its output in nested divs; descend through lone wrappers.
	for {
		children := container.Children()
		if children.Length() != 1 || goquery.NodeName(children) != "div" {
			break
		}
		container = children
	}
	if container.Children().Length() == 0 {
		return nil, ErrNoContent
	}

	if t := normalizeText(article.Title); t != "" {
		title = t
	}
	return &Source{Title: title, Nodes: Nodes(container.Children()), Fallback: true}, nil
}

// Parser locates a document's content and builds its paragraph tree.
type Parser struct {
	Builder *Builder
	Logger  *slog.Logger
}

// Parse builds a Document from raw HTML. Build warnings are returned in the
// result; only a missing body is an error.
func (p *Parser) Parse(ctx context.Context, req models.ParseRequest) (*models.Document, *BuildResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.ParseDocument(ctx, doc, req.URL)
}

// ParseDocument is Parse for an already parsed goquery document.
func (p *Parser) ParseDocument(ctx context.Context, doc *goquery.Document, pageURL string) (*models.Document, *BuildResult, error) {
	src, err := Locate(doc, pageURL)
	if err != nil {
		return nil, nil, err
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Document located", "url", pageURL, "nodes", len(src.Nodes), "readability_fallback", src.Fallback)

	builder := p.Builder
	if builder == nil {
		builder = &Builder{Logger: logger}
	}
	res, err := builder.Build(ctx, src.Nodes)
	if err != nil {
		return nil, nil, err
	}

	out := &models.Document{
		Title:      src.Title,
		SourceURL:  pageURL,
		Paragraphs: res.Paragraphs,
	}
	return out, res, nil
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
