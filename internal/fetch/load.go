package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/doc2draft/internal/common"
	"github.com/dtnitsch/doc2draft/models"
	"github.com/dtnitsch/doc2draft/pkg/caching"
	"github.com/dtnitsch/doc2draft/pkg/detector"
	"github.com/dtnitsch/doc2draft/pkg/fetcher"
	"github.com/dtnitsch/doc2draft/pkg/parser"
)

// ErrNoInput is returned when neither a link nor a file was given.
var ErrNoInput = errors.New("no document given: use --link or --file")

// Input names the source document. File wins over Link; Link is still
// recorded as the document's source URL.
type Input struct {
	Link string
	File string
}

// NewFetcher builds the document fetcher from the fetch section of cfg.
func NewFetcher(cfg *models.Config, logger *slog.Logger) (*fetcher.Fetcher, error) {
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	cache, err := caching.NewCache(cfg.Fetch.CacheDir, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return fetcher.NewFetcher(
		fetcher.WithHeaders(cfg.Fetch.UserAgent, cfg.Fetch.Referer),
		fetcher.WithCache(cache),
		fetcher.WithLogger(logger),
	), nil
}

// Pipeline turns one source document into a paragraph tree.
type Pipeline struct {
	Config   *models.Config
	Fetcher  *fetcher.Fetcher
	Resolver parser.ImageResolver
	Logger   *slog.Logger
}

// Load reads the document, builds its tree, applies the article overrides
// from the config and detects the document language.
func (p *Pipeline) Load(ctx context.Context, in Input) (*models.Document, *parser.BuildResult, error) {
	req, err := p.request(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	policy, err := parser.ParseHeadingPolicy(p.Config.HeadingStyle)
	if err != nil {
		return nil, nil, err
	}

	prs := &parser.Parser{
		Builder: &parser.Builder{
			Classifier: parser.Classifier{Policy: policy},
			Resolver:   p.Resolver,
			Workers:    p.Config.Workers,
			Logger:     p.Logger,
		},
		Logger: p.Logger,
	}
	doc, res, err := prs.Parse(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}

	ApplyArticle(doc, p.Config.Article)
	doc.Language = detector.Language(doc.ToPlainText())

	p.Logger.Info("Document parsed",
		"title", doc.Title,
		"language", doc.Language,
		"paragraphs", len(doc.Paragraphs),
		"images", doc.ImageCount(),
		"dropped", res.Dropped,
		"warnings", len(res.Warnings),
	)
	return doc, res, nil
}

func (p *Pipeline) request(ctx context.Context, in Input) (models.ParseRequest, error) {
	var link string
	if in.Link != "" {
		validated, err := common.ValidateLink(in.Link)
		if err != nil {
			return models.ParseRequest{}, err
		}
		link = validated
	}

	switch {
	case in.File != "":
		data, err := os.ReadFile(in.File)
		if err != nil {
			return models.ParseRequest{}, fmt.Errorf("failed to read document: %w", err)
		}
		return models.ParseRequest{URL: link, HTML: string(data)}, nil
	case link != "":
		p.Logger.Info("Fetching document", "url", link)
		data, err := p.Fetcher.GetHtmlBytes(ctx, link)
		if err != nil {
			return models.ParseRequest{}, fmt.Errorf("failed to fetch document: %w", err)
		}
		return models.ParseRequest{URL: link, HTML: string(data)}, nil
	default:
		return models.ParseRequest{}, ErrNoInput
	}
}

// ApplyArticle overrides the located title and fills author and digest
// from the article section of the config.
func ApplyArticle(doc *models.Document, art models.ArticleConfig) {
	if art.Title != "" {
		doc.Title = art.Title
	}
	if art.Author != "" {
		doc.Author = art.Author
	}
	if art.Digest != "" {
		doc.Digest = art.Digest
	}
}
