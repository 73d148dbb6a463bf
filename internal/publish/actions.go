package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/doc2draft/internal/common"
	"github.com/dtnitsch/doc2draft/internal/fetch"
	"github.com/dtnitsch/doc2draft/models"
	"github.com/dtnitsch/doc2draft/pkg/db"
	"github.com/dtnitsch/doc2draft/pkg/render"
	"github.com/dtnitsch/doc2draft/pkg/storage"
	"github.com/dtnitsch/doc2draft/pkg/wechat"
	"github.com/urfave/cli/v2"
)

// DraftWriter is the part of the publishing API used to write drafts.
type DraftWriter interface {
	AddDraft(ctx context.Context, articles ...wechat.Article) (string, error)
	UpdateDraft(ctx context.Context, mediaID string, index int, article wechat.Article) error
}

// PublishAction parses a document, re-hosts its images and creates or
// updates the draft built from it.
func PublishAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	if !cfg.HasCredentials() {
		return errors.New("publishing needs wechat.access_token or wechat.app_id and wechat.app_secret")
	}

	f, err := fetch.NewFetcher(cfg, logger)
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	client := fetch.NewClient(cfg, logger)
	pipeline := &fetch.Pipeline{
		Config:   cfg,
		Fetcher:  f,
		Resolver: fetch.NewHostedResolver(client, f, database, logger),
		Logger:   logger,
	}
	doc, res, err := pipeline.Load(c.Context, fetch.Input{Link: c.String("link"), File: c.String("file")})
	if err != nil {
		return err
	}

	renderer, err := render.New(c.String("template"))
	if err != nil {
		return err
	}
	html, err := renderer.Render(doc)
	if err != nil {
		return err
	}
	content, err := render.Minify(html)
	if err != nil {
		return err
	}

	summary := fetch.BuildSummary(doc, res)
	summary.Files, err = fetch.SaveArtifacts(&storage.Storage{Dir: cfg.OutputDir}, doc, html)
	if err != nil {
		return err
	}

	mediaID, err := TargetDraft(c.String("media-id"), cfg, database, doc.SourceURL, c.Bool("new"))
	if err != nil {
		return err
	}

	p := &Publisher{Drafts: client, Logger: logger}
	draft, err := p.Publish(c.Context, mediaID, NewArticle(doc, cfg.Article, content))
	if err != nil {
		return err
	}

	_, err = database.RecordDraft(db.DraftRevision{
		MediaID:        draft.MediaID,
		SourceURL:      doc.SourceURL,
		Title:          doc.Title,
		Action:         draft.Action,
		ContentHash:    common.ContentHash([]byte(content)),
		ParagraphCount: len(doc.Paragraphs),
		ImageCount:     doc.ImageCount(),
		WarningCount:   len(res.Warnings),
	})
	if err != nil {
		logger.Warn("Failed to record draft", "media_id", draft.MediaID, "error", err)
	}

	summary.Draft = draft
	return summary.Write(os.Stdout)
}

// TargetDraft picks the draft to update: the --media-id flag, then the
// configured media_id, then the last draft written for the same source.
// An empty result means a new draft is created.
func TargetDraft(flagID string, cfg *models.Config, database *db.DB, sourceURL string, forceNew bool) (string, error) {
	if flagID != "" {
		return flagID, nil
	}
	if forceNew {
		return "", nil
	}
	if cfg.Article.MediaID != "" {
		return cfg.Article.MediaID, nil
	}
	if sourceURL == "" {
		return "", nil
	}
	mediaID, found, err := database.LatestDraftForSource(sourceURL)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return mediaID, nil
}

// NewArticle assembles the draft article from the parsed document.
func NewArticle(doc *models.Document, art models.ArticleConfig, content string) wechat.Article {
	sourceURL := art.ContentSourceURL
	if sourceURL == "" {
		sourceURL = doc.SourceURL
	}
	return wechat.Article{
		Title:              doc.Title,
		Author:             doc.Author,
		Digest:             doc.Digest,
		Content:            content,
		ContentSourceURL:   sourceURL,
		ThumbMediaID:       art.ThumbMediaID,
		NeedOpenComment:    boolInt(art.NeedOpenComment),
		OnlyFansCanComment: boolInt(art.OnlyFansCanComment),
	}
}

// Publisher writes one article as a draft.
type Publisher struct {
	Drafts DraftWriter
	Logger *slog.Logger
}

// Publish updates the draft mediaID, or creates a new draft when mediaID is empty.
func (p *Publisher) Publish(ctx context.Context, mediaID string, article wechat.Article) (*fetch.DraftSummary, error) {
	if article.Title == "" {
		return nil, errors.New("draft needs a title: set article.title or give the document a <title>")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if mediaID == "" {
		created, err := p.Drafts.AddDraft(ctx, article)
		if err != nil {
			return nil, fmt.Errorf("failed to create draft: %w", err)
		}
		logger.Info("Draft created", "media_id", created, "title", article.Title)
		return &fetch.DraftSummary{MediaID: created, Action: "add"}, nil
	}

	if err := p.Drafts.UpdateDraft(ctx, mediaID, 0, article); err != nil {
		return nil, fmt.Errorf("failed to update draft %s: %w", mediaID, err)
	}
	logger.Info("Draft updated", "media_id", mediaID, "title", article.Title)
	return &fetch.DraftSummary{MediaID: mediaID, Action: "update"}, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
