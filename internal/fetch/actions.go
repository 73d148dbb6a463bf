package fetch

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/doc2draft/internal/common"
	"github.com/dtnitsch/doc2draft/models"
	"github.com/dtnitsch/doc2draft/pkg/caching"
	"github.com/dtnitsch/doc2draft/pkg/db"
	"github.com/dtnitsch/doc2draft/pkg/fetcher"
	"github.com/dtnitsch/doc2draft/pkg/imagehost"
	"github.com/dtnitsch/doc2draft/pkg/parser"
	"github.com/dtnitsch/doc2draft/pkg/render"
	"github.com/dtnitsch/doc2draft/pkg/storage"
	"github.com/dtnitsch/doc2draft/pkg/wechat"
	"github.com/urfave/cli/v2"
)

// FetchAction parses a document and writes paras.yaml and result.html
// without touching any draft.
func FetchAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	f, err := NewFetcher(cfg, logger)
	if err != nil {
		return err
	}

	var resolver parser.ImageResolver = imagehost.Passthrough{}
	if !c.Bool("dry-run") {
		if !cfg.HasCredentials() {
			return fmt.Errorf("images need publishing credentials: set wechat.access_token or app_id/app_secret, or pass --dry-run")
		}
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		resolver = NewHostedResolver(NewClient(cfg, logger), f, database, logger)
	}

	pipeline := &Pipeline{Config: cfg, Fetcher: f, Resolver: resolver, Logger: logger}
	doc, res, err := pipeline.Load(c.Context, Input{Link: c.String("link"), File: c.String("file")})
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

	summary := BuildSummary(doc, res)
	summary.Files, err = SaveArtifacts(&storage.Storage{Dir: cfg.OutputDir}, doc, html)
	if err != nil {
		return err
	}
	return summary.Write(os.Stdout)
}

// NewClient returns the publishing API client for cfg.
func NewClient(cfg *models.Config, logger *slog.Logger) *wechat.Client {
	return wechat.NewClient(wechat.Config{
		BaseURL:     cfg.WeChat.APIBaseURL,
		AccessToken: cfg.WeChat.AccessToken,
		AppID:       cfg.WeChat.AppID,
		AppSecret:   cfg.WeChat.AppSecret,
		Logger:      logger,
	})
}

// NewHostedResolver re-hosts images through client, remembering uploads in
// database. Pass the same client used for drafts so one access token serves both.
func NewHostedResolver(client *wechat.Client, f *fetcher.Fetcher, database *db.DB, logger *slog.Logger) *imagehost.Hosted {
	return &imagehost.Hosted{
		Downloader: f,
		Uploader:   client,
		Store:      database,
		Logger:     logger,
	}
}

// PurgeAction removes expired entries from the download cache, or every
// entry with --all.
func PurgeAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	ttl, err := cfg.CacheTTL()
	if err != nil {
		return err
	}
	cache, err := caching.NewCache(cfg.Fetch.CacheDir, ttl)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	all := c.Bool("all")
	removed, err := PurgeCache(cache, all)
	if err != nil {
		return err
	}
	logger.Info("Cache purged", "dir", cfg.Fetch.CacheDir, "removed", removed, "all", all)
	fmt.Printf("Removed %d cache entries\n", removed)
	return nil
}

// PurgeCache drops expired entries, or all of them when all is set.
func PurgeCache(cache *caching.Cache, all bool) (int, error) {
	purge := cache.Purge
	if all {
		purge = cache.Clear
	}
	removed, err := purge()
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return removed, nil
}
