package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/doc2draft/pkg/caching"
)

const defaultTimeout = 30 * time.Second

// Fetcher downloads the source document and its images. Requests carry the
// configured User-Agent and Referer because the editor's CDN rejects bare clients.
type Fetcher struct {
	client    *http.Client
	userAgent string
	referer   string
	cache     *caching.Cache
	logger    *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithHeaders sets the User-Agent and Referer sent with every request.
func WithHeaders(userAgent, referer string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
		f.referer = referer
	}
}

// WithCache serves repeated image downloads from c.
func WithCache(c *caching.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Asset is a downloaded binary file.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (f *Fetcher) GetHtml(ctx context.Context, url string) (*goquery.Document, error) {
	bodyBytes, err := f.GetHtmlBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// GetHtmlBytes always fetches the live document. Document HTML is never cached.
func (f *Fetcher) GetHtmlBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}

// Download fetches a binary asset. The filename comes from Content-Disposition
// when the server sends one, otherwise from the URL path. Assets are served
// from the cache until its TTL expires.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (*Asset, error) {
	if asset, ok := f.cachedAsset(rawURL); ok {
		f.logger.Debug("Serving asset from cache", "url", rawURL)
		return asset, nil
	}

	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	asset := &Asset{
		Filename:    filenameFor(resp.Header.Get("Content-Disposition"), rawURL),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	f.cacheAsset(rawURL, asset)
	return asset, nil
}

func (f *Fetcher) cachedAsset(rawURL string) (*Asset, bool) {
	meta, ok := f.cache.Get("asset-meta:" + rawURL)
	if !ok {
		return nil, false
	}
	data, ok := f.cache.Get("asset:" + rawURL)
	if !ok {
		return nil, false
	}
	filename, contentType, _ := strings.Cut(string(meta), "\n")
	return &Asset{Filename: filename, ContentType: contentType, Data: data}, true
}

func (f *Fetcher) cacheAsset(rawURL string, asset *Asset) {
	// Data first: a meta entry without data is treated as a miss.
	if err := f.cache.Set("asset:"+rawURL, asset.Data); err != nil {
		f.logger.Warn("Failed to cache asset", "url", rawURL, "error", err)
		return
	}
	meta := asset.Filename + "\n" + asset.ContentType
	if err := f.cache.Set("asset-meta:"+rawURL, []byte(meta)); err != nil {
		f.logger.Warn("Failed to cache asset", "url", rawURL, "error", err)
	}
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func filenameFor(disposition, rawURL string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := path.Base(params["filename"]); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}

	if u, err := url.Parse(rawURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "image"
}
