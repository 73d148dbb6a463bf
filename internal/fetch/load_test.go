package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dtnitsch/doc2draft/models"
	"github.com/dtnitsch/doc2draft/pkg/imagehost"
	"github.com/dtnitsch/doc2draft/pkg/snapshot"
	"github.com/dtnitsch/doc2draft/pkg/storage"
)

const page = `<html><head><title>Weekly Notes</title></head><body>
<div class="ql-editor">
<h1>Intro</h1>
<p>The quick brown fox jumps over the lazy dog near the river bank.</p>
<h2>Detail</h2>
<p><img src="https://uploader.shimo.im/f/a.png"></p>
<p>Another sentence written in plain English for the detector.</p>
</div>
</body></html>`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *models.Config {
	t.Helper()
	cfg, err := models.ParseConfig(nil)
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}
	cfg.Fetch.CacheDir = t.TempDir()
	return cfg
}

func TestPipeline_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}

	cfg := testConfig(t)
	cfg.Article.Author = "Editor"
	p := &Pipeline{Config: cfg, Resolver: imagehost.Passthrough{}, Logger: quietLogger()}

	doc, res, err := p.Load(context.Background(), Input{File: path, Link: "https://shimo.im/docs/a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Weekly Notes" || doc.Author != "Editor" {
		t.Errorf("unexpected metadata %+v", doc)
	}
	if doc.SourceURL != "https://shimo.im/docs/a" {
		t.Errorf("expected link as source url, got %q", doc.SourceURL)
	}
	if doc.Language != "en" {
		t.Errorf("expected language en, got %q", doc.Language)
	}
	if len(doc.Paragraphs) != 1 || len(doc.Paragraphs[0].Subs) != 1 {
		t.Fatalf("unexpected tree shape %+v", doc.Paragraphs)
	}
	if got := doc.Paragraphs[0].Subs[0].ImgURL; got != "https://uploader.shimo.im/f/a.png" {
		t.Errorf("expected passthrough image url, got %q", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", res.Warnings)
	}
}

func TestPipeline_LoadLink(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("Referer") != models.DefaultReferer {
			t.Errorf("expected referer %q, got %q", models.DefaultReferer, r.Header.Get("Referer"))
		}
		// Each request sees the document after one more edit.
		_, _ = w.Write([]byte(strings.Replace(page, "<h1>Intro</h1>", fmt.Sprintf("<h1>Intro %d</h1>", hits), 1)))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Article.Title = "Override"
	f, err := NewFetcher(cfg, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := &Pipeline{Config: cfg, Fetcher: f, Resolver: imagehost.Passthrough{}, Logger: quietLogger()}

	for i := 1; i <= 2; i++ {
		doc, _, err := p.Load(context.Background(), Input{Link: " " + server.URL + "/docs/a，"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Title != "Override" {
			t.Errorf("expected config title override, got %q", doc.Title)
		}
		if doc.SourceURL != server.URL+"/docs/a" {
			t.Errorf("expected sanitized link, got %q", doc.SourceURL)
		}
		if want := fmt.Sprintf("Intro %d", i); doc.Paragraphs[0].Lead != want {
			t.Errorf("load %d: expected edited lead %q, got %q", i, want, doc.Paragraphs[0].Lead)
		}
	}
	if hits != 2 {
		t.Errorf("expected every load to fetch the live document, got %d requests", hits)
	}
}

func TestPipeline_LoadErrors(t *testing.T) {
	cfg := testConfig(t)
	p := &Pipeline{Config: cfg, Logger: quietLogger()}

	if _, _, err := p.Load(context.Background(), Input{}); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
	if _, _, err := p.Load(context.Background(), Input{Link: "ftp://example.com/x"}); err == nil {
		t.Error("expected error for non-http link")
	}
	if _, _, err := p.Load(context.Background(), Input{File: filepath.Join(t.TempDir(), "missing.html")}); err == nil {
		t.Error("expected error for missing file")
	}

	cfg.HeadingStyle = "deep"
	path := filepath.Join(t.TempDir(), "doc.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	if _, _, err := p.Load(context.Background(), Input{File: path}); err == nil {
		t.Error("expected error for unknown heading policy")
	}
}

func TestApplyArticle(t *testing.T) {
	doc := &models.Document{Title: "Located"}

	ApplyArticle(doc, models.ArticleConfig{})
	if doc.Title != "Located" {
		t.Errorf("empty config should keep located title, got %q", doc.Title)
	}

	ApplyArticle(doc, models.ArticleConfig{Title: "T", Author: "A", Digest: "D"})
	if doc.Title != "T" || doc.Author != "A" || doc.Digest != "D" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestSummaryAndArtifacts(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "doc.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	p := &Pipeline{Config: cfg, Resolver: imagehost.Passthrough{}, Logger: quietLogger()}
	doc, res, err := p.Load(context.Background(), Input{File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := BuildSummary(doc, res)
	if s.Paragraphs != 1 || s.Subs != 1 || s.Images != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.Roles["lead"] != 1 || s.Roles["sub_lead"] != 1 || s.Roles["body"] != 2 || s.Roles["image"] != 1 {
		t.Errorf("unexpected role tally %v", s.Roles)
	}

	store := &storage.Storage{Dir: t.TempDir()}
	files, err := SaveArtifacts(store, doc, "<p>rendered</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}

	loaded, err := snapshot.LoadFile(store.Path(storage.SnapshotFile))
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	if loaded.Title != doc.Title || len(loaded.Paragraphs) != 1 {
		t.Errorf("snapshot does not match document: %+v", loaded)
	}

	var buf bytes.Buffer
	s.Files = files
	if err := s.Write(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"title: Weekly Notes", "paragraphs: 1", "sub_lead: 1", storage.ResultFile} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, buf.String())
		}
	}
}
