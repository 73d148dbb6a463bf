package wechat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(cfg)
}

func TestUploadImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/uploadimg" || r.URL.Query().Get("access_token") != "TOKEN" {
			t.Errorf("unexpected request %s", r.URL)
		}
		file, header, err := r.FormFile("media")
		if err != nil {
			t.Errorf("missing media field: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "a.png" || string(data) != "PNG" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		_, _ = w.Write([]byte(`{"url":"https://mmbiz.qpic.cn/a"}`))
	}, Config{AccessToken: "TOKEN"})

	got, err := c.UploadImage(context.Background(), "a.png", []byte("PNG"))
	if err != nil {
		t.Fatalf("UploadImage() error: %v", err)
	}
	if got != "https://mmbiz.qpic.cn/a" {
		t.Errorf("UploadImage() = %q", got)
	}
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errcode":40001,"errmsg":"invalid credential"}`))
	}, Config{AccessToken: "TOKEN"})

	_, err := c.UploadImage(context.Background(), "a.png", []byte("PNG"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != 40001 || apiErr.Op != "uploadimg" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}

func TestAddDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/draft/add" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), "<p>你好</p>") {
			t.Errorf("content should be sent unescaped, got %s", raw)
		}
		var body struct {
			Articles []Article `json:"articles"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if len(body.Articles) != 1 || body.Articles[0].Title != "Weekly" {
			t.Errorf("unexpected articles %+v", body.Articles)
		}
		_, _ = w.Write([]byte(`{"media_id":"MEDIA"}`))
	}, Config{AccessToken: "TOKEN"})

	id, err := c.AddDraft(context.Background(), Article{Title: "Weekly", Content: "<p>你好</p>", ThumbMediaID: "THUMB"})
	if err != nil {
		t.Fatalf("AddDraft() error: %v", err)
	}
	if id != "MEDIA" {
		t.Errorf("AddDraft() = %q", id)
	}
}

func TestUpdateDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MediaID  string  `json:"media_id"`
			Index    int     `json:"index"`
			Articles Article `json:"articles"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if body.MediaID != "MEDIA" || body.Index != 0 || body.Articles.OnlyFansCanComment != 1 {
			t.Errorf("unexpected body %+v", body)
		}
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}, Config{AccessToken: "TOKEN"})

	err := c.UpdateDraft(context.Background(), "MEDIA", 0, Article{Title: "t", OnlyFansCanComment: 1})
	if err != nil {
		t.Fatalf("UpdateDraft() error: %v", err)
	}
}

func TestAccessToken_FromCredentials(t *testing.T) {
	var tokenCalls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			atomic.AddInt32(&tokenCalls, 1)
			if r.URL.Query().Get("appid") != "wx1" || r.URL.Query().Get("secret") != "sec" {
				t.Errorf("unexpected token query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"access_token":"FRESH","expires_in":7200}`))
		case "/media/uploadimg":
			if r.URL.Query().Get("access_token") != "FRESH" {
				t.Errorf("expected fresh token, got %q", r.URL.Query().Get("access_token"))
			}
			_, _ = w.Write([]byte(`{"url":"u"}`))
		}
	}, Config{AppID: "wx1", AppSecret: "sec"})

	for i := 0; i < 2; i++ {
		if _, err := c.UploadImage(context.Background(), "a.png", []byte("x")); err != nil {
			t.Fatalf("UploadImage() error: %v", err)
		}
	}
	if got := atomic.LoadInt32(&tokenCalls); got != 1 {
		t.Errorf("expected token to be fetched once, got %d", got)
	}
}

func TestAccessToken_Missing(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.AccessToken(context.Background()); err == nil {
		t.Error("expected error without token or credentials")
	}
}
