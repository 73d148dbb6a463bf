// Package wechat is a small client for the official-account API calls needed
// to publish an article draft: access tokens, inline image upload and drafts.
package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const DefaultBaseURL = "https://api.weixin.qq.com/cgi-bin"

// APIError is a response carrying a non-zero errcode.
type APIError struct {
	Op      string `json:"-"`
	Code    int    `json:"errcode"`
	Message string `json:"errmsg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat %s: errcode %d: %s", e.Op, e.Code, e.Message)
}

// Article is one draft article.
type Article struct {
	Title              string `json:"title"`
	Author             string `json:"author,omitempty"`
	Digest             string `json:"digest,omitempty"`
	Content            string `json:"content"`
	ContentSourceURL   string `json:"content_source_url"`
	ThumbMediaID       string `json:"thumb_media_id"`
	ShowCoverPic       int    `json:"show_cover_pic"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
}

// Client calls the publishing API. When no access token is configured it
// exchanges the app id and secret for one and refreshes it before expiry.
type Client struct {
	baseURL   string
	appID     string
	appSecret string
	http      *http.Client
	logger    *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// Config holds the client settings.
type Config struct {
	BaseURL     string
	AccessToken string
	AppID       string
	AppSecret   string
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		http:      cfg.HTTPClient,
		logger:    cfg.Logger,
		token:     cfg.AccessToken,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 60 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// AccessToken returns a usable access token.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && (c.expiresAt.IsZero() || time.Now().Before(c.expiresAt)) {
		return c.token, nil
	}
	if c.appID == "" || c.appSecret == "" {
		return "", errors.New("wechat: no access token and no app credentials")
	}

	q := url.Values{}
	q.Set("grant_type", "client_credential")
	q.Set("appid", c.appID)
	q.Set("secret", c.appSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.do(req, "token", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("wechat token: empty access_token in response")
	}

	c.token = out.AccessToken
	// Refresh a minute early.
	c.expiresAt = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	c.logger.Debug("Obtained access token", "expires_in", out.ExpiresIn)
	return c.token, nil
}

// UploadImage uploads an image for use inside article content and returns its URL.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("media", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, "/media/uploadimg", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, "uploadimg", &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", errors.New("wechat uploadimg: empty url in response")
	}
	return out.URL, nil
}

// AddDraft creates a draft and returns its media id.
func (c *Client) AddDraft(ctx context.Context, articles ...Article) (string, error) {
	payload := map[string]any{"articles": articles}

	req, err := c.newJSONRequest(ctx, "/draft/add", payload)
	if err != nil {
		return "", err
	}

	var out struct {
		MediaID string `json:"media_id"`
	}
	if err := c.do(req, "draft/add", &out); err != nil {
		return "", err
	}
	if out.MediaID == "" {
		return "", errors.New("wechat draft/add: empty media_id in response")
	}
	return out.MediaID, nil
}

// UpdateDraft replaces article index of draft mediaID.
func (c *Client) UpdateDraft(ctx context.Context, mediaID string, index int, article Article) error {
	payload := map[string]any{
		"media_id": mediaID,
		"index":    index,
		"articles": article,
	}

	req, err := c.newJSONRequest(ctx, "/draft/update", payload)
	if err != nil {
		return err
	}
	return c.do(req, "draft/update", nil)
}

func (c *Client) newRequest(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	endpoint := c.baseURL + path + "?access_token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Article HTML and CJK text go out verbatim.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := c.newRequest(ctx, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	return req, nil
}

// do sends req and decodes the JSON response into out. A non-zero errcode is
// returned as *APIError even when the HTTP status is 200.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wechat %s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("wechat %s: failed to read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wechat %s: status code %d", op, resp.StatusCode)
	}

	apiErr := &APIError{Op: op}
	if err := json.Unmarshal(data, apiErr); err != nil {
		return fmt.Errorf("wechat %s: failed to decode response: %w", op, err)
	}
	if apiErr.Code != 0 {
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("wechat %s: failed to decode response: %w", op, err)
	}
	return nil
}
