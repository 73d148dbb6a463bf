// Package models defines data structures for configuration and parsing.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL = "https://api.weixin.qq.com/cgi-bin"
	DefaultUserAgent  = "Mozilla/5.0"
	DefaultReferer    = "https://shimo.im/"
	DefaultCacheDir   = "tmp/cache"
	DefaultCacheTTL   = "24h"
	DefaultDBPath     = "doc2draft.db"
	DefaultOutputDir  = "tmp"
	DefaultWorkers    = 1
)

// Config is the runtime configuration read from config.yaml.
type Config struct {
	Article      ArticleConfig `yaml:"article"`
	WeChat       WeChatConfig  `yaml:"wechat"`
	Fetch        FetchConfig   `yaml:"fetch"`
	DBPath       string        `yaml:"db_path"`
	OutputDir    string        `yaml:"output_dir"`
	Workers      int           `yaml:"workers"`
	HeadingStyle string        `yaml:"heading_policy"` // "promote" | "strict"
}

// ArticleConfig holds the draft fields that do not come from the document.
type ArticleConfig struct {
	Title              string `yaml:"title"`
	Author             string `yaml:"author"`
	Digest             string `yaml:"digest"`
	ThumbMediaID       string `yaml:"thumb_media_id"`
	MediaID            string `yaml:"media_id"` // empty creates a new draft
	ContentSourceURL   string `yaml:"content_source_url"`
	NeedOpenComment    bool   `yaml:"need_open_comment"`
	OnlyFansCanComment bool   `yaml:"only_fans_can_comment"`
}

// WeChatConfig holds publishing API credentials.
type WeChatConfig struct {
	APIBaseURL  string `yaml:"api_base_url"`
	AccessToken string `yaml:"access_token"`
	AppID       string `yaml:"app_id"`
	AppSecret   string `yaml:"app_secret"`
}

// FetchConfig controls how the source document and its images are downloaded.
type FetchConfig struct {
	UserAgent string `yaml:"user_agent"`
	Referer   string `yaml:"referer"`
	CacheDir  string `yaml:"cache_dir"`
	CacheTTL  string `yaml:"cache_ttl"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config bytes, applies defaults and validates.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in every unset field.
func (c *Config) ApplyDefaults() {
	if c.WeChat.APIBaseURL == "" {
		c.WeChat.APIBaseURL = DefaultAPIBaseURL
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.Referer == "" {
		c.Fetch.Referer = DefaultReferer
	}
	if c.Fetch.CacheDir == "" {
		c.Fetch.CacheDir = DefaultCacheDir
	}
	if c.Fetch.CacheTTL == "" {
		c.Fetch.CacheTTL = DefaultCacheTTL
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.HeadingStyle == "" {
		c.HeadingStyle = "promote"
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Workers > 32 {
		return errors.New("workers must be at most 32")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	switch c.HeadingStyle {
	case "promote", "strict":
	default:
		return fmt.Errorf("invalid heading_policy %q (want promote or strict)", c.HeadingStyle)
	}
	return nil
}

// CacheTTL parses fetch.cache_ttl.
func (c *Config) CacheTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Fetch.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch.cache_ttl %q: %w", c.Fetch.CacheTTL, err)
	}
	return ttl, nil
}

// HasCredentials reports whether the publishing API can be called.
func (c *Config) HasCredentials() bool {
	return c.WeChat.AccessToken != "" || (c.WeChat.AppID != "" && c.WeChat.AppSecret != "")
}
