package common

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dtnitsch/doc2draft/models"
	"github.com/urfave/cli/v2"
)

// NewLogger returns the JSON stderr logger selected by --quiet and --verbose.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads --config. A missing file is only an error when the flag
// was given explicitly; otherwise the defaults are used.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	path := c.String("config")
	cfg, err := models.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && !c.IsSet("config") {
		cfg, err = models.ParseConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("heading-policy") {
		cfg.HeadingStyle = c.String("heading-policy")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
