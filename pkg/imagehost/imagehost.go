// Package imagehost re-hosts document images on the publishing platform so the
// rendered article only references durable URLs.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtnitsch/doc2draft/internal/common"
	"github.com/dtnitsch/doc2draft/pkg/db"
	"github.com/dtnitsch/doc2draft/pkg/fetcher"
)

// ErrResolution wraps every failure to produce a durable URL.
var ErrResolution = errors.New("image resolution failed")

// Downloader fetches the source image.
type Downloader interface {
	Download(ctx context.Context, rawURL string) (*fetcher.Asset, error)
}

// Uploader stores image bytes and returns their durable URL.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

// Store remembers earlier uploads.
type Store interface {
	LookupImage(sourceURL string) (string, bool, error)
	LookupImageByHash(sourceHash string) (string, bool, error)
	SaveImage(img db.Image) error
}

// Hosted downloads an image from the editor's CDN and uploads it to the
// publishing platform. With a Store it skips images already uploaded, by
// source URL first and then by content hash.
type Hosted struct {
	Downloader Downloader
	Uploader   Uploader
	Store      Store
	Logger     *slog.Logger
}

func (h *Hosted) Resolve(ctx context.Context, ref string) (string, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if h.Store != nil {
		if url, found, err := h.Store.LookupImage(ref); err != nil {
			logger.Warn("Image store lookup failed", "ref", ref, "error", err)
		} else if found {
			logger.Debug("Image already hosted", "ref", ref, "url", url)
			return url, nil
		}
	}

	asset, err := h.Downloader.Download(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %v", ErrResolution, ref, err)
	}
	hash := common.ContentHash(asset.Data)

	if h.Store != nil {
		if url, found, err := h.Store.LookupImageByHash(hash); err != nil {
			logger.Warn("Image store hash lookup failed", "ref", ref, "hash", hash, "error", err)
		} else if found {
			logger.Debug("Image content already hosted", "ref", ref, "url", url)
			h.record(logger, ref, hash, url, asset)
			return url, nil
		}
	}

	url, err := h.Uploader.UploadImage(ctx, asset.Filename, asset.Data)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrResolution, asset.Filename, err)
	}
	logger.Info("Image uploaded", "ref", ref, "filename", asset.Filename, "size_bytes", len(asset.Data), "url", url)

	h.record(logger, ref, hash, url, asset)
	return url, nil
}

func (h *Hosted) record(logger *slog.Logger, ref, hash, url string, asset *fetcher.Asset) {
	if h.Store == nil {
		return
	}
	err := h.Store.SaveImage(db.Image{
		SourceURL:  ref,
		SourceHash: hash,
		DurableURL: url,
		Filename:   asset.Filename,
		SizeBytes:  int64(len(asset.Data)),
	})
	if err != nil {
		logger.Warn("Failed to record hosted image", "ref", ref, "error", err)
	}
}

// Passthrough returns absolute source URLs unchanged. It is used for dry runs
// where nothing may be uploaded.
type Passthrough struct{}

func (Passthrough) Resolve(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrResolution, ref)
	}
	return ref, nil
}
