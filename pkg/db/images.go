package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Image is a re-hosted image record.
type Image struct {
	SourceURL  string
	SourceHash string
	DurableURL string
	Filename   string
	SizeBytes  int64
	CreatedAt  time.Time
}

// LookupImage returns the durable URL recorded for sourceURL.
// found is false when the image was never uploaded.
func (db *DB) LookupImage(sourceURL string) (durableURL string, found bool, err error) {
	err = db.QueryRow("SELECT durable_url FROM images WHERE source_url = ?", sourceURL).Scan(&durableURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up image: %w", err)
	}
	return durableURL, true, nil
}

// LookupImageByHash returns the durable URL of an image with the same content,
// uploaded under any source URL.
func (db *DB) LookupImageByHash(sourceHash string) (durableURL string, found bool, err error) {
	if sourceHash == "" {
		return "", false, nil
	}
	err = db.QueryRow(`
		SELECT durable_url FROM images
		WHERE source_hash = ?
		ORDER BY image_id DESC
		LIMIT 1
	`, sourceHash).Scan(&durableURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up image by hash: %w", err)
	}
	return durableURL, true, nil
}

// SaveImage records an uploaded image, replacing an earlier record for the
// same source URL.
func (db *DB) SaveImage(img Image) error {
	_, err := db.Exec(`
		INSERT INTO images (source_url, source_hash, durable_url, filename, size_bytes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			source_hash = excluded.source_hash,
			durable_url = excluded.durable_url,
			filename = excluded.filename,
			size_bytes = excluded.size_bytes,
			created_at = CURRENT_TIMESTAMP
	`, img.SourceURL, NewNullString(img.SourceHash), img.DurableURL, NewNullString(img.Filename), img.SizeBytes)
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// CountImages returns the number of recorded images.
func (db *DB) CountImages() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM images").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return n, nil
}

// NewNullString maps "" to NULL.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
