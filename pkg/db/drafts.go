package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Draft is a publishing-platform draft written by this tool.
type Draft struct {
	DraftID       int64
	MediaID       string
	SourceURL     string
	Title         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	RevisionCount int
}

// DraftRevision describes one add or update of a draft.
type DraftRevision struct {
	MediaID        string
	SourceURL      string
	Title          string
	Action         string // "add" or "update"
	ContentHash    string
	ParagraphCount int
	ImageCount     int
	WarningCount   int
}

// RecordDraft upserts the draft and appends a revision, returning the draft_id.
func (db *DB) RecordDraft(rev DraftRevision) (int64, error) {
	if rev.MediaID == "" {
		return 0, errors.New("media id is required")
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO drafts (media_id, source_url, title)
		VALUES (?, ?, ?)
		ON CONFLICT(media_id) DO UPDATE SET
			source_url = excluded.source_url,
			title = excluded.title,
			updated_at = CURRENT_TIMESTAMP
	`, rev.MediaID, NewNullString(rev.SourceURL), NewNullString(rev.Title))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert draft: %w", err)
	}

	var draftID int64
	if err := tx.QueryRow("SELECT draft_id FROM drafts WHERE media_id = ?", rev.MediaID).Scan(&draftID); err != nil {
		return 0, fmt.Errorf("failed to get draft ID: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO draft_revisions (draft_id, action, content_hash, paragraph_count, image_count, warning_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, draftID, rev.Action, rev.ContentHash, rev.ParagraphCount, rev.ImageCount, rev.WarningCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert draft revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit draft: %w", err)
	}
	return draftID, nil
}

// LatestDraftForSource returns the media id most recently written for sourceURL.
func (db *DB) LatestDraftForSource(sourceURL string) (string, bool, error) {
	var mediaID string
	err := db.QueryRow(`
		SELECT media_id FROM drafts
		WHERE source_url = ?
		ORDER BY updated_at DESC, draft_id DESC
		LIMIT 1
	`, sourceURL).Scan(&mediaID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up draft: %w", err)
	}
	return mediaID, true, nil
}

// ListDrafts returns drafts, most recently updated first.
func (db *DB) ListDrafts(limit int) ([]Draft, error) {
	query := `
		SELECT d.draft_id, d.media_id, COALESCE(d.source_url, ''), COALESCE(d.title, ''),
		       d.created_at, d.updated_at, COUNT(r.revision_id)
		FROM drafts d
		LEFT JOIN draft_revisions r ON r.draft_id = d.draft_id
		GROUP BY d.draft_id
		ORDER BY d.updated_at DESC, d.draft_id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.DraftID, &d.MediaID, &d.SourceURL, &d.Title,
			&d.CreatedAt, &d.UpdatedAt, &d.RevisionCount); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return drafts, nil
}

// Revision is one stored write of a draft.
type Revision struct {
	RevisionID     int64
	Action         string
	ContentHash    string
	ParagraphCount int
	ImageCount     int
	WarningCount   int
	CreatedAt      time.Time
}

// ListRevisions returns the revisions of the draft with mediaID, oldest first.
func (db *DB) ListRevisions(mediaID string) ([]Revision, error) {
	rows, err := db.Query(`
		SELECT r.revision_id, r.action, r.content_hash, r.paragraph_count,
		       r.image_count, r.warning_count, r.created_at
		FROM draft_revisions r
		JOIN drafts d ON d.draft_id = r.draft_id
		WHERE d.media_id = ?
		ORDER BY r.revision_id
	`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.RevisionID, &r.Action, &r.ContentHash, &r.ParagraphCount,
			&r.ImageCount, &r.WarningCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}
