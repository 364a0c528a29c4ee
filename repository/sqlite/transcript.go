package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
	"github.com/sjlee-dev/vidbrief/repository"
)

type transcriptRepository struct {
	db *sql.DB
}

func NewTranscriptRepository(db *sql.DB) (repository.TranscriptRepository, error) {
	if db == nil {
		return nil, errors.Internal("sqlite.NewTranscriptRepository", nil, "nil database handle")
	}
	return &transcriptRepository{db: db}, nil
}

func (r *transcriptRepository) Find(ctx context.Context, videoID, lang string) (*models.TranscriptCacheEntry, error) {
	const op = "TranscriptRepository.Find"

	row := r.db.QueryRowContext(ctx, `
		SELECT video_id, lang, title, thumbnail_url, transcript, segments_json, created_at
		FROM transcripts
		WHERE video_id = ? AND lang = ?`,
		videoID, lang,
	)

	var (
		entry        models.TranscriptCacheEntry
		segmentsJSON string
		thumbnail    sql.NullString
	)
	err := row.Scan(
		&entry.VideoID,
		&entry.Lang,
		&entry.Title,
		&thumbnail,
		&entry.Transcript,
		&segmentsJSON,
		&entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, err, "Transcript not cached")
	}
	if err != nil {
		return nil, errors.Internal(op, pkgerrors.Wrap(err, "scan transcript row"), "Failed to read transcript cache")
	}

	entry.ThumbnailURL = thumbnail.String
	if err := json.Unmarshal([]byte(segmentsJSON), &entry.Segments); err != nil {
		return nil, errors.Internal(op, pkgerrors.Wrap(err, "decode segments"), "Corrupt transcript cache entry")
	}

	return &entry, nil
}

func (r *transcriptRepository) Save(ctx context.Context, entry *models.TranscriptCacheEntry) error {
	const op = "TranscriptRepository.Save"

	segmentsJSON, err := json.Marshal(entry.Segments)
	if err != nil {
		return errors.Internal(op, pkgerrors.Wrap(err, "encode segments"), "Failed to encode transcript segments")
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transcripts (video_id, lang, title, thumbnail_url, transcript, segments_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id, lang) DO UPDATE SET
			title = excluded.title,
			thumbnail_url = excluded.thumbnail_url,
			transcript = excluded.transcript,
			segments_json = excluded.segments_json,
			created_at = excluded.created_at`,
		entry.VideoID,
		entry.Lang,
		entry.Title,
		entry.ThumbnailURL,
		entry.Transcript,
		string(segmentsJSON),
		entry.CreatedAt,
	)
	if err != nil {
		return errors.Internal(op, pkgerrors.Wrap(err, "upsert transcript"), "Failed to write transcript cache")
	}

	return nil
}

func (r *transcriptRepository) Delete(ctx context.Context, videoID string) error {
	const op = "TranscriptRepository.Delete"

	if _, err := r.db.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, videoID); err != nil {
		return errors.Internal(op, pkgerrors.Wrap(err, "delete transcript"), "Failed to delete transcript cache entry")
	}
	return nil
}
