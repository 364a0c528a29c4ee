package repository

import (
	"context"

	"github.com/sjlee-dev/vidbrief/models"
)

// TranscriptRepository caches resolved transcripts per video and language.
// Entries are derived data; a miss just means another upstream fetch.
type TranscriptRepository interface {
	Find(ctx context.Context, videoID, lang string) (*models.TranscriptCacheEntry, error)
	Save(ctx context.Context, entry *models.TranscriptCacheEntry) error
	Delete(ctx context.Context, videoID string) error
}
