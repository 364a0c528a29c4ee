package transcript

import (
	"context"
	"time"

	"github.com/sjlee-dev/vidbrief/models"
)

// Service resolves a video identifier into metadata plus caption segments.
// Pure fetch-and-transform; nothing is persisted beyond the cache.
type Service interface {
	Fetch(ctx context.Context, videoIdentifier string) (*models.TranscriptData, error)
}

type Config struct {
	PrimaryLang   string
	SecondaryLang string
	FetchTimeout  time.Duration
	UserAgent     string
	BaseURL       string
}
