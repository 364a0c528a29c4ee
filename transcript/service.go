package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
	"github.com/sjlee-dev/vidbrief/repository"
	"github.com/sjlee-dev/vidbrief/validation"
)

type service struct {
	client    *youtubeClient
	repo      repository.TranscriptRepository
	validator *validation.Validator
	config    Config
	logger    *logrus.Logger
}

// NewService creates a transcript service. repo may be nil to disable
// caching.
func NewService(repo repository.TranscriptRepository, validator *validation.Validator, cfg Config) Service {
	return &service{
		client:    newYouTubeClient(cfg),
		repo:      repo,
		validator: validator,
		config:    cfg,
		logger:    logrus.StandardLogger(),
	}
}

type languageResult struct {
	title        string
	thumbnailURL string
	transcript   string
	segments     []models.TranscriptSegment
	err          error
}

// Fetch resolves metadata and caption segments for the primary language and,
// best effort, the secondary language. The two lookups run concurrently and
// fail independently; only a primary-language failure fails the call.
func (s *service) Fetch(ctx context.Context, videoIdentifier string) (*models.TranscriptData, error) {
	const op = "TranscriptService.Fetch"

	videoID, err := s.validator.ValidateVideoIdentifier(videoIdentifier)
	if err != nil {
		return nil, err
	}

	logger := s.logger.WithField("video_id", videoID)
	logger.Info("Fetching transcript")

	ctx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	var (
		wg        sync.WaitGroup
		primary   languageResult
		secondary languageResult
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		primary = s.resolveLanguage(ctx, videoID, s.config.PrimaryLang, true)
	}()

	if s.config.SecondaryLang != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			secondary = s.resolveLanguage(ctx, videoID, s.config.SecondaryLang, false)
		}()
	}

	wg.Wait()

	if primary.err != nil {
		logger.WithError(primary.err).Warn("Primary transcript unavailable")
		return nil, primary.err
	}

	if secondary.err != nil {
		// Best effort; the secondary language degrades to empty data.
		logger.WithError(secondary.err).
			WithField("lang", s.config.SecondaryLang).
			Warn("Secondary transcript unavailable")
		secondary = languageResult{}
	}

	data := &models.TranscriptData{
		Title:            primary.title,
		VideoID:          videoID,
		ThumbnailURL:     primary.thumbnailURL,
		FullTranscript:   primary.transcript,
		Segments:         primary.segments,
		FullTranscriptKo: secondary.transcript,
		SegmentsKo:       secondary.segments,
	}

	logger.WithFields(logrus.Fields{
		"title":           data.Title,
		"segments":        len(data.Segments),
		"secondary_found": len(data.SegmentsKo) > 0,
	}).Info("Transcript resolved")

	return data, nil
}

func (s *service) resolveLanguage(ctx context.Context, videoID, lang string, isPrimary bool) languageResult {
	if cached := s.fromCache(ctx, videoID, lang); cached != nil {
		return *cached
	}

	info, err := s.client.getVideoInfo(ctx, videoID, lang)
	if err != nil {
		return languageResult{err: err}
	}

	track := pickTrack(info.CaptionTracks, lang, isPrimary)
	if track == nil {
		return languageResult{err: errors.NotFound(
			"TranscriptService.resolveLanguage", nil,
			"No captions available for this video",
		)}
	}

	segments, err := s.client.getCaptions(ctx, *track)
	if err != nil {
		return languageResult{err: err}
	}

	result := languageResult{
		title:        info.Title,
		thumbnailURL: info.ThumbnailURL,
		transcript:   joinSegments(segments),
		segments:     segments,
	}
	s.toCache(ctx, videoID, lang, result)
	return result
}

func (s *service) fromCache(ctx context.Context, videoID, lang string) *languageResult {
	if s.repo == nil {
		return nil
	}

	entry, err := s.repo.Find(ctx, videoID, lang)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.WithError(err).Warn("Transcript cache read failed")
		}
		return nil
	}

	return &languageResult{
		title:        entry.Title,
		thumbnailURL: entry.ThumbnailURL,
		transcript:   entry.Transcript,
		segments:     entry.Segments,
	}
}

func (s *service) toCache(ctx context.Context, videoID, lang string, result languageResult) {
	if s.repo == nil {
		return
	}

	err := s.repo.Save(ctx, &models.TranscriptCacheEntry{
		VideoID:      videoID,
		Lang:         lang,
		Title:        result.title,
		ThumbnailURL: result.thumbnailURL,
		Transcript:   result.transcript,
		Segments:     result.segments,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// Cache writes are advisory.
		s.logger.WithError(err).Warn("Transcript cache write failed")
	}
}
