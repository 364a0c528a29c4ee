package summary

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/cms"
	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
	"github.com/sjlee-dev/vidbrief/summarizer"
	"github.com/sjlee-dev/vidbrief/transcript"
)

type service struct {
	store       Store
	transcripts transcript.Service
	generator   summarizer.Service
	credits     CreditGate
	archiver    Archiver
	config      Config
	logger      *logrus.Logger
}

// NewService wires the summary pipeline. archiver may be nil.
func NewService(
	store Store,
	transcripts transcript.Service,
	generator summarizer.Service,
	credits CreditGate,
	archiver Archiver,
	cfg Config,
) Service {
	return &service{
		store:       store,
		transcripts: transcripts,
		generator:   generator,
		credits:     credits,
		archiver:    archiver,
		config:      cfg,
		logger:      logrus.StandardLogger(),
	}
}

// Generate runs fetch-transcript -> generate -> persist for one video.
// The credit gate runs before any transcript or model work; the credit is
// consumed only after the record is saved. A failed decrement is logged
// as a warning, never rolled back into the saved summary.
func (s *service) Generate(ctx context.Context, authToken string, user *models.AuthUser, videoIdentifier string) (*models.Summary, error) {
	const op = "SummaryService.Generate"

	if user == nil {
		return nil, errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}
	logger := s.logger.WithFields(logrus.Fields{
		"user_id":    user.DocumentID,
		"identifier": videoIdentifier,
	})

	if err := s.credits.RequireCredits(user); err != nil {
		logger.WithField("credits", user.Credits).Warn("Generation rejected, no credits")
		return nil, err
	}

	logger.Info("Pipeline stage: fetching transcript")
	data, err := s.transcripts.Fetch(ctx, videoIdentifier)
	if err != nil {
		return nil, err
	}
	if data.FullTranscript == "" {
		return nil, errors.NotFound(op, nil, "번역할 데이터를 찾을 수 없습니다.")
	}

	logger = logger.WithField("video_id", data.VideoID)
	logger.Info("Pipeline stage: generating summary")
	content, err := s.generator.Summarize(ctx, data.FullTranscript, "")
	if err != nil {
		return nil, err
	}

	logger.Info("Pipeline stage: saving summary")
	saved, err := s.store.CreateSummary(ctx, authToken, models.SummaryDraft{
		VideoID: data.VideoID,
		UserID:  user.DocumentID,
		Title:   data.Title,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	if err := s.credits.ConsumeCredit(ctx, authToken, user); err != nil {
		// The summary is already saved; the ledger stays behind by one.
		logger.WithError(err).Error("Failed to consume credit after save")
	}

	s.archive(saved)

	logger.WithField("document_id", saved.DocumentID).Info("Summary created")
	return saved, nil
}

// Create persists a caller-authored summary record. The owner is always
// the caller, whatever the draft says.
func (s *service) Create(ctx context.Context, authToken string, user *models.AuthUser, draft models.SummaryDraft) (*models.Summary, error) {
	const op = "SummaryService.Create"

	if user == nil {
		return nil, errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}
	if draft.VideoID == "" || draft.Content == "" {
		return nil, errors.InvalidInput(op, nil, "videoId and content are required")
	}

	draft.UserID = user.DocumentID
	return s.store.CreateSummary(ctx, authToken, draft)
}

// Get enforces ownership: reading another user's record is unauthorized,
// not merely missing.
func (s *service) Get(ctx context.Context, authToken string, user *models.AuthUser, documentID string) (*models.Summary, error) {
	const op = "SummaryService.Get"

	if documentID == "" {
		return nil, errors.InvalidInput(op, nil, "documentId is required")
	}

	record, err := s.store.GetSummary(ctx, authToken, documentID)
	if err != nil {
		return nil, err
	}

	if user == nil || record.UserID != user.DocumentID {
		return nil, errors.Unauthorized(op, nil, "You can't access this entry")
	}

	return record, nil
}

// List always scopes the query to the calling user.
func (s *service) List(ctx context.Context, authToken string, user *models.AuthUser, page int) ([]models.Summary, *models.Pagination, error) {
	const op = "SummaryService.List"

	if user == nil {
		return nil, nil, errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}
	if page < 1 {
		page = 1
	}

	return s.store.ListSummaries(ctx, authToken, cms.Query{
		Populate: "*",
		Filters:  map[string]string{"userId": user.DocumentID},
		Page:     page,
		PageSize: s.config.PageSize,
		Sort:     []string{"createdAt:desc"},
	})
}

func (s *service) Update(ctx context.Context, authToken string, user *models.AuthUser, documentID string, update models.SummaryUpdate) (*models.Summary, error) {
	if _, err := s.Get(ctx, authToken, user, documentID); err != nil {
		return nil, err
	}
	return s.store.UpdateSummary(ctx, authToken, documentID, update)
}

func (s *service) Delete(ctx context.Context, authToken string, user *models.AuthUser, documentID string) error {
	if _, err := s.Get(ctx, authToken, user, documentID); err != nil {
		return err
	}
	return s.store.DeleteSummary(ctx, authToken, documentID)
}

// archive copies a saved summary to object storage off the request path.
func (s *service) archive(saved *models.Summary) {
	if s.archiver == nil || saved == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := s.archiver.SaveSummary(ctx, saved.VideoID, saved.UserID, saved.Title, saved.Content, s.config.Model)
		if err != nil {
			s.logger.WithError(err).WithField("video_id", saved.VideoID).
				Warn("Summary archive failed")
		}
	}()
}
