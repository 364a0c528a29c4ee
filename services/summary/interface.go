package summary

import (
	"context"

	"github.com/sjlee-dev/vidbrief/cms"
	"github.com/sjlee-dev/vidbrief/models"
)

// Service owns the summary records of one calling user, including the full
// generation pipeline.
type Service interface {
	Generate(ctx context.Context, authToken string, user *models.AuthUser, videoIdentifier string) (*models.Summary, error)
	Create(ctx context.Context, authToken string, user *models.AuthUser, draft models.SummaryDraft) (*models.Summary, error)
	Get(ctx context.Context, authToken string, user *models.AuthUser, documentID string) (*models.Summary, error)
	List(ctx context.Context, authToken string, user *models.AuthUser, page int) ([]models.Summary, *models.Pagination, error)
	Update(ctx context.Context, authToken string, user *models.AuthUser, documentID string, update models.SummaryUpdate) (*models.Summary, error)
	Delete(ctx context.Context, authToken string, user *models.AuthUser, documentID string) error
}

// Store is the slice of the CMS client this service depends on.
type Store interface {
	CreateSummary(ctx context.Context, authToken string, draft models.SummaryDraft) (*models.Summary, error)
	GetSummary(ctx context.Context, authToken, documentID string) (*models.Summary, error)
	ListSummaries(ctx context.Context, authToken string, q cms.Query) ([]models.Summary, *models.Pagination, error)
	UpdateSummary(ctx context.Context, authToken, documentID string, update models.SummaryUpdate) (*models.Summary, error)
	DeleteSummary(ctx context.Context, authToken, documentID string) error
}

// CreditGate is the slice of the auth service the pipeline needs.
type CreditGate interface {
	RequireCredits(user *models.AuthUser) error
	ConsumeCredit(ctx context.Context, authToken string, user *models.AuthUser) error
}

// Archiver keeps an off-CMS copy of generated summaries. Optional.
type Archiver interface {
	SaveSummary(ctx context.Context, videoID, userID, title, content, model string) error
}

type Config struct {
	Model    string
	PageSize int
}
