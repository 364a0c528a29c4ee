package auth

import (
	"context"

	"github.com/sjlee-dev/vidbrief/models"
)

// Service resolves sessions against the CMS user store and guards the
// credit ledger.
type Service interface {
	ResolveUser(ctx context.Context, authToken string) (*models.AuthUser, error)
	RequireCredits(user *models.AuthUser) error
	ConsumeCredit(ctx context.Context, authToken string, user *models.AuthUser) error
	Login(ctx context.Context, identifier, password string) (*models.AuthSession, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthSession, error)
	UpdateProfile(ctx context.Context, authToken string, user *models.AuthUser, update models.ProfileUpdate) (*models.AuthUser, error)
}

// UserStore is the slice of the CMS client this service depends on.
type UserStore interface {
	Me(ctx context.Context, authToken string) (*models.AuthUser, error)
	UpdateUser(ctx context.Context, authToken string, userID int, fields map[string]interface{}) (*models.AuthUser, error)
	Login(ctx context.Context, identifier, password string) (*models.AuthSession, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthSession, error)
}
