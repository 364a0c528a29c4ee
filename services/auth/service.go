package auth

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
)

type service struct {
	store  UserStore
	logger *logrus.Logger

	// Serializes credit decrements within this process; the CMS offers no
	// conditional update, so the best we can do is re-read then write under
	// the lock.
	creditMu sync.Mutex
}

func NewService(store UserStore) Service {
	return &service{
		store:  store,
		logger: logrus.StandardLogger(),
	}
}

// ResolveUser turns a Bearer token into the calling user.
func (s *service) ResolveUser(ctx context.Context, authToken string) (*models.AuthUser, error) {
	const op = "AuthService.ResolveUser"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}

	user, err := s.store.Me(ctx, authToken)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, errors.Unauthorized(op, nil, "This account has been blocked")
	}

	return user, nil
}

// RequireCredits gates generation before any transcript or model work.
func (s *service) RequireCredits(user *models.AuthUser) error {
	const op = "AuthService.RequireCredits"

	if user == nil {
		return errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}
	if user.Credits < 1 {
		return errors.InsufficientCredits(op)
	}
	return nil
}

// ConsumeCredit decrements the balance by exactly one. The balance is
// re-read first and the write is skipped if it already reached zero, so a
// concurrent request cannot push it negative.
func (s *service) ConsumeCredit(ctx context.Context, authToken string, user *models.AuthUser) error {
	const op = "AuthService.ConsumeCredit"

	if user == nil {
		return errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}

	s.creditMu.Lock()
	defer s.creditMu.Unlock()

	fresh, err := s.store.Me(ctx, authToken)
	if err != nil {
		return errors.Internal(op, err, "Failed to re-read credit balance")
	}
	if fresh.Credits < 1 {
		return errors.InsufficientCredits(op)
	}

	updated, err := s.store.UpdateUser(ctx, authToken, fresh.ID, map[string]interface{}{
		"credits": fresh.Credits - 1,
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to update credit balance")
	}

	user.Credits = updated.Credits
	s.logger.WithFields(logrus.Fields{
		"user_id": user.DocumentID,
		"credits": updated.Credits,
	}).Info("Credit consumed")

	return nil
}

func (s *service) Login(ctx context.Context, identifier, password string) (*models.AuthSession, error) {
	return s.store.Login(ctx, identifier, password)
}

func (s *service) Register(ctx context.Context, username, email, password string) (*models.AuthSession, error) {
	return s.store.Register(ctx, username, email, password)
}

// UpdateProfile writes the mutable profile fields onto the user record.
func (s *service) UpdateProfile(ctx context.Context, authToken string, user *models.AuthUser, update models.ProfileUpdate) (*models.AuthUser, error) {
	const op = "AuthService.UpdateProfile"

	if user == nil {
		return nil, errors.Unauthorized(op, nil, "로그인이 필요합니다.")
	}

	fields := map[string]interface{}{}
	if update.FirstName != "" {
		fields["firstName"] = update.FirstName
	}
	if update.LastName != "" {
		fields["lastName"] = update.LastName
	}
	if update.Bio != "" {
		fields["bio"] = update.Bio
	}
	if len(fields) == 0 {
		return user, nil
	}

	return s.store.UpdateUser(ctx, authToken, user.ID, fields)
}
