package cms

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sjlee-dev/vidbrief/config"
	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/httpclient"
	"github.com/sjlee-dev/vidbrief/models"
)

// Client talks to the headless CMS REST API. Writes are wrapped in the
// {data: ...} request envelope the CMS expects, and create/update ask for
// populate=* so replies come back fully hydrated.
type Client struct {
	baseURL  string
	http     *httpclient.Client
	timeout  time.Duration
	pageSize int
	logger   *logrus.Logger
}

func NewClient(cfg config.CMSConfig, hc *httpclient.Client) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		http:     hc,
		timeout:  cfg.RequestTimeout,
		pageSize: cfg.PageSize,
		logger:   logrus.StandardLogger(),
	}
}

func (c *Client) PageSize() int { return c.pageSize }

func (c *Client) endpoint(path, query string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + path
	}
	u.Path = path
	u.RawQuery = query
	return u.String()
}

type dataEnvelope struct {
	Data interface{} `json:"data"`
}

// CreateSummary persists a new summary record for the owning user.
func (c *Client) CreateSummary(ctx context.Context, authToken string, draft models.SummaryDraft) (*models.Summary, error) {
	const op = "cms.CreateSummary"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/summaries", PopulateAll().Encode())
	result := c.http.Post(ctx, target, dataEnvelope{Data: draft}, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return nil, result.AppError(op)
	}

	var summary models.Summary
	if err := result.Decode(&summary); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode summary record")
	}
	return &summary, nil
}

// GetSummary fetches one summary record by documentId.
func (c *Client) GetSummary(ctx context.Context, authToken, documentID string) (*models.Summary, error) {
	const op = "cms.GetSummary"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/summaries/"+documentID, PopulateAll().Encode())
	result := c.http.Get(ctx, target, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return nil, result.AppError(op)
	}

	var summary models.Summary
	if err := result.Decode(&summary); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode summary record")
	}
	return &summary, nil
}

// ListSummaries returns one page of summary records matching the query.
func (c *Client) ListSummaries(ctx context.Context, authToken string, q Query) ([]models.Summary, *models.Pagination, error) {
	const op = "cms.ListSummaries"

	if authToken == "" {
		return nil, nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	if q.PageSize == 0 {
		q.PageSize = c.pageSize
	}

	target := c.endpoint("/api/summaries", q.Encode())
	result := c.http.Get(ctx, target, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return nil, nil, result.AppError(op)
	}

	var summaries []models.Summary
	if err := result.Decode(&summaries); err != nil {
		return nil, nil, errors.Internal(op, err, "Failed to decode summary list")
	}

	var pagination *models.Pagination
	if result.Meta != nil {
		pagination = result.Meta.Pagination
	}
	return summaries, pagination, nil
}

// UpdateSummary writes new title/content onto an existing record.
func (c *Client) UpdateSummary(ctx context.Context, authToken, documentID string, update models.SummaryUpdate) (*models.Summary, error) {
	const op = "cms.UpdateSummary"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/summaries/"+documentID, PopulateAll().Encode())
	result := c.http.Put(ctx, target, dataEnvelope{Data: update}, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return nil, result.AppError(op)
	}

	var summary models.Summary
	if err := result.Decode(&summary); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode summary record")
	}
	return &summary, nil
}

// DeleteSummary removes a record. Success is judged by status alone; the CMS
// sends no body on delete. Deleting a missing record comes back as a
// well-formed error, never a panic.
func (c *Client) DeleteSummary(ctx context.Context, authToken, documentID string) error {
	const op = "cms.DeleteSummary"

	if authToken == "" {
		return errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/summaries/"+documentID, "")
	result := c.http.Delete(ctx, target, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return result.AppError(op)
	}
	return nil
}

// Me resolves the calling user from a session token.
func (c *Client) Me(ctx context.Context, authToken string) (*models.AuthUser, error) {
	const op = "cms.Me"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/users/me", PopulateAll().Encode())
	result := c.http.Get(ctx, target, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		appErr := result.AppError(op)
		if appErr.Code == 401 || appErr.Code == 403 {
			return nil, errors.Unauthorized(op, appErr, "Invalid or expired session")
		}
		return nil, appErr
	}

	var user models.AuthUser
	if err := result.Decode(&user); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode user record")
	}
	return &user, nil
}

// UpdateUser patches mutable user fields (credits, profile).
func (c *Client) UpdateUser(ctx context.Context, authToken string, userID int, fields map[string]interface{}) (*models.AuthUser, error) {
	const op = "cms.UpdateUser"

	if authToken == "" {
		return nil, errors.Unauthorized(op, nil, "Authentication token is required")
	}

	target := c.endpoint("/api/users/"+strconv.Itoa(userID), "")
	result := c.http.Put(ctx, target, fields, httpclient.Options{
		Timeout:   c.timeout,
		AuthToken: authToken,
	})
	if !result.Success {
		return nil, result.AppError(op)
	}

	var user models.AuthUser
	if err := result.Decode(&user); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode user record")
	}
	return &user, nil
}

// Login exchanges credentials for a session. The CMS replies with
// {jwt, user} outside its usual data envelope.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.AuthSession, error) {
	const op = "cms.Login"

	payload := map[string]string{
		"identifier": identifier,
		"password":   password,
	}
	result := c.http.Post(ctx, c.endpoint("/api/auth/local", ""), payload, httpclient.Options{
		Timeout: c.timeout,
	})
	if !result.Success {
		return nil, result.AppError(op)
	}

	var session models.AuthSession
	if err := result.Decode(&session); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode auth response")
	}
	if session.JWT == "" {
		return nil, errors.Unauthorized(op, nil, "로그인에 실패했습니다.")
	}
	return &session, nil
}

// Register creates a new account and returns its first session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthSession, error) {
	const op = "cms.Register"

	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	result := c.http.Post(ctx, c.endpoint("/api/auth/local/register", ""), payload, httpclient.Options{
		Timeout: c.timeout,
	})
	if !result.Success {
		return nil, result.AppError(op)
	}

	var session models.AuthSession
	if err := result.Decode(&session); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode auth response")
	}
	if session.JWT == "" {
		return nil, errors.Unauthorized(op, nil, "회원가입에 실패했습니다.")
	}
	return &session, nil
}

