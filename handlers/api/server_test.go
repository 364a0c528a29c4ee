package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sjlee-dev/vidbrief/cms"
	"github.com/sjlee-dev/vidbrief/config"
	"github.com/sjlee-dev/vidbrief/errors"
	"github.com/sjlee-dev/vidbrief/models"
)

type stubAuthService struct {
	user *models.AuthUser
}

func (s *stubAuthService) ResolveUser(ctx context.Context, authToken string) (*models.AuthUser, error) {
	if authToken == "" {
		return nil, errors.Unauthorized("stub", nil, "로그인이 필요합니다.")
	}
	return s.user, nil
}

func (s *stubAuthService) RequireCredits(user *models.AuthUser) error {
	if user == nil || user.Credits < 1 {
		return errors.InsufficientCredits("stub")
	}
	return nil
}

func (s *stubAuthService) ConsumeCredit(ctx context.Context, authToken string, user *models.AuthUser) error {
	return nil
}

func (s *stubAuthService) Login(ctx context.Context, identifier, password string) (*models.AuthSession, error) {
	if password != "secret1" {
		return nil, errors.RemoteService("stub", http.StatusBadRequest,
			"ValidationError", "Invalid identifier or password")
	}
	return &models.AuthSession{JWT: "session-jwt", User: *s.user}, nil
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (*models.AuthSession, error) {
	return &models.AuthSession{JWT: "session-jwt", User: *s.user}, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, authToken string, user *models.AuthUser, update models.ProfileUpdate) (*models.AuthUser, error) {
	updated := *user
	if update.Bio != "" {
		updated.Bio = update.Bio
	}
	return &updated, nil
}

type stubSummaryService struct {
	record *models.Summary
	err    error
}

func (s *stubSummaryService) Generate(ctx context.Context, authToken string, user *models.AuthUser, videoIdentifier string) (*models.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubSummaryService) Create(ctx context.Context, authToken string, user *models.AuthUser, draft models.SummaryDraft) (*models.Summary, error) {
	return s.record, s.err
}

func (s *stubSummaryService) Get(ctx context.Context, authToken string, user *models.AuthUser, documentID string) (*models.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubSummaryService) List(ctx context.Context, authToken string, user *models.AuthUser, page int) ([]models.Summary, *models.Pagination, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return []models.Summary{*s.record}, &models.Pagination{Page: page, PageSize: 4, Total: 1}, nil
}

func (s *stubSummaryService) Update(ctx context.Context, authToken string, user *models.AuthUser, documentID string, update models.SummaryUpdate) (*models.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubSummaryService) Delete(ctx context.Context, authToken string, user *models.AuthUser, documentID string) error {
	return s.err
}

type stubTranscriptService struct {
	data *models.TranscriptData
	err  error
}

func (s *stubTranscriptService) Fetch(ctx context.Context, videoIdentifier string) (*models.TranscriptData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

type stubGenerator struct{}

func (s *stubGenerator) Summarize(ctx context.Context, transcript, template string) (string, error) {
	return "a short summary", nil
}

type stubImageStore struct{}

func (s *stubImageStore) UploadFile(ctx context.Context, authToken, filename string, contents io.Reader, ref *cms.UploadRef) ([]models.Image, error) {
	return []models.Image{{ID: 1, URL: "/uploads/" + filename}}, nil
}

func (s *stubImageStore) DeleteFile(ctx context.Context, authToken string, fileID int) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:     "0",
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		IdleTimeout:    5 * time.Second,
		RequestTimeout: 5 * time.Second,
		Version:        "test",
	}
}

func testServer(summarySvc *stubSummaryService) http.Handler {
	authSvc := &stubAuthService{user: &models.AuthUser{ID: 7, DocumentID: "u7", Credits: 3}}
	srv := NewServer(testConfig(), WithServices(
		authSvc,
		summarySvc,
		&stubTranscriptService{data: &models.TranscriptData{
			VideoID:        "dQw4w9WgXcQ",
			Title:          "A Video",
			FullTranscript: "hello world",
		}},
		&stubGenerator{},
		&stubImageStore{},
	))
	return srv.server.Handler
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an envelope: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	handler := testServer(&stubSummaryService{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Errorf("expected a success envelope, got %+v", resp)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	handler := testServer(&stubSummaryService{})

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/transcript"},
		{"POST", "/api/v1/summarize"},
		{"POST", "/api/v1/summaries/generate"},
		{"GET", "/api/v1/summaries"},
		{"GET", "/api/v1/summaries/doc1"},
		{"DELETE", "/api/v1/summaries/doc1"},
		{"GET", "/api/v1/users/me"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}"))
			req.Header.Set("Content-Type", "application/json")
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func authedRequest(method, path, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer session-jwt")
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGenerateEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		handler := testServer(&stubSummaryService{record: &models.Summary{
			DocumentID: "doc1",
			VideoID:    "dQw4w9WgXcQ",
			UserID:     "u7",
			Title:      "A Video",
			Content:    "a short summary",
		}})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("POST", "/api/v1/summaries/generate",
			`{"videoId": "dQw4w9WgXcQ"}`))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
		}
		resp := decodeEnvelope(t, rec)
		if !resp.Success || resp.Status != http.StatusCreated {
			t.Errorf("unexpected envelope: %+v", resp)
		}
	})

	t.Run("missing videoId is a validation error", func(t *testing.T) {
		handler := testServer(&stubSummaryService{})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("POST", "/api/v1/summaries/generate", `{}`))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		resp := decodeEnvelope(t, rec)
		if resp.Error == nil || resp.Error.Name != "ValidationError" {
			t.Errorf("unexpected envelope: %+v", resp)
		}
		if _, ok := resp.Error.Details["videoId"]; !ok {
			t.Errorf("expected field details, got %+v", resp.Error.Details)
		}
	})

	t.Run("out of credits surfaces 402", func(t *testing.T) {
		handler := testServer(&stubSummaryService{err: errors.InsufficientCredits("stub")})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("POST", "/api/v1/summaries/generate",
			`{"videoId": "dQw4w9WgXcQ"}`))

		if rec.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", rec.Code)
		}
		resp := decodeEnvelope(t, rec)
		if resp.Error == nil || resp.Error.Name != "InsufficientCredits" {
			t.Errorf("unexpected envelope: %+v", resp)
		}
	})
}

func TestSummaryDetailErrors(t *testing.T) {
	t.Run("foreign record comes back 401", func(t *testing.T) {
		handler := testServer(&stubSummaryService{
			err: errors.Unauthorized("stub", nil, "You can't access this entry"),
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("GET", "/api/v1/summaries/doc-theirs", ""))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing record comes back 404", func(t *testing.T) {
		handler := testServer(&stubSummaryService{
			err: errors.NotFound("stub", nil, "Not Found"),
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("GET", "/api/v1/summaries/doc-gone", ""))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		resp := decodeEnvelope(t, rec)
		if resp.Success || resp.Error == nil {
			t.Errorf("expected a well-formed error envelope, got %+v", resp)
		}
	})
}

func TestListEndpoint(t *testing.T) {
	handler := testServer(&stubSummaryService{record: &models.Summary{
		DocumentID: "doc1", UserID: "u7", Title: "A Video",
	}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("GET", "/api/v1/summaries?page=2", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Meta == nil || resp.Meta.Pagination == nil || resp.Meta.Pagination.Page != 2 {
		t.Errorf("expected pagination metadata, got %+v", resp.Meta)
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	handler := testServer(&stubSummaryService{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("POST", "/api/v1/transcript",
		`{"videoId": "dQw4w9WgXcQ"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.TranscriptData `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Data.FullTranscript != "hello world" {
		t.Errorf("unexpected transcript: %+v", resp.Data)
	}
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		handler := testServer(&stubSummaryService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/auth/login",
			strings.NewReader(`{"identifier": "a@b.c", "password": "secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		handler := testServer(&stubSummaryService{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/auth/login",
			strings.NewReader(`{"identifier": "a@b.c", "password": "wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		resp := decodeEnvelope(t, rec)
		if resp.Error == nil || resp.Error.Message != "이메일 또는 비밀번호가 올바르지 않습니다." {
			t.Errorf("expected localized message, got %+v", resp.Error)
		}
	})
}

func TestProfileEndpoints(t *testing.T) {
	handler := testServer(&stubSummaryService{})

	t.Run("me returns the session user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("GET", "/api/v1/users/me", ""))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp struct {
			Data models.AuthUser `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp.Data.DocumentID != "u7" || resp.Data.Credits != 3 {
			t.Errorf("unexpected user: %+v", resp.Data)
		}
	})

	t.Run("profile update", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("PUT", "/api/v1/users/me",
			`{"bio": "hello there"}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}

		var resp struct {
			Data models.AuthUser `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp.Data.Bio != "hello there" {
			t.Errorf("unexpected profile: %+v", resp.Data)
		}
	})
}
