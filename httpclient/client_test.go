package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"documentId": "abc123", "title": "hello"}}`))
	}))
	defer server.Close()

	result := New().Get(context.Background(), server.URL, Options{})

	if !result.Success {
		t.Fatalf("expected success, got error %+v", result.Error)
	}
	if result.Status != http.StatusOK {
		t.Errorf("expected status 200, got %d", result.Status)
	}

	var payload struct {
		DocumentID string `json:"documentId"`
		Title      string `json:"title"`
	}
	if err := result.Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.DocumentID != "abc123" || payload.Title != "hello" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestDoSuccessWithoutDataEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jwt": "token", "user": {"id": 1}}`))
	}))
	defer server.Close()

	result := New().Get(context.Background(), server.URL, Options{})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result.Error)
	}

	var payload struct {
		JWT string `json:"jwt"`
	}
	if err := result.Decode(&payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if payload.JWT != "token" {
		t.Errorf("expected whole body as data, got %+v", payload)
	}
}

func TestDoStructuredErrorPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"status": 400, "name": "ValidationError", "message": "Invalid identifier or password"}}`))
	}))
	defer server.Close()

	result := New().Post(context.Background(), server.URL, map[string]string{"a": "b"}, Options{})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error == nil {
		t.Fatal("expected a structured error")
	}
	if result.Error.Name != "ValidationError" {
		t.Errorf("expected ValidationError, got %s", result.Error.Name)
	}
	if result.Error.Message != "Invalid identifier or password" {
		t.Errorf("remote message should pass through unchanged, got %q", result.Error.Message)
	}

	appErr := result.AppError("test")
	if appErr == nil {
		t.Fatal("expected an app error")
	}
	if appErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", appErr.Code)
	}
	// Known remote messages are localized on conversion.
	if appErr.Message != "이메일 또는 비밀번호가 올바르지 않습니다." {
		t.Errorf("expected localized message, got %q", appErr.Message)
	}
}

func TestDoUnparseableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>Bad Gateway</html>`))
	}))
	defer server.Close()

	result := New().Get(context.Background(), server.URL, Options{})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", result.Status)
	}
	if result.Error == nil || result.Error.Name != "Error" {
		t.Errorf("expected synthesized Error, got %+v", result.Error)
	}
}

func TestDoTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	result := New().Get(context.Background(), server.URL, Options{Timeout: 50 * time.Millisecond})

	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if result.Error == nil || result.Error.Name != "TimeoutError" {
		t.Fatalf("expected TimeoutError, got %+v", result.Error)
	}
	if result.Status != http.StatusRequestTimeout {
		t.Errorf("expected status 408, got %d", result.Status)
	}

	appErr := result.AppError("test")
	if appErr == nil || appErr.Code != http.StatusRequestTimeout {
		t.Errorf("expected 408 app error, got %+v", appErr)
	}
}

func TestDoNetworkError(t *testing.T) {
	// Nothing listens here.
	result := New().Get(context.Background(), "http://127.0.0.1:1", Options{Timeout: time.Second})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error == nil || result.Error.Name != "NetworkError" {
		t.Fatalf("expected NetworkError, got %+v", result.Error)
	}

	appErr := result.AppError("test")
	if appErr == nil || appErr.Name != "NetworkError" || appErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 NetworkError, got %+v", appErr)
	}
}

func TestDeleteJudgedByStatusAlone(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
	}{
		{"204 no body", http.StatusNoContent, "", true},
		{"200 with body", http.StatusOK, `{"data": {"id": 1}}`, true},
		{"404 treated as failure", http.StatusNotFound, "", false},
		{"500 treated as failure", http.StatusInternalServerError, "oops", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			}))
			defer server.Close()

			result := New().Delete(context.Background(), server.URL, Options{})

			if result.Success != tt.wantSuccess {
				t.Fatalf("expected success=%v, got %+v", tt.wantSuccess, result)
			}
			if tt.wantSuccess && string(result.Data) != "true" {
				t.Errorf("expected data 'true', got %s", result.Data)
			}
			if !tt.wantSuccess && (result.Error == nil || result.Error.Message != "Failed to delete resource") {
				t.Errorf("expected delete failure message, got %+v", result.Error)
			}
		})
	}
}

func TestAuthTokenHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data": null}`))
	}))
	defer server.Close()

	New().Get(context.Background(), server.URL, Options{AuthToken: "jwt-token"})

	if gotAuth != "Bearer jwt-token" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}
