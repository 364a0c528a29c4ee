package summarizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sjlee-dev/vidbrief/errors"
)

func TestSummarizeRejectsEmptyTranscript(t *testing.T) {
	svc := NewService(Config{APIKey: "test-key"})

	tests := []string{"", "   ", "\n\t"}
	for _, transcript := range tests {
		_, err := svc.Summarize(context.Background(), transcript, "")
		if errors.Code(err) != http.StatusBadRequest {
			t.Errorf("Summarize(%q) expected 400, got %v", transcript, err)
		}
	}
}

// fakeCompletions emulates the chat completions endpoint and captures the
// request for assertions.
func fakeCompletions(t *testing.T, content string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("bad completion request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"choices": []map[string]interface{}{
				{
					"index":   0,
					"message": map[string]string{"role": "assistant", "content": content},
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestSummarize(t *testing.T) {
	server, captured := fakeCompletions(t, "## Quick Overview\nA summary.")

	svc := NewService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	})

	got, err := svc.Summarize(context.Background(), "never gonna give you up", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "## Quick Overview\nA summary." {
		t.Errorf("unexpected content: %q", got)
	}

	req := *captured
	if req["model"] != "gpt-4o-mini" {
		t.Errorf("expected default model, got %v", req["model"])
	}

	messages, ok := req["messages"].([]interface{})
	if !ok || len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %v", req["messages"])
	}
	system := messages[0].(map[string]interface{})
	if system["role"] != "system" || !strings.Contains(system["content"].(string), "Quick Overview") {
		t.Errorf("expected the structured prompt, got %v", system)
	}
	user := messages[1].(map[string]interface{})
	if !strings.Contains(user["content"].(string), "never gonna give you up") {
		t.Errorf("expected the transcript in the user message, got %v", user)
	}
}

func TestSummarizeCustomTemplate(t *testing.T) {
	server, captured := fakeCompletions(t, "ok")

	svc := NewService(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"})

	if _, err := svc.Summarize(context.Background(), "transcript", "Reply with one word."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages := (*captured)["messages"].([]interface{})
	system := messages[0].(map[string]interface{})
	if system["content"] != "Reply with one word." {
		t.Errorf("expected the custom template, got %v", system["content"])
	}
}

func TestSummarizeProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "server overloaded", "type": "server_error"}}`))
	}))
	t.Cleanup(server.Close)

	svc := NewService(Config{APIKey: "test-key", BaseURL: server.URL + "/v1"})

	_, err := svc.Summarize(context.Background(), "transcript", "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Code(err) != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", errors.Code(err))
	}
}
