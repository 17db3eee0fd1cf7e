package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestOpenAIScorerReturnsContent(t *testing.T) {
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"choices": [{"message": {"content": "Rating: 9/10. Strong candidate."}}]}`)
	}))
	defer srv.Close()

	scorer, err := NewOpenAIScorer(zap.NewNop(), srv.URL, "secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := scorer.Score(context.Background(), "Build Go services", "Experienced engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "Rating: 9/10. Strong candidate." {
		t.Fatalf("unexpected content: %q", got)
	}

	if len(gotBody.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(gotBody.Messages))
	}
	content := gotBody.Messages[0].Content
	if !strings.Contains(content, "Job Description: Build Go services") {
		t.Fatalf("prompt missing job description: %q", content)
	}
	if !strings.Contains(content, "Resume Text: Experienced engineer") {
		t.Fatalf("prompt missing resume text: %q", content)
	}
}

func TestOpenAIScorerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
	}{
		{
			name:   "non-200 status",
			status: http.StatusBadGateway,
			body:   `{}`,
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			body:   `{"choices": []}`,
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"choices": [{"message": {"content": "  "}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			scorer, err := NewOpenAIScorer(zap.NewNop(), srv.URL, "secret", "n/a")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if _, err := scorer.Score(context.Background(), "desc", "resume"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewOpenAIScorerValidation(t *testing.T) {
	if _, err := NewOpenAIScorer(zap.NewNop(), "", "key", ""); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
	if _, err := NewOpenAIScorer(zap.NewNop(), "https://agent.example.com/api/v1", "", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
