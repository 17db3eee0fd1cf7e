package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const chatCompletionsPath = "/chat/completions"

// OpenAIScorer calls an OpenAI-compatible chat completions endpoint, such
// as a hosted agent that ignores the model name.
type OpenAIScorer struct {
	endpoint string
	apiKey   string
	model    string
	logger   *zap.Logger

	HTTPClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIScorer creates a scorer for the given endpoint base URL (up to
// and including the API version prefix, e.g. ".../api/v1").
func NewOpenAIScorer(logger *zap.Logger, endpoint, apiKey, model string) (*OpenAIScorer, error) {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("agent endpoint is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("agent api key is required")
	}
	if model == "" {
		// Hosted agents ignore the model name but the field is required.
		model = "n/a"
	}

	return &OpenAIScorer{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		logger:   logger,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (s *OpenAIScorer) Score(ctx context.Context, jobDescription, resumeText string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(jobDescription, resumeText)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call agent: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read agent response: %w", err)
	}

	s.logger.Debug("agent response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode agent response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("agent returned no choices")
	}

	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.New("agent returned empty content")
	}

	return content, nil
}
