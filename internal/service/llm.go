package service

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

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/metrics"
)

// LLMClient sends a chat completion and returns the assistant's content
type LLMClient interface {
	Complete(ctx context.Context, messages []Message, jsonMode bool) (string, error)
}

// LLMService talks to an OpenAI-compatible chat completions endpoint
// (DeepSeek by default).
type LLMService struct {
	apiKey  string
	apiURL  string
	model   string
	client  *http.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ LLMClient = (*LLMService)(nil)

// NewLLMService returns nil when the assistant is disabled
func NewLLMService(cfg config.LLMConfig, logger *zap.Logger, m *metrics.Metrics) *LLMService {
	if !cfg.Enabled {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMService{
		apiKey:  cfg.APIKey,
		apiURL:  cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
	}
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat completions request body
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature"`
}

// Complete sends messages and returns the first choice's content. Any
// transport or upstream failure wraps ErrLLMUpstream.
func (s *LLMService) Complete(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	start := time.Now()
	content, err := s.complete(ctx, messages, jsonMode)
	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Error("LLM request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
	}
	s.metrics.ObserveLLM(status, time.Since(start))
	return content, err
}

func (s *LLMService) complete(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	reqBody := Request{
		Model:       s.model,
		Messages:    messages,
		Temperature: 0.7,
	}
	if jsonMode {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrLLMUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrLLMUpstream, resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrLLMUpstream, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrLLMUpstream)
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripCodeFence removes a surrounding ``` or ```json fence from model output
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeJSONReply unmarshals model output that should be a JSON object,
// tolerating code fences and surrounding prose.
func decodeJSONReply(raw string, v interface{}) error {
	text := StripCodeFence(raw)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}
	start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return errors.New("no JSON object in reply")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
