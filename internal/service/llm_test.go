package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/service"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *service.LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return service.NewLLMService(config.LLMConfig{
		Enabled: true,
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, zap.NewNop(), nil)
}

func TestLLMService_Complete(t *testing.T) {
	var got service.Request
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	})

	content, err := llm.Complete(context.Background(), []service.Message{{Role: "user", Content: "hi"}}, true)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, map[string]string{"type": "json_object"}, got.ResponseFormat)
	require.Len(t, got.Messages, 1)
}

func TestLLMService_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := llm.Complete(context.Background(), []service.Message{{Role: "user", Content: "hi"}}, false)
			assert.ErrorIs(t, err, service.ErrLLMUpstream)
		})
	}
}

func TestNewLLMService_Disabled(t *testing.T) {
	assert.Nil(t, service.NewLLMService(config.LLMConfig{Enabled: false}, zap.NewNop(), nil))
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"plain":                   "plain",
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\nsome text\n```":     "some text",
		"  ```json{\"a\":1}```  ": `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, service.StripCodeFence(in))
	}
}
