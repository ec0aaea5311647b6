package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"keasy-ai/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompleteMissingKey(t *testing.T) {
	svc := NewLLMService(&config.DeepSeekConfig{}, zap.NewNop())

	_, err := svc.Complete(context.Background(), "system", "user")

	assert.ErrorIs(t, err, ErrCompletionKeyMissing)
}

func TestCompleteExtractsFirstChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-chat", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		fmt.Fprint(w, `{"choices":[{"message":{"content":"  the answer  "}}]}`)
	}))
	defer server.Close()

	svc := NewLLMService(&config.DeepSeekConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "deepseek-chat",
	}, zap.NewNop())

	got, err := svc.Complete(context.Background(), "be helpful", "hello")

	require.NoError(t, err)
	assert.Equal(t, "the answer", got)
}

func TestCompleteLegacyTextField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[{"text":"legacy answer"}]}`)
	}))
	defer server.Close()

	svc := NewLLMService(&config.DeepSeekConfig{APIKey: "k", BaseURL: server.URL}, zap.NewNop())

	got, err := svc.Complete(context.Background(), "s", "u")

	require.NoError(t, err)
	assert.Equal(t, "legacy answer", got)
}

func TestCompleteHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewLLMService(&config.DeepSeekConfig{APIKey: "k", BaseURL: server.URL}, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s", "u")

	assert.Error(t, err)
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	svc := NewLLMService(&config.DeepSeekConfig{APIKey: "k", BaseURL: server.URL}, zap.NewNop())

	_, err := svc.Complete(context.Background(), "s", "u")

	assert.Error(t, err)
}
