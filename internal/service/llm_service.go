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

	"keasy-ai/pkg/config"

	"go.uber.org/zap"
)

// ErrCompletionKeyMissing is returned when the completion gateway is invoked
// without a configured API key. It is a fatal configuration error for the
// request, surfaced as a generic 500 at the transport boundary.
var ErrCompletionKeyMissing = errors.New("DEEPSEEK_API_KEY is not configured")

// LLMService calls the DeepSeek chat-completion endpoint. It is a pure
// boundary: the pipeline never inspects the credential or model beyond
// passing them through configuration, and failed calls are not retried.
type LLMService struct {
	config     *config.DeepSeekConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLLMService(cfg *config.DeepSeekConfig, logger *zap.Logger) *LLMService {
	return &LLMService{
		config:     cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Complete posts a system+user prompt pair and returns the trimmed first
// choice content.
func (s *LLMService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.config.APIKey == "" {
		return "", ErrCompletionKeyMissing
	}

	payload := completionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Completion endpoint returned error",
			zap.Int("status", resp.StatusCode),
		)
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	if content == "" {
		// Legacy completions shape
		content = parsed.Choices[0].Text
	}
	return strings.TrimSpace(content), nil
}
