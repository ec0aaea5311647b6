package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"keasy-ai/internal/dto"
	"keasy-ai/internal/models"
	"keasy-ai/pkg/config"

	"go.uber.org/zap"
)

// ErrEmptyMessage marks a malformed request; the handler maps it to 400.
var ErrEmptyMessage = errors.New("message is required")

// Fixed user-facing strings. A refusal never confirms what was detected.
const (
	refusalMessage = "Sorry, I can't help with that request."
	clarifyMessage = "Sure! Could you tell me a bit more about what you'd like help with?"
	noRelatedItems = "I couldn't find related items for that. Is there anything else I can help you with?"
)

// KbGateway is the knowledge-base collaborator.
type KbGateway interface {
	GetKbResults(ctx context.Context, query string, keasy config.KeasyConfig) []models.ScoredChunk
	GetRelatedForDoc(ctx context.Context, docID string, keasy config.KeasyConfig) []dto.RelatedItem
}

// CompletionGateway is the LLM collaborator.
type CompletionGateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// WebGateway is the optional web-search collaborator.
type WebGateway interface {
	Search(ctx context.Context, query string, keasy config.KeasyConfig) ([]models.WebSource, error)
}

// ChatService turns one inbound chat message into one answer. It holds no
// per-request state; every call is independent.
type ChatService struct {
	kb         KbGateway
	llm        CompletionGateway
	web        WebGateway
	pii        *PIIService
	defaults   config.KeasyConfig
	production bool
	logger     *zap.Logger
}

func NewChatService(
	kb KbGateway,
	llm CompletionGateway,
	web WebGateway,
	pii *PIIService,
	defaults config.KeasyConfig,
	production bool,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		kb:         kb,
		llm:        llm,
		web:        web,
		pii:        pii,
		defaults:   defaults,
		production: production,
		logger:     logger,
	}
}

// ProcessMessage runs the full pipeline. Collaborator degradation (KB store
// down, page fetch timeouts) is absorbed; completion and search failures
// propagate and surface as a generic 500 at the transport boundary.
func (s *ChatService) ProcessMessage(ctx context.Context, req dto.ChatRequest, overrides *config.KeasyOverrides) (*dto.ChatResponse, error) {
	message := strings.TrimSpace(sanitizeUTF8(req.Message))
	if message == "" {
		return nil, ErrEmptyMessage
	}

	keasy := s.defaults.Merge(overrides)

	// Acknowledgements carry no content of their own and never reach a
	// gateway other than the related-items lookup.
	if IsAcknowledgement(message) {
		if req.FollowupFor != "" {
			return s.answerRelated(ctx, req.FollowupFor, keasy), nil
		}
		return dto.NewChatResponse(models.ModeGeneral, clarifyMessage), nil
	}

	// Classified on the raw message, before any gateway is touched.
	if IsPersonalInfoRequest(message) {
		s.logger.Info("Refusing personal-info request")
		return dto.NewChatResponse(models.ModeRefuse, refusalMessage), nil
	}

	redacted := s.pii.RedactPII(message)
	sanitized := strings.TrimSpace(redacted.Text)
	if redacted.RedactionsApplied && isOnlyRedactionTags(sanitized) {
		resp := dto.NewChatResponse(models.ModeRefuse, refusalMessage)
		resp.RedactionsApplied = true
		return resp, nil
	}

	chunks := s.kb.GetKbResults(ctx, sanitized, keasy)

	bestScore := 0.0
	if len(chunks) > 0 {
		bestScore = chunks[0].Score
	}
	confident := len(chunks) >= keasy.KbMinResults && bestScore >= keasy.KbMinScore

	var (
		mode    models.Mode
		answer  string
		sources []models.WebSource
	)

	if confident {
		systemPrompt, userPrompt := ComposeKbPrompt(sanitized, chunks, s.pii)
		reply, err := s.llm.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			return nil, fmt.Errorf("kb completion failed: %w", err)
		}
		if IsNeedWebReply(reply) {
			s.logger.Info("KB model deferred to fallback", zap.Float64("best_score", bestScore))
			confident = false
		} else {
			mode = models.ModeKB
			answer = reply
		}
	}

	if !confident {
		var err error
		if keasy.WebFallbackEnabled && s.web != nil {
			mode = models.ModeWeb
			answer, sources, err = s.answerFromWeb(ctx, sanitized, keasy)
		} else {
			mode = models.ModeGeneral
			systemPrompt, userPrompt := ComposeGeneralPrompt(sanitized)
			answer, err = s.llm.Complete(ctx, systemPrompt, userPrompt)
		}
		if err != nil {
			return nil, fmt.Errorf("%s completion failed: %w", mode, err)
		}
	}

	filtered := s.pii.FilterPII(answer)
	redactionsApplied := redacted.RedactionsApplied || filtered.RedactionsApplied

	if filtered.Refuse {
		s.logger.Warn("Withholding mostly-PII answer", zap.String("mode", string(mode)))
		resp := dto.NewChatResponse(models.ModeRefuse, refusalMessage)
		resp.RedactionsApplied = true
		return resp, nil
	}

	resp := dto.NewChatResponse(mode, filtered.Text)
	resp.RedactionsApplied = redactionsApplied

	if mode == models.ModeKB && len(chunks) > 0 {
		top := chunks[0]
		resp.Answer = FinalizeKbAnswer(filtered.Text, &top, CollectCandidateURLs(chunks))
		resp.KbDocID = top.DocID
	}
	if mode == models.ModeWeb {
		resp.WithSources(toDTOSources(sources))
	}

	if !s.production {
		resp.Debug = buildDebugInfo(sanitized, bestScore, chunks, sources)
	}
	return resp, nil
}

// answerRelated resolves a bare acknowledgement with a follow-up target
// into a "here are related items" answer. No user content is echoed, so no
// PII pass is needed.
func (s *ChatService) answerRelated(ctx context.Context, docID string, keasy config.KeasyConfig) *dto.ChatResponse {
	items := s.kb.GetRelatedForDoc(ctx, docID, keasy)
	if len(items) == 0 {
		resp := dto.NewChatResponse(models.ModeKB, noRelatedItems)
		resp.KbDocID = docID
		return resp
	}

	var b strings.Builder
	b.WriteString("Here are some related items you might find useful:\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item.Title)
		if item.Link != "" {
			b.WriteString(" (")
			b.WriteString(item.Label)
			b.WriteString(": ")
			b.WriteString(item.Link)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	resp := dto.NewChatResponse(models.ModeKB, strings.TrimSpace(b.String()))
	resp.KbDocID = docID
	return resp
}

func (s *ChatService) answerFromWeb(ctx context.Context, sanitized string, keasy config.KeasyConfig) (string, []models.WebSource, error) {
	query := truncateUTF8(sanitized, keasy.MaxQueryLength)

	sources, err := s.web.Search(ctx, query, keasy)
	if err != nil {
		return "", nil, fmt.Errorf("web search failed: %w", err)
	}

	systemPrompt, userPrompt := ComposeWebPrompt(sanitized, sources)
	answer, err := s.llm.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", nil, err
	}
	return answer, sources, nil
}

var categoryTags = []string{"[EMAIL]", "[PHONE]", "[ADDRESS]", "[ID_NUMBER]", "[FINANCIAL]", "[ACCOUNT_ID]"}

// isOnlyRedactionTags reports whether nothing but redaction tags survived
// the inbound pass.
func isOnlyRedactionTags(sanitized string) bool {
	t := sanitized
	for _, tag := range categoryTags {
		t = strings.ReplaceAll(t, tag, "")
	}
	return strings.TrimSpace(strings.Trim(t, ",.;:!?- ")) == ""
}

func toDTOSources(sources []models.WebSource) []dto.Source {
	out := make([]dto.Source, len(sources))
	for i, s := range sources {
		out[i] = dto.Source{Title: s.Title, URL: s.URL}
	}
	return out
}

func buildDebugInfo(sanitized string, bestScore float64, chunks []models.ScoredChunk, sources []models.WebSource) *dto.DebugInfo {
	hash := sha256.Sum256([]byte(sanitized))

	matched := make([]string, len(chunks))
	for i, c := range chunks {
		matched[i] = c.ID.String()
	}

	var domains []string
	for _, src := range sources {
		domains = append(domains, src.Domain())
	}

	return &dto.DebugInfo{
		BestScore:     bestScore,
		MatchedChunks: matched,
		QueryHash:     hex.EncodeToString(hash[:]),
		SourceDomains: domains,
	}
}
