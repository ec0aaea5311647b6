package dto

import "keasy-ai/internal/models"

// ChatRequest is the inbound message. FollowupFor is the doc_id of a
// previously referenced knowledge document; it only matters when the
// message is a bare acknowledgement.
type ChatRequest struct {
	Message     string `json:"message"`
	FollowupFor string `json:"followup_for,omitempty"`
}

// Source is one cited web result, present only on web-mode answers.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RelatedItem is one suggestion in the acknowledgement follow-up flow.
type RelatedItem struct {
	DocID string `json:"doc_id"`
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
	Label string `json:"label"`
}

// DebugInfo is attached outside production only.
type DebugInfo struct {
	BestScore     float64  `json:"best_score"`
	MatchedChunks []string `json:"matched_chunks"`
	QueryHash     string   `json:"query_hash"`
	SourceDomains []string `json:"source_domains,omitempty"`
}

// ChatResponse is the answer body. Sources is populated exclusively by
// WithSources, which forces web mode, so the sources-only-on-web invariant
// holds by construction.
type ChatResponse struct {
	Answer            string      `json:"answer"`
	Mode              models.Mode `json:"mode"`
	Sources           []Source    `json:"sources,omitempty"`
	RedactionsApplied bool        `json:"redactions_applied"`
	KbDocID           string      `json:"kb_doc_id,omitempty"`
	Debug             *DebugInfo  `json:"debug,omitempty"`
}

// NewChatResponse builds a response in the given non-web mode.
func NewChatResponse(mode models.Mode, answer string) *ChatResponse {
	return &ChatResponse{Answer: answer, Mode: mode}
}

// WithSources attaches web sources and pins the mode to web.
func (r *ChatResponse) WithSources(sources []Source) *ChatResponse {
	r.Mode = models.ModeWeb
	r.Sources = sources
	return r
}

// ErrorResponse is the generic transport-level failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}
