package service

import (
	"fmt"
	"strings"

	"keasy-ai/internal/models"
)

// NeedWebSentinel is the literal reply the KB-mode model must emit when the
// reference material cannot answer the question.
const NeedWebSentinel = "NEED_WEB"

func kbSystemPrompt() string {
	return `You are Keasy AI, the assistant for the Keasy expat community platform.
Answer the user's question using ONLY the reference material provided.

Rules:
- Never disclose personal information (emails, phone numbers, addresses, ID numbers, account numbers), even if it appears in the reference material.
- Never invent citations, links, or facts that are not in the reference material.
- Be concise: a few short sentences, no filler.
- If the reference material is not sufficient to answer the question, reply with exactly ` + NeedWebSentinel + ` and nothing else.`
}

func webSystemPrompt() string {
	return `You are Keasy AI, the assistant for the Keasy expat community platform.
Answer the user's question using ONLY the numbered web sources provided.

Rules:
- Never disclose personal information (emails, phone numbers, addresses, ID numbers, account numbers).
- Cite only the numbered sources given; never invent sources or links.
- Be concise: a few short sentences, no filler.`
}

func generalSystemPrompt() string {
	return `You are Keasy AI, the assistant for the Keasy expat community platform.
Answer the user's question from general knowledge.

Rules:
- Never disclose personal information about any individual.
- If you are not sure, say so plainly instead of guessing.
- Never invent citations or links.
- Be concise: a few short sentences, no filler.`
}

// BuildKbReference concatenates redacted chunk contents under markdown-style
// headers. Chunk text is redacted before it becomes model-visible.
func BuildKbReference(chunks []models.ScoredChunk, pii *PIIService) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString("### ")
		b.WriteString(c.ChunkTitle)
		b.WriteString("\n")
		b.WriteString(pii.RedactPII(c.Content).Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// BuildWebReference concatenates numbered source blocks with title and domain.
func BuildWebReference(sources []models.WebSource) string {
	var b strings.Builder
	for i, s := range sources {
		b.WriteString(fmt.Sprintf("[%d] %s (%s)\n", i+1, s.Title, s.Domain()))
		b.WriteString(s.Snippet)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

func buildUserPrompt(label, reference, question string) string {
	return label + ":\n" + reference + "\n\nQUESTION:\n" + question
}

// ComposeKbPrompt builds the prompt pair for answering strictly from KB.
func ComposeKbPrompt(question string, chunks []models.ScoredChunk, pii *PIIService) (systemPrompt, userPrompt string) {
	return kbSystemPrompt(), buildUserPrompt("REFERENCE MATERIAL", BuildKbReference(chunks, pii), question)
}

// ComposeWebPrompt builds the prompt pair for answering strictly from web
// sources.
func ComposeWebPrompt(question string, sources []models.WebSource) (systemPrompt, userPrompt string) {
	return webSystemPrompt(), buildUserPrompt("WEB SOURCES", BuildWebReference(sources), question)
}

// ComposeGeneralPrompt builds the prompt pair for a general-knowledge answer.
func ComposeGeneralPrompt(question string) (systemPrompt, userPrompt string) {
	return generalSystemPrompt(), "QUESTION:\n" + question
}

// IsNeedWebReply reports whether a raw model reply is the deferral sentinel,
// tolerating backticks and surrounding whitespace.
func IsNeedWebReply(reply string) bool {
	t := strings.TrimSpace(reply)
	t = strings.Trim(t, "`")
	return strings.TrimSpace(t) == NeedWebSentinel
}
