package service

import (
	"sort"
	"strings"
	"unicode"

	"keasy-ai/internal/models"
)

// kbStopWords are dropped from search queries: articles, pronouns, common
// verbs, and generic platform nouns that match nearly every chunk.
var kbStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "your": {}, "yours": {}, "our": {}, "ours": {}, "their": {},
	"his": {}, "her": {}, "its": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "what": {}, "which": {}, "who": {}, "whom": {}, "how": {},
	"when": {}, "where": {}, "why": {}, "was": {}, "were": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "does": {}, "did": {},
	"doing": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"can": {}, "may": {}, "might": {}, "must": {}, "shall": {}, "about": {},
	"with": {}, "from": {}, "into": {}, "want": {}, "need": {}, "know": {},
	"get": {}, "got": {}, "make": {}, "just": {}, "like": {}, "please": {},
	"tell": {}, "some": {}, "any": {}, "there": {}, "here": {},
	"keasy": {}, "guide": {}, "guides": {}, "job": {}, "jobs": {},
	"community": {}, "communities": {}, "professional": {},
	"professionals": {}, "info": {}, "information": {}, "help": {},
	"question": {},
}

func tokenizeQuery(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var tokens []string
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := kbStopWords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// NormalizeKbQuery reduces a free-text question to its distinctive terms
// for full-text search. An empty result means the caller should fall back
// to the raw query.
func NormalizeKbQuery(query string) string {
	return strings.Join(tokenizeQuery(query), " ")
}

// ScoreChunk computes token-overlap relevance in [0,1]. A token hitting the
// chunk title weighs 2, hitting the content weighs 1. This is a cheap
// explainable proxy, not semantic similarity; ties between chunks with
// similar keyword density are expected.
func ScoreChunk(query string, chunk models.KbChunk) float64 {
	tokens := tokenizeQuery(query)
	if len(tokens) == 0 {
		return 0
	}

	title := strings.ToLower(chunk.ChunkTitle)
	content := strings.ToLower(chunk.Content)

	hits := 0
	for _, tok := range tokens {
		switch {
		case strings.Contains(title, tok):
			hits += 2
		case strings.Contains(content, tok):
			hits++
		}
	}
	return float64(hits) / float64(len(tokens)*2)
}

// RankChunks scores every chunk against the query and orders them by
// descending score, keeping source order for ties.
func RankChunks(query string, chunks []models.KbChunk) []models.ScoredChunk {
	scored := make([]models.ScoredChunk, len(chunks))
	for i, c := range chunks {
		scored[i] = models.ScoredChunk{KbChunk: c, Score: ScoreChunk(query, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
