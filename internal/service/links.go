package service

import (
	"regexp"
	"strings"

	"keasy-ai/internal/models"
)

// LinkCategory buckets an external URL for the answer's link block. At most
// one link per category survives deduplication.
type LinkCategory string

const (
	LinkAppStore     LinkCategory = "app-store"
	LinkMap          LinkCategory = "map"
	LinkChat         LinkCategory = "chat"
	LinkSite         LinkCategory = "site"
	LinkUnclassified LinkCategory = "unclassified"
)

var urlRe = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

var imageExtRe = regexp.MustCompile(`(?i)\.(?:png|jpe?g|gif|webp|svg|ico)(?:\?|$)`)

// LinkForDoc maps a composite doc_id to its in-app entity link and human
// label. Unknown prefixes degrade to no link with the generic label.
func LinkForDoc(docID string) (link, label string) {
	typ, id, ok := models.SplitDocID(docID)
	if !ok {
		return "", "Click to view"
	}
	switch typ {
	case models.DocTypeGuide:
		return "/guides/guide/" + id, "Click to view full guide"
	case models.DocTypeJob:
		return "/jobs/job/" + id, "Click to view job"
	case models.DocTypeCommunity:
		return "/community", "Click to join community"
	case models.DocTypeProfessional:
		return "/connect", "Click to view professionals"
	}
	return "", "Click to view"
}

// ClassifyURL buckets a URL by its domain and path. Image URLs and anything
// that is not plain http(s) come back unclassified and are dropped.
func ClassifyURL(rawURL string) LinkCategory {
	u := strings.TrimSpace(rawURL)
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return LinkUnclassified
	}
	if imageExtRe.MatchString(lower) {
		return LinkUnclassified
	}

	switch {
	case strings.Contains(lower, "play.google.com"),
		strings.Contains(lower, "apps.apple.com"),
		strings.Contains(lower, "itunes.apple.com"):
		return LinkAppStore
	case strings.Contains(lower, "maps.google."),
		strings.Contains(lower, "google.com/maps"),
		strings.Contains(lower, "goo.gl/maps"),
		strings.Contains(lower, "map.naver.com"),
		strings.Contains(lower, "naver.me"),
		strings.Contains(lower, "map.kakao.com"),
		strings.Contains(lower, "place.map.kakao.com"):
		return LinkMap
	case strings.Contains(lower, "open.kakao.com"),
		strings.Contains(lower, "discord.gg"),
		strings.Contains(lower, "discord.com/invite"),
		strings.Contains(lower, "chat.whatsapp.com"),
		strings.Contains(lower, "line.me"),
		strings.Contains(lower, "t.me/"),
		strings.Contains(lower, "telegram.me"):
		return LinkChat
	}
	return LinkSite
}

func labelForCategory(cat LinkCategory) string {
	switch cat {
	case LinkAppStore:
		return "Click to get the app"
	case LinkMap:
		return "Click to view location"
	case LinkChat:
		return "Click to join the chat"
	case LinkSite:
		return "Click to visit site"
	}
	return "Click to view"
}

// CollectCandidateURLs gathers link candidates from chunk source_url fields
// and URLs embedded in chunk text, in source order.
func CollectCandidateURLs(chunks []models.ScoredChunk) []string {
	var urls []string
	seen := make(map[string]struct{})
	add := func(u string) {
		u = strings.TrimRight(strings.TrimSpace(u), ".,;")
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, c := range chunks {
		if c.SourceURL != "" {
			add(c.SourceURL)
		}
		for _, u := range urlRe.FindAllString(c.Content, -1) {
			add(u)
		}
	}
	return urls
}

var linkLineRe = regexp.MustCompile(`(?i)^\s*(?:links?\s*:|play\s*store\s*:|app\s*store\s*:|click\s+to\b|https?://\S+\s*$)`)

// StripLinkLines removes link-ish lines the model may have emitted in free
// text, so the canonical link block is not duplicated or garbled.
func StripLinkLines(answer string) string {
	lines := strings.Split(answer, "\n")
	var kept []string
	for _, line := range lines {
		if linkLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// kbSuggestionLine invites the acknowledgement follow-up flow on KB answers.
const kbSuggestionLine = `Reply "yes" and I'll show you related items.`

// BuildLinkBlock produces the canonical link lines for a KB answer: the top
// chunk's entity link first, then at most one extra link per category.
func BuildLinkBlock(top *models.ScoredChunk, candidates []string) string {
	var lines []string

	if top != nil {
		if link, label := LinkForDoc(top.DocID); link != "" {
			lines = append(lines, label+": "+link)
		}
	}

	taken := make(map[LinkCategory]struct{})
	for _, u := range candidates {
		cat := ClassifyURL(u)
		if cat == LinkUnclassified {
			continue
		}
		if _, dup := taken[cat]; dup {
			continue
		}
		taken[cat] = struct{}{}
		lines = append(lines, labelForCategory(cat)+": "+u)
	}

	return strings.Join(lines, "\n")
}

// FinalizeKbAnswer strips stray link text from the model answer, appends the
// canonical link block, and closes with the follow-up suggestion line.
func FinalizeKbAnswer(answer string, top *models.ScoredChunk, candidates []string) string {
	base := StripLinkLines(answer)
	block := BuildLinkBlock(top, candidates)

	var b strings.Builder
	b.WriteString(base)
	if block != "" {
		b.WriteString("\n\n")
		b.WriteString(block)
	}
	b.WriteString("\n\n")
	b.WriteString(kbSuggestionLine)
	return b.String()
}
