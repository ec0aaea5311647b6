package service

import (
	"regexp"
	"sort"
	"strings"
)

// PIICategory identifies which matcher claimed a span of text.
type PIICategory string

const (
	PIIEmail     PIICategory = "email"
	PIIPhone     PIICategory = "phone"
	PIIAddress   PIICategory = "address"
	PIIIDNumber  PIICategory = "id_number"
	PIIFinancial PIICategory = "financial"
	PIIAccountID PIICategory = "account_id"
)

// Tag is the inbound replacement marker for the category.
func (c PIICategory) Tag() string {
	switch c {
	case PIIEmail:
		return "[EMAIL]"
	case PIIPhone:
		return "[PHONE]"
	case PIIAddress:
		return "[ADDRESS]"
	case PIIIDNumber:
		return "[ID_NUMBER]"
	case PIIFinancial:
		return "[FINANCIAL]"
	case PIIAccountID:
		return "[ACCOUNT_ID]"
	}
	return "[REDACTED]"
}

// redactedTag is the uniform marker used on outbound model text.
const redactedTag = "[REDACTED]"

// PIIMatch is one claimed span in the scanned text.
type PIIMatch struct {
	Start    int
	End      int
	Category PIICategory
}

// PIIDetector finds PII spans in arbitrary text. The regex implementation
// is a heuristic; false negatives are an accepted limitation, and a
// stronger detector can be substituted without touching the pipeline.
type PIIDetector interface {
	Detect(text string) []PIIMatch
}

type piiPattern struct {
	category PIICategory
	re       *regexp.Regexp
}

// RegexDetector applies an ordered list of pattern matchers. Address and
// ID-context patterns run before the card-number pattern so digit runs
// inside addresses and IDs are not claimed as card numbers.
type RegexDetector struct {
	patterns []piiPattern
}

var (
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe   = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{2,4}\)?[-.\s]\d{3,4}(?:[-.\s]?\d{3,4})?\b|\b0\d{1,2}-\d{3,4}-\d{4}\b`)
	addressRe = regexp.MustCompile(`(?i)\b\d+\s+(?:[A-Za-z]+\s+){0,3}(?:street|st|avenue|ave|road|rd|boulevard|blvd|lane|ln|drive|dr|court|ct|way|dong|gu|ro|gil)\b\.?`)
	idCtxRe   = regexp.MustCompile(`(?i)\b(?:passport|ssn|social\s+security|national\s+id|resident\s+(?:registration\s+)?number|id\s+number|driver'?s?\s+licen[cs]e)\s*(?:number|no\.?|#)?\s*(?:is)?\s*[:#]?\s*[A-Za-z0-9][A-Za-z0-9-]{3,}`)
	cardRe    = regexp.MustCompile(`\b\d{13,19}\b`)
	acctCtxRe = regexp.MustCompile(`(?i)\b(?:account|acct|iban|order\s+(?:id|number)|booking\s+(?:id|number)|reference)\s*(?:number|no\.?|#)?\s*(?:is)?\s*[:#]?\s*[A-Za-z0-9][A-Za-z0-9-]{3,}`)
)

// NewRegexDetector builds the default detector with the fixed pattern order.
func NewRegexDetector() *RegexDetector {
	return &RegexDetector{
		patterns: []piiPattern{
			{PIIEmail, emailRe},
			{PIIPhone, phoneRe},
			{PIIAddress, addressRe},
			{PIIIDNumber, idCtxRe},
			{PIIFinancial, cardRe},
			{PIIAccountID, acctCtxRe},
		},
	}
}

// Detect returns non-overlapping matches; earlier patterns win overlaps.
func (d *RegexDetector) Detect(text string) []PIIMatch {
	var matches []PIIMatch
	for _, p := range d.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if overlapsAny(matches, loc[0], loc[1]) {
				continue
			}
			matches = append(matches, PIIMatch{Start: loc[0], End: loc[1], Category: p.category})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

func overlapsAny(matches []PIIMatch, start, end int) bool {
	for _, m := range matches {
		if start < m.End && end > m.Start {
			return true
		}
	}
	return false
}

// PIIService wraps a detector with the two redaction contracts: category
// tagging for text flowing into prompts, uniform tagging with a refusal
// signal for text flowing out of the model.
type PIIService struct {
	detector PIIDetector
}

func NewPIIService(detector PIIDetector) *PIIService {
	if detector == nil {
		detector = NewRegexDetector()
	}
	return &PIIService{detector: detector}
}

// RedactResult is the outcome of the inbound, category-tagged pass.
type RedactResult struct {
	Text              string
	RedactionsApplied bool
}

// FilterResult is the outcome of the outbound, uniform-tagged pass.
type FilterResult struct {
	Text              string
	RedactionsApplied bool
	Refuse            bool
}

// refuseTagRatio is the fraction of redaction tags per total word count at
// or above which an outbound answer is withheld entirely.
const refuseTagRatio = 0.4

// RedactPII masks detected PII with category tags. Re-redacting already
// redacted text is a no-op.
func (s *PIIService) RedactPII(text string) RedactResult {
	if text == "" {
		return RedactResult{Text: ""}
	}
	out, n := s.replace(text, func(m PIIMatch) string { return m.Category.Tag() })
	return RedactResult{Text: out, RedactionsApplied: n > 0}
}

// FilterPII masks detected PII with the uniform tag and decides whether
// the answer is mostly PII and should be withheld.
func (s *PIIService) FilterPII(text string) FilterResult {
	if text == "" {
		return FilterResult{Text: ""}
	}
	out, n := s.replace(text, func(PIIMatch) string { return redactedTag })
	res := FilterResult{Text: out, RedactionsApplied: n > 0}
	if n == 0 {
		return res
	}

	stripped := strings.TrimSpace(strings.ReplaceAll(out, redactedTag, ""))
	if stripped == "" {
		res.Refuse = true
		return res
	}

	words := strings.Fields(out)
	tags := 0
	for _, w := range words {
		if strings.Contains(w, redactedTag) {
			tags++
		}
	}
	if len(words) > 0 && float64(tags)/float64(len(words)) >= refuseTagRatio {
		res.Refuse = true
	}
	return res
}

func (s *PIIService) replace(text string, tag func(PIIMatch) string) (string, int) {
	matches := s.detector.Detect(text)
	if len(matches) == 0 {
		return text, 0
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	for _, m := range matches {
		b.WriteString(text[prev:m.Start])
		b.WriteString(tag(m))
		prev = m.End
	}
	b.WriteString(text[prev:])
	return b.String(), len(matches)
}
