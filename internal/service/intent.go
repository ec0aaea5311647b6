package service

import (
	"regexp"
	"strings"
)

// Intent classification is deliberately conservative: first-person requests
// about the user's own data ("what's my phone number") are not flagged.

var (
	locationDoxxRe = regexp.MustCompile(`(?i)\bwhere\s+(?:do|does|did)\b.*\b(?:live|lives|stay|stays|work|works)\b|\b(?:dox+|track\s+(?:down\s+)?|locate|stalk)\b`)

	piiKeywordRe = regexp.MustCompile(`(?i)\b(?:phone\s*(?:number)?|email|e-mail|home\s+address|address|ssn|social\s+security|passport|id\s+number|card\s+number|bank\s+account|date\s+of\s+birth|whereabouts)\b|personal\s+information`)

	thirdPartyRe = regexp.MustCompile(`(?i)\b(?:his|her|hers|their|theirs|someone(?:'s)?|somebody(?:'s)?|he|she|they)\b`)

	possessiveRe = regexp.MustCompile(`(?i)\b([a-z]+)'s\s`)

	requestVerbRe = regexp.MustCompile(`(?i)\b(?:find|give\s+me|tell\s+me|get\s+me|show\s+me|send\s+me|look\s+up|share|reveal)\b`)

	firstPersonRe = regexp.MustCompile(`(?i)\b(?:i|me|my|mine|myself)\b`)
)

// IsPersonalInfoRequest reports whether the text asks for another person's
// personal information.
func IsPersonalInfoRequest(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if locationDoxxRe.MatchString(text) {
		return true
	}
	if !piiKeywordRe.MatchString(text) {
		return false
	}
	if hasThirdPartyMarker(text) {
		return true
	}
	return requestVerbRe.MatchString(text) && !firstPersonRe.MatchString(text)
}

// contractions that look like possessives but reference nobody.
var nonPossessive = map[string]struct{}{
	"what": {}, "that": {}, "it": {}, "there": {}, "here": {}, "let": {},
	"who": {}, "how": {}, "where": {}, "when": {}, "why": {}, "one": {},
}

func hasThirdPartyMarker(text string) bool {
	if thirdPartyRe.MatchString(text) {
		return true
	}
	for _, m := range possessiveRe.FindAllStringSubmatch(text, -1) {
		base := strings.ToLower(m[1])
		if _, skip := nonPossessive[base]; !skip {
			return true
		}
	}
	return false
}

var affirmationRe = regexp.MustCompile(`(?i)^(?:yes|yeah|yep|yup|ok|okay|sure|alright|all right)(?:,?\s+please)?$`)

var acknowledgementPhrases = map[string]struct{}{
	"go ahead":        {},
	"go for it":       {},
	"sounds good":     {},
	"sounds great":    {},
	"of course":       {},
	"why not":         {},
	"please do":       {},
	"do it":           {},
	"sure thing":      {},
	"yes please":      {},
	"that works":      {},
	"absolutely":      {},
	"definitely":      {},
	"show me":         {},
	"tell me more":    {},
	"i'd like that":   {},
	"that would help": {},
}

// IsAcknowledgement reports whether the text is a short affirmation with no
// semantic content of its own.
func IsAcknowledgement(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!?,~ ")
	t = strings.Join(strings.Fields(t), " ")
	if t == "" {
		return false
	}
	if affirmationRe.MatchString(t) {
		return true
	}
	_, ok := acknowledgementPhrases[t]
	return ok
}
