package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "hello", sanitizeUTF8("hello"))
	assert.Equal(t, "ab", sanitizeUTF8("a\xffb"))
	assert.Equal(t, "휴대폰 요금제", sanitizeUTF8("휴대폰 요금제"))
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "hello", truncateUTF8("hello", 10))
	assert.Equal(t, "hel", truncateUTF8("hello", 3))

	// Hangul runes are 3 bytes; a cut landing mid-rune backs up to the
	// previous boundary instead of emitting a broken sequence.
	s := "휴대폰 요금제 안내"
	got := truncateUTF8(s, 10)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, len(got) <= 10)
	assert.True(t, strings.HasPrefix(s, got))

	for max := 0; max <= len(s); max++ {
		assert.True(t, utf8.ValidString(truncateUTF8(s, max)))
	}
}
