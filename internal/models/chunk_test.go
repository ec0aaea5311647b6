package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDocID(t *testing.T) {
	tests := []struct {
		in       string
		wantType DocType
		wantID   string
		wantOK   bool
	}{
		{"guide:42", DocTypeGuide, "42", true},
		{"job:7", DocTypeJob, "7", true},
		{"event:abc-123", DocType("event"), "abc-123", true},
		{"noprefix", "", "", false},
		{":42", "", "", false},
		{"guide:", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, id, ok := SplitDocID(tt.in)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestWebSourceDomain(t *testing.T) {
	assert.Equal(t, "weather.example.com", WebSource{URL: "https://weather.example.com/seoul?d=3"}.Domain())
	assert.Equal(t, "example.org", WebSource{URL: "http://example.org"}.Domain())
	assert.Equal(t, "example.org", WebSource{URL: "example.org/path"}.Domain())
}
