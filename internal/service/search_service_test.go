package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keasy-ai/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStripHTML(t *testing.T) {
	in := `<html><head><style>body { color: red; }</style>
<script>alert("hi");</script></head>
<body><h1>Seoul   Weather</h1><p>Sunny, <b>25</b> degrees.</p></body></html>`

	got := StripHTML(in)

	assert.Equal(t, "Seoul Weather Sunny, 25 degrees.", got)
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "color")
}

func TestSearchMissingKey(t *testing.T) {
	svc := NewSearchService(&config.SearchConfig{}, newPII(), zap.NewNop())

	_, err := svc.Search(context.Background(), "seoul weather", defaultKeasy())

	assert.ErrorIs(t, err, ErrSearchKeyMissing)
}

func TestSearchFetchesAndRedactsPages(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Contact user@example.com for forecasts.</body></html>`)
	}))
	defer page.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "seoul weather", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"webPages":{"value":[{"name":"Seoul Weather","url":%q,"snippet":"Sunny in Seoul."}]}}`, page.URL)
	}))
	defer api.Close()

	svc := NewSearchService(&config.SearchConfig{APIKey: "test-key", BaseURL: api.URL}, newPII(), zap.NewNop())

	sources, err := svc.Search(context.Background(), "seoul weather", defaultKeasy())

	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Seoul Weather", sources[0].Title)
	assert.Contains(t, sources[0].Snippet, "Sunny in Seoul.")
	assert.Contains(t, sources[0].Snippet, "[EMAIL]")
	assert.NotContains(t, sources[0].Snippet, "user@example.com")
}

func TestSearchPageFetchFailureDegradesToSnippet(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"webPages":{"value":[{"name":"Dead page","url":"http://127.0.0.1:1/unreachable","snippet":"the snippet"}]}}`)
	}))
	defer api.Close()

	svc := NewSearchService(&config.SearchConfig{APIKey: "test-key", BaseURL: api.URL}, newPII(), zap.NewNop())

	keasy := defaultKeasy()
	keasy.WebFetchTimeout = 200 * time.Millisecond

	sources, err := svc.Search(context.Background(), "anything", keasy)

	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "the snippet", sources[0].Snippet)
}

func TestSearchTruncatesSnippet(t *testing.T) {
	longBody := make([]byte, 0, 4000)
	for i := 0; i < 400; i++ {
		longBody = append(longBody, []byte("0123456789")...)
	}

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(longBody)
	}))
	defer page.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"webPages":{"value":[{"name":"Long","url":%q,"snippet":"short"}]}}`, page.URL)
	}))
	defer api.Close()

	svc := NewSearchService(&config.SearchConfig{APIKey: "test-key", BaseURL: api.URL}, newPII(), zap.NewNop())

	keasy := defaultKeasy()
	keasy.MaxWebSnippetChars = 100

	sources, err := svc.Search(context.Background(), "anything", keasy)

	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.LessOrEqual(t, len(sources[0].Snippet), 100)
}
