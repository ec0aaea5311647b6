package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"keasy-ai/internal/models"
	"keasy-ai/pkg/config"

	"go.uber.org/zap"
)

// ErrSearchKeyMissing is returned when the web-search gateway is invoked
// without a configured API key.
var ErrSearchKeyMissing = errors.New("SEARCH_API_KEY is not configured")

const fetchUserAgent = "KeasyAI/1.0 (+https://keasy.app)"

// SearchService queries the external web-search API and fetches result
// pages. It is only reachable when the web fallback flag is on.
type SearchService struct {
	config     *config.SearchConfig
	httpClient *http.Client
	pii        *PIIService
	logger     *zap.Logger
}

func NewSearchService(cfg *config.SearchConfig, pii *PIIService, logger *zap.Logger) *SearchService {
	return &SearchService{
		config:     cfg,
		httpClient: &http.Client{},
		pii:        pii,
		logger:     logger,
	}
}

type searchAPIResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search runs the web query and enriches each result with stripped page
// text. The search call itself is fatal on failure; individual page fetches
// degrade to the bare snippet.
func (s *SearchService) Search(ctx context.Context, query string, keasy config.KeasyConfig) ([]models.WebSource, error) {
	if s.config.APIKey == "" {
		return nil, ErrSearchKeyMissing
	}

	endpoint := s.config.BaseURL +
		"?q=" + url.QueryEscape(query) +
		"&count=" + strconv.Itoa(keasy.MaxWebResults) +
		"&safeSearch=Moderate"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}

	var parsed searchAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var sources []models.WebSource
	for _, v := range parsed.WebPages.Value {
		if len(sources) >= keasy.MaxWebResults {
			break
		}

		pageText := s.fetchPageText(ctx, v.URL, keasy)

		combined := v.Snippet
		if pageText != "" {
			combined += " " + pageText
		}
		combined = truncateUTF8(combined, keasy.MaxWebSnippetChars)

		sources = append(sources, models.WebSource{
			Title:   v.Name,
			URL:     v.URL,
			Snippet: s.pii.RedactPII(combined).Text,
		})
	}

	s.logger.Info("Web search completed",
		zap.Int("results", len(sources)),
	)
	return sources, nil
}

// fetchPageText grabs a result page under a hard timeout and strips it to
// plain text. Any failure degrades to an empty snippet.
func (s *SearchService) fetchPageText(ctx context.Context, pageURL string, keasy config.KeasyConfig) string {
	fetchCtx, cancel := context.WithTimeout(ctx, keasy.WebFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("Page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return ""
	}
	return StripHTML(string(body))
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style\b.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// StripHTML reduces an HTML document to whitespace-normalized visible text.
func StripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
