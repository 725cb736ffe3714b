package search

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"bifrost-backend/internal/models"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

var (
	resultLinkRe    = regexp.MustCompile(`(?s)<a[^>]+class="result__a"[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`(?s)<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// Embedder computes vectors for a batch of texts.
type Embedder interface {
	Embeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// Service performs web searches and renders their results into prompt
// context. Search and embedding failures degrade to empty results; they are
// never fatal to a chat request.
type Service struct {
	client     *http.Client
	searchURL  string
	maxResults int
	embedder   Embedder
}

func NewService(maxResults int, embedder Embedder) *Service {
	return &Service{
		client:     &http.Client{Timeout: 30 * time.Second},
		searchURL:  duckDuckGoURL,
		maxResults: maxResults,
		embedder:   embedder,
	}
}

// Search scrapes DuckDuckGo HTML results for query. Returns an empty slice on
// any failure.
func (s *Service) Search(ctx context.Context, query string) []models.SearchResult {
	reqURL := fmt.Sprintf("%s?q=%s", s.searchURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("Web search error: %v", err)
		return []models.SearchResult{}
	}
	req.Header.Set("User-Agent", "bifrost-backend/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Web search error: %v", err)
		return []models.SearchResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Web search error: status %d", resp.StatusCode)
		return []models.SearchResult{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Web search error: %v", err)
		return []models.SearchResult{}
	}

	return parseResults(string(body), s.maxResults)
}

func parseResults(page string, max int) []models.SearchResult {
	links := resultLinkRe.FindAllStringSubmatch(page, max)
	snippets := resultSnippetRe.FindAllStringSubmatch(page, max)

	results := make([]models.SearchResult, 0, len(links))
	for i, link := range links {
		title := stripHTML(link[2])
		if title == "" {
			continue
		}

		body := ""
		if i < len(snippets) {
			body = stripHTML(snippets[i][1])
		}

		results = append(results, models.SearchResult{
			Title:   title,
			Body:    body,
			URL:     html.UnescapeString(link[1]),
			Snippet: models.Truncate(body, models.SnippetMaxLen),
		})
	}
	return results
}

func stripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagRe.ReplaceAllString(s, "")))
}

// Embed computes best-effort embeddings for texts; empty on failure.
func (s *Service) Embed(ctx context.Context, texts []string) [][]float64 {
	vectors, err := s.embedder.Embeddings(ctx, texts)
	if err != nil {
		log.Printf("Embedding error: %v", err)
		return [][]float64{}
	}
	return vectors
}

// SearchAndAugment searches the web, embeds the result snippets, and renders
// the numbered context block used to rewrite the user's prompt.
func (s *Service) SearchAndAugment(ctx context.Context, query string) *models.AugmentedSearch {
	results := s.Search(ctx, query)
	if len(results) == 0 {
		return &models.AugmentedSearch{
			Query:      query,
			Results:    []models.SearchResult{},
			Embeddings: [][]float64{},
			Context:    "",
		}
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Snippet
	}

	return &models.AugmentedSearch{
		Query:      query,
		Results:    results,
		Embeddings: s.Embed(ctx, texts),
		Context:    buildContext(results),
	}
}

func buildContext(results []models.SearchResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		parts = append(parts, fmt.Sprintf("[%d] %s\nURL: %s\nContent: %s\n", i+1, r.Title, r.URL, r.Snippet))
	}
	return strings.Join(parts, "\n")
}
