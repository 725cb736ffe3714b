package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bifrost-backend/internal/models"
)

type stubEmbedder struct {
	vectors [][]float64
	err     error
	texts   []string
}

func (e *stubEmbedder) Embeddings(ctx context.Context, texts []string) ([][]float64, error) {
	e.texts = texts
	return e.vectors, e.err
}

func resultPage(entries ...[2]string) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, `<div class="result">
			<a rel="nofollow" class="result__a" href="https://example.com/%s">%s</a>
			<a class="result__snippet" href="#">%s</a>
		</div>`, e[0], e[0], e[1])
	}
	return b.String()
}

func newTestService(url string, embedder Embedder) *Service {
	return &Service{
		client:     &http.Client{Timeout: 2 * time.Second},
		searchURL:  url,
		maxResults: 10,
		embedder:   embedder,
	}
}

func TestSearch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go testing" {
			t.Errorf("Expected query 'go testing', got %q", got)
		}
		fmt.Fprint(w, resultPage([2]string{"first", "Some <b>bold</b> body &amp; more"}))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, &stubEmbedder{})
	results := s.Search(context.Background(), "go testing")

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "first" {
		t.Errorf("Expected title 'first', got %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/first" {
		t.Errorf("Unexpected URL %q", results[0].URL)
	}
	if results[0].Body != "Some bold body & more" {
		t.Errorf("Expected stripped body, got %q", results[0].Body)
	}
}

func TestSearch_SnippetTruncation(t *testing.T) {
	longBody := strings.Repeat("x", 250)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultPage([2]string{"long", longBody}))
	}))
	defer srv.Close()

	s := newTestService(srv.URL, &stubEmbedder{})
	results := s.Search(context.Background(), "anything")

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	want := strings.Repeat("x", models.SnippetMaxLen) + "..."
	if results[0].Snippet != want {
		t.Errorf("Expected truncated snippet with marker, got %d runes", len([]rune(results[0].Snippet)))
	}
}

func TestSearch_FailureYieldsEmpty(t *testing.T) {
	s := newTestService("http://127.0.0.1:1", &stubEmbedder{})
	results := s.Search(context.Background(), "anything")
	if len(results) != 0 {
		t.Errorf("Expected empty results on transport failure, got %d", len(results))
	}
}

func TestSearchAndAugment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultPage(
			[2]string{"alpha", "first body"},
			[2]string{"beta", "second body"},
		))
	}))
	defer srv.Close()

	embedder := &stubEmbedder{vectors: [][]float64{{0.1}, {0.2}}}
	s := newTestService(srv.URL, embedder)

	aug := s.SearchAndAugment(context.Background(), "what is go")

	if aug.Query != "what is go" {
		t.Errorf("Expected query preserved, got %q", aug.Query)
	}
	if len(aug.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(aug.Results))
	}
	if len(aug.Embeddings) != 2 {
		t.Errorf("Expected 2 embeddings, got %d", len(aug.Embeddings))
	}
	if len(embedder.texts) != 2 || embedder.texts[0] != "first body" {
		t.Errorf("Expected snippets passed to embedder, got %v", embedder.texts)
	}

	if !strings.Contains(aug.Context, "[1] alpha") || !strings.Contains(aug.Context, "[2] beta") {
		t.Errorf("Expected numbered context entries, got %q", aug.Context)
	}
	if !strings.Contains(aug.Context, "URL: https://example.com/alpha") {
		t.Errorf("Expected URL line in context, got %q", aug.Context)
	}
	if !strings.Contains(aug.Context, "Content: first body") {
		t.Errorf("Expected snippet line in context, got %q", aug.Context)
	}
}

func TestSearchAndAugment_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>no results</body></html>")
	}))
	defer srv.Close()

	s := newTestService(srv.URL, &stubEmbedder{})
	aug := s.SearchAndAugment(context.Background(), "anything")

	if aug.Context != "" {
		t.Errorf("Expected empty context, got %q", aug.Context)
	}
	if len(aug.Results) != 0 || len(aug.Embeddings) != 0 {
		t.Errorf("Expected empty results and embeddings, got %v / %v", aug.Results, aug.Embeddings)
	}
}

func TestEmbed_FailureYieldsEmpty(t *testing.T) {
	embedder := &stubEmbedder{err: fmt.Errorf("backend down")}
	s := newTestService("http://127.0.0.1:1", embedder)

	vectors := s.Embed(context.Background(), []string{"a"})
	if len(vectors) != 0 {
		t.Errorf("Expected empty vectors on embedder failure, got %v", vectors)
	}
}
