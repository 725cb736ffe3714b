package models

// SnippetMaxLen is the rune budget for a search result snippet.
const SnippetMaxLen = 200

type SearchResult struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	URL     string `json:"href"`
	Snippet string `json:"snippet"`
}

// AugmentedSearch bundles search results with their embeddings and the
// rendered context block for prompt augmentation.
type AugmentedSearch struct {
	Query      string         `json:"query"`
	Results    []SearchResult `json:"results"`
	Embeddings [][]float64    `json:"embeddings"`
	Context    string         `json:"context"`
}
