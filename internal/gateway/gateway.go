package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bifrost-backend/internal/config"
	"bifrost-backend/internal/models"
)

// GatewayError wraps an upstream transport or protocol failure with the
// provider it came from.
type GatewayError struct {
	Provider Provider
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Gateway normalizes the Ollama and LM Studio protocols behind one
// request/response shape.
type Gateway struct {
	ollamaURL      string
	lmStudioURL    string
	ollamaModel    string
	lmStudioModel  string
	embeddingModel string

	genClient   *http.Client
	probeClient *http.Client
	embedClient *http.Client
}

func New(cfg *config.Config) *Gateway {
	return &Gateway{
		ollamaURL:      fmt.Sprintf("http://localhost:%d", cfg.OllamaPort),
		lmStudioURL:    fmt.Sprintf("http://localhost:%d", cfg.LMStudioPort),
		ollamaModel:    cfg.OllamaModel,
		lmStudioModel:  cfg.LMStudioModel,
		embeddingModel: cfg.EmbeddingModel,
		genClient:      &http.Client{Timeout: 60 * time.Second},
		probeClient:    &http.Client{Timeout: 5 * time.Second},
		embedClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate runs one chat completion against the selected provider. The prompt
// is appended to history as the final user turn before submission.
func (g *Gateway) Generate(ctx context.Context, provider Provider, prompt string, history []models.ChatMessage, modelOverride string) (*models.ChatMessage, error) {
	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: prompt})

	switch provider {
	case Ollama:
		return g.generateOllama(ctx, messages, modelOverride)
	case LMStudio:
		return g.generateLMStudio(ctx, messages, modelOverride)
	default:
		return nil, &GatewayError{Provider: provider, Err: fmt.Errorf("unsupported provider")}
	}
}

func (g *Gateway) generateOllama(ctx context.Context, messages []models.ChatMessage, modelOverride string) (*models.ChatMessage, error) {
	model := g.ollamaModel
	if modelOverride != "" {
		model = modelOverride
	}

	payload := map[string]interface{}{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}

	resp, err := g.postJSON(ctx, g.genClient, g.ollamaURL+"/api/chat", payload, nil)
	if err != nil {
		return nil, &GatewayError{Provider: Ollama, Err: err}
	}
	defer resp.Body.Close()

	// Older Ollama versions have no /api/chat; rebuild the conversation as a
	// single completion prompt against /api/generate.
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return g.generateOllamaLegacy(ctx, model, messages)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Provider: Ollama, Err: fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)}
	}

	var chatResp struct {
		Message models.ChatMessage `json:"message"`
		Done    bool               `json:"done"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, &GatewayError{Provider: Ollama, Err: fmt.Errorf("failed to decode chat response: %w", err)}
	}

	return &chatResp.Message, nil
}

func (g *Gateway) generateOllamaLegacy(ctx context.Context, model string, messages []models.ChatMessage) (*models.ChatMessage, error) {
	payload := map[string]interface{}{
		"model":  model,
		"prompt": buildPromptFromMessages(messages),
		"stream": false,
	}

	resp, err := g.postJSON(ctx, g.genClient, g.ollamaURL+"/api/generate", payload, nil)
	if err != nil {
		return nil, &GatewayError{Provider: Ollama, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Provider: Ollama, Err: fmt.Errorf("generate endpoint returned status %d", resp.StatusCode)}
	}

	var genResp struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, &GatewayError{Provider: Ollama, Err: fmt.Errorf("failed to decode generate response: %w", err)}
	}

	return &models.ChatMessage{Role: models.RoleAssistant, Content: genResp.Response}, nil
}

func (g *Gateway) generateLMStudio(ctx context.Context, messages []models.ChatMessage, modelOverride string) (*models.ChatMessage, error) {
	model := g.lmStudioModel
	if modelOverride != "" {
		model = modelOverride
	}

	payload := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": 0.7,
		"max_tokens":  2000,
		"stream":      false,
	}

	headers := map[string]string{"Authorization": "Bearer lm-studio"}
	resp, err := g.postJSON(ctx, g.genClient, g.lmStudioURL+"/v1/chat/completions", payload, headers)
	if err != nil {
		return nil, &GatewayError{Provider: LMStudio, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Provider: LMStudio, Err: fmt.Errorf("completions endpoint returned status %d", resp.StatusCode)}
	}

	var completion struct {
		Choices []struct {
			Message models.ChatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, &GatewayError{Provider: LMStudio, Err: fmt.Errorf("failed to decode completions response: %w", err)}
	}
	if len(completion.Choices) == 0 {
		return nil, &GatewayError{Provider: LMStudio, Err: fmt.Errorf("completions response contained no choices")}
	}

	return &completion.Choices[0].Message, nil
}

// CheckHealth probes the provider's model listing with a short timeout. It
// never returns an error; any failure maps to "unhealthy".
func (g *Gateway) CheckHealth(ctx context.Context, provider Provider) models.BackendHealth {
	resp, err := g.getJSON(ctx, g.probeClient, g.probeURL(provider))
	if err != nil {
		return models.BackendHealth{Status: "unhealthy", Provider: provider.String()}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.BackendHealth{Status: "unhealthy", Provider: provider.String()}
	}
	return models.BackendHealth{Status: "healthy", Provider: provider.String()}
}

// ListModels returns the provider's installed model names, or an empty slice
// on any failure.
func (g *Gateway) ListModels(ctx context.Context, provider Provider) []string {
	resp, err := g.getJSON(ctx, g.probeClient, g.probeURL(provider))
	if err != nil {
		return []string{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return []string{}
	}

	switch provider {
	case Ollama:
		var tags struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
			return []string{}
		}
		names := make([]string, 0, len(tags.Models))
		for _, m := range tags.Models {
			names = append(names, m.Name)
		}
		return names
	case LMStudio:
		var listing struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
			return []string{}
		}
		names := make([]string, 0, len(listing.Data))
		for _, m := range listing.Data {
			names = append(names, m.ID)
		}
		return names
	default:
		return []string{}
	}
}

// Embeddings computes vectors for texts via Ollama's embedding endpoint.
func (g *Gateway) Embeddings(ctx context.Context, texts []string) ([][]float64, error) {
	payload := map[string]interface{}{
		"model":  g.embeddingModel,
		"prompt": texts,
	}

	resp, err := g.postJSON(ctx, g.embedClient, g.ollamaURL+"/api/embeddings", payload, nil)
	if err != nil {
		return nil, &GatewayError{Provider: Ollama, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{Provider: Ollama, Err: fmt.Errorf("embeddings endpoint returned status %d", resp.StatusCode)}
	}

	var embResp struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, &GatewayError{Provider: Ollama, Err: fmt.Errorf("failed to decode embeddings response: %w", err)}
	}

	return embResp.Embeddings, nil
}

func (g *Gateway) probeURL(provider Provider) string {
	if provider == LMStudio {
		return g.lmStudioURL + "/v1/models"
	}
	return g.ollamaURL + "/api/tags"
}

func (g *Gateway) postJSON(ctx context.Context, client *http.Client, url string, payload interface{}, headers map[string]string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return client.Do(req)
}

func (g *Gateway) getJSON(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// buildPromptFromMessages flattens a chat history into the alternating
// "Role: content" form the legacy completion endpoint expects.
func buildPromptFromMessages(messages []models.ChatMessage) string {
	parts := make([]string, 0, len(messages)+1)
	for _, msg := range messages {
		role := msg.Role
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		parts = append(parts, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	parts = append(parts, "Assistant:")
	return strings.Join(parts, "\n\n")
}
