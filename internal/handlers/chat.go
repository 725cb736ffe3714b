package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"bifrost-backend/internal/gateway"
	"bifrost-backend/internal/models"
)

const augmentedPromptTemplate = `Based on the following web search results, please answer the user's question:

%s

User's question: %s

Please provide a comprehensive answer based on the search results and your knowledge.`

type conversationStore interface {
	Create(ctx context.Context, title string) (*models.Conversation, error)
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	List(ctx context.Context) ([]*models.Conversation, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateTitle(ctx context.Context, id, title string) (bool, error)
	AppendMessage(ctx context.Context, conversationID, content, role string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
	History(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
}

type modelGateway interface {
	Generate(ctx context.Context, provider gateway.Provider, prompt string, history []models.ChatMessage, modelOverride string) (*models.ChatMessage, error)
	CheckHealth(ctx context.Context, provider gateway.Provider) models.BackendHealth
	ListModels(ctx context.Context, provider gateway.Provider) []string
}

type searchAugmenter interface {
	SearchAndAugment(ctx context.Context, query string) *models.AugmentedSearch
}

type ChatHandler struct {
	store           conversationStore
	gateway         modelGateway
	search          searchAugmenter
	defaultProvider string
}

func NewChatHandler(store conversationStore, gw modelGateway, search searchAugmenter, defaultProvider string) *ChatHandler {
	return &ChatHandler{
		store:           store,
		gateway:         gw,
		search:          search,
		defaultProvider: defaultProvider,
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Query is required", r))
		return
	}

	resp, err := h.processChat(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// processChat runs the chat sequence: health gate, model validation,
// conversation resolution, user-turn persistence, optional search
// augmentation, generation, assistant-turn persistence. Persistence committed
// before a failure is deliberately not rolled back.
func (h *ChatHandler) processChat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	providerTag := req.Backend.Type
	if providerTag == "" {
		providerTag = h.defaultProvider
	}
	provider, err := gateway.ParseProvider(providerTag)
	if err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}

	health := h.gateway.CheckHealth(ctx, provider)
	if health.Status != "healthy" {
		return nil, &models.BackendUnavailableError{Provider: provider.String()}
	}

	if req.Model != "" {
		available := h.gateway.ListModels(ctx, provider)
		found := false
		for _, name := range available {
			if name == req.Model {
				found = true
				break
			}
		}
		if !found {
			return nil, &models.ValidationError{
				Message: fmt.Sprintf("Model '%s' not available for %s", req.Model, provider),
			}
		}
	}

	var conversation *models.Conversation
	if req.ConversationID != "" {
		conversation, err = h.store.GetByID(ctx, req.ConversationID)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, &models.NotFoundError{Message: "Conversation not found"}
		}
	} else {
		conversation, err = h.store.Create(ctx, "")
		if err != nil {
			return nil, err
		}
	}

	userMessage, err := h.store.AppendMessage(ctx, conversation.ID, req.Query, models.RoleUser)
	if err != nil {
		return nil, err
	}
	if userMessage == nil {
		return nil, &models.NotFoundError{Message: "Conversation not found"}
	}

	history, err := h.store.History(ctx, conversation.ID)
	if err != nil {
		return nil, err
	}

	prompt := req.Query
	if req.WebSearchEnabled {
		augmented := h.search.SearchAndAugment(ctx, req.Query)
		if augmented.Context != "" {
			prompt = fmt.Sprintf(augmentedPromptTemplate, augmented.Context, req.Query)
		}
	}

	// The just-persisted user turn is passed as the prompt, not as history.
	reply, err := h.gateway.Generate(ctx, provider, prompt, history[:len(history)-1], req.Model)
	if err != nil {
		return nil, err
	}

	if _, err := h.store.AppendMessage(ctx, conversation.ID, reply.Content, models.RoleAssistant); err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		ConversationID: conversation.ID,
		Message:        models.ChatMessage{Role: models.RoleAssistant, Content: reply.Content},
		Done:           true,
	}, nil
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *models.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *models.BackendUnavailableError:
		writeJSON(w, http.StatusServiceUnavailable, errorResp("BACKEND_UNAVAILABLE", e.Error(), r))
	case *models.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", e.Error(), e.Fields, r))
	case *gateway.GatewayError:
		writeJSON(w, http.StatusInternalServerError, errorResp("AI_ERROR", fmt.Sprintf("Error processing chat: %v", e), r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", fmt.Sprintf("Error processing chat: %v", err), r))
	}
}
