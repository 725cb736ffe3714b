package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bifrost-backend/internal/models"
)

type ConversationHandler struct {
	store conversationStore
}

func NewConversationHandler(store conversationStore) *ConversationHandler {
	return &ConversationHandler{store: store}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	list := make([]models.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		messages, err := h.store.ListMessages(r.Context(), conv.ID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		msgList := make([]models.MessageResponse, 0, len(messages))
		for _, m := range messages {
			msgList = append(msgList, models.MessageResponse{
				ID:        m.ID,
				Content:   m.Content,
				Role:      m.Role,
				Timestamp: models.FormatTimestamp(m.CreatedAt),
			})
		}

		list = append(list, models.ConversationResponse{
			ID:        conv.ID,
			Title:     conv.Title,
			Timestamp: models.FormatTimestamp(conv.UpdatedAt),
			Preview:   conv.Preview,
			Messages:  msgList,
		})
	}

	writeJSON(w, http.StatusOK, models.ConversationsResponse{Conversations: list})
}

func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	conv, err := h.store.Create(r.Context(), req.Title)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ConversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		Timestamp: models.FormatTimestamp(conv.CreatedAt),
		Preview:   conv.Preview,
		Messages:  []models.MessageResponse{},
	})
}

func (h *ConversationHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	ok, err := h.store.UpdateTitle(r.Context(), id, req.Title)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Conversation not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Conversation updated successfully",
	})
}

func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.store.Delete(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Conversation not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Conversation deleted successfully",
	})
}
