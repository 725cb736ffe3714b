package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"bifrost-backend/internal/gateway"
	"bifrost-backend/internal/models"
)

type configStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserConfig, error)
	Update(ctx context.Context, userID string, upd models.ConfigUpdate) (*models.UserConfig, error)
}

type ConfigHandler struct {
	store configStore
}

func NewConfigHandler(store configStore) *ConfigHandler {
	return &ConfigHandler{store: store}
}

func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	cfg, err := h.store.GetOrCreate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewConfigResponse(cfg))
}

func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateConfigRequest
	dec := json.NewDecoder(r.Body)
	// Unrecognized config fields are an error, not a silent no-op.
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if strings.Contains(err.Error(), "unknown field") {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Unrecognized configuration field: "+err.Error(), r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	upd := models.ConfigUpdate{WebSearchEnabled: req.WebSearchEnabled}
	if req.Backend != nil {
		if req.Backend.Type != nil {
			if _, err := gateway.ParseProvider(*req.Backend.Type); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
				return
			}
		}
		upd.BackendType = req.Backend.Type
		upd.BackendPort = req.Backend.Port
	}
	if req.Theme != nil {
		upd.AccentColor = req.Theme.AccentColor
	}

	cfg, err := h.store.Update(r.Context(), req.UserID, upd)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  models.NewConfigResponse(cfg),
		"message": "Configuration updated successfully",
	})
}
