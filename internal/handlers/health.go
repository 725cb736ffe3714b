package handlers

import (
	"net/http"

	"bifrost-backend/internal/gateway"
	"bifrost-backend/internal/models"
)

type HealthHandler struct {
	gateway         modelGateway
	defaultProvider string
}

func NewHealthHandler(gw modelGateway, defaultProvider string) *HealthHandler {
	return &HealthHandler{gateway: gw, defaultProvider: defaultProvider}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	provider, err := gateway.ParseProvider(h.defaultProvider)
	if err != nil {
		writeJSON(w, http.StatusOK, models.HealthResponse{
			Status:        "degraded",
			ModelProvider: h.defaultProvider,
			BackendHealth: models.BackendHealth{Status: "unhealthy", Provider: h.defaultProvider},
		})
		return
	}

	backendHealth := h.gateway.CheckHealth(r.Context(), provider)

	status := "degraded"
	if backendHealth.Status == "healthy" {
		status = "healthy"
	}

	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:        status,
		ModelProvider: provider.String(),
		BackendHealth: backendHealth,
	})
}

func (h *HealthHandler) Models(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("provider")
	if tag == "" {
		tag = h.defaultProvider
	}

	provider, err := gateway.ParseProvider(tag)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, models.ModelsResponse{
		Models:   h.gateway.ListModels(r.Context(), provider),
		Provider: provider.String(),
	})
}
