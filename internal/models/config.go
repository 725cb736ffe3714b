package models

import "time"

// DefaultUserID keys the single-user configuration record.
const DefaultUserID = "default"

type UserConfig struct {
	UserID           string    `json:"user_id"`
	BackendType      string    `json:"backend_type"`
	BackendPort      int       `json:"backend_port"`
	AccentColor      string    `json:"accent_color"`
	WebSearchEnabled bool      `json:"web_search_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ConfigUpdate is the enumerated set of updatable config fields. Nil fields
// are left untouched.
type ConfigUpdate struct {
	BackendType      *string
	BackendPort      *int
	AccentColor      *string
	WebSearchEnabled *bool
}

// UpdateConfigRequest is the typed partial-update payload for PUT /api/config.
type UpdateConfigRequest struct {
	UserID           string         `json:"userId,omitempty"`
	Backend          *BackendUpdate `json:"backend,omitempty"`
	Theme            *ThemeUpdate   `json:"theme,omitempty"`
	WebSearchEnabled *bool          `json:"webSearchEnabled,omitempty"`
}

type BackendUpdate struct {
	Type *string `json:"type,omitempty"`
	Port *int    `json:"port,omitempty"`
}

type ThemeUpdate struct {
	AccentColor *string `json:"accentColor,omitempty"`
}

type BackendSettings struct {
	Type string `json:"type"`
	Port int    `json:"port,omitempty"`
}

type ThemeSettings struct {
	AccentColor string `json:"accentColor"`
}

// ConfigResponse is the configuration record as exposed over the API.
type ConfigResponse struct {
	Backend          BackendSettings `json:"backend"`
	Theme            ThemeSettings   `json:"theme"`
	WebSearchEnabled bool            `json:"webSearchEnabled"`
	UserID           string          `json:"userId"`
	LastUpdated      string          `json:"lastUpdated"`
}

// NewConfigResponse projects a stored config into the API shape.
func NewConfigResponse(cfg *UserConfig) ConfigResponse {
	return ConfigResponse{
		Backend: BackendSettings{
			Type: cfg.BackendType,
			Port: cfg.BackendPort,
		},
		Theme: ThemeSettings{
			AccentColor: cfg.AccentColor,
		},
		WebSearchEnabled: cfg.WebSearchEnabled,
		UserID:           cfg.UserID,
		LastUpdated:      FormatTimestamp(cfg.UpdatedAt),
	}
}
