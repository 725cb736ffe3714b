package models

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NotFoundError identifies a missing conversation or model.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// BackendUnavailableError means the provider health gate failed.
type BackendUnavailableError struct{ Provider string }

func (e *BackendUnavailableError) Error() string {
	return e.Provider + " backend not available"
}

// ValidationError covers malformed requests and unrecognized fields.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Validation error"
}
