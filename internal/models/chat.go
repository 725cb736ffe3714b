package models

// ChatMessage is a single turn in the shape the model backends consume.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	ConversationID   string          `json:"conversationId,omitempty"`
	Query            string          `json:"query"`
	WebSearchEnabled bool            `json:"webSearchEnabled"`
	Backend          BackendSettings `json:"backend"`
	Model            string          `json:"model,omitempty"`
}

// ChatResponse is the reply from the chat endpoint.
type ChatResponse struct {
	ConversationID string      `json:"conversationId"`
	Message        ChatMessage `json:"message"`
	Done           bool        `json:"done"`
}

// BackendHealth is the result of a provider health probe.
type BackendHealth struct {
	Status   string `json:"status"` // "healthy" or "unhealthy"
	Provider string `json:"provider"`
}

type HealthResponse struct {
	Status        string        `json:"status"` // "healthy" or "degraded"
	ModelProvider string        `json:"modelProvider"`
	BackendHealth BackendHealth `json:"backendHealth"`
}

type ModelsResponse struct {
	Models   []string `json:"models"`
	Provider string   `json:"provider"`
}

// MessageResponse is a message as exposed over the API.
type MessageResponse struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
}

// ConversationResponse is a conversation with its embedded messages.
type ConversationResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Timestamp string            `json:"timestamp"`
	Preview   string            `json:"preview"`
	Messages  []MessageResponse `json:"messages"`
}

type ConversationsResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type UpdateConversationRequest struct {
	Title string `json:"title"`
}
