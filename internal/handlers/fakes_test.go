package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bifrost-backend/internal/gateway"
	"bifrost-backend/internal/models"
)

// memStore implements the persistence contract in memory for handler tests:
// preview truncation, ordering, cascade delete and monotonic timestamps all
// behave as documented for the real repository.
type memStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	messages      map[string][]*models.Message
	clock         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]*models.Message),
		clock:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Create(ctx context.Context, title string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if title == "" {
		title = "New Conversation"
	}
	now := s.tick()
	c := &models.Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		Preview:   "New conversation started...",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[c.ID] = c
	return c, nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *memStore) List(ctx context.Context) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*models.Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		copied := *c
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (s *memStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return false, nil
	}
	delete(s.conversations, id)
	delete(s.messages, id)
	return true, nil
}

func (s *memStore) UpdateTitle(ctx context.Context, id, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return false, nil
	}
	c.Title = title
	c.UpdatedAt = s.tick()
	return true, nil
}

func (s *memStore) AppendMessage(ctx context.Context, conversationID, content, role string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return nil, nil
	}

	now := s.tick()
	m := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Content:        content,
		Role:           role,
		CreatedAt:      now,
	}
	s.messages[conversationID] = append(s.messages[conversationID], m)

	c.Preview = models.Truncate(content, models.PreviewMaxLen)
	c.UpdatedAt = now

	copied := *m
	return &copied, nil
}

func (s *memStore) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*models.Message, 0, len(s.messages[conversationID]))
	for _, m := range s.messages[conversationID] {
		copied := *m
		list = append(list, &copied)
	}
	return list, nil
}

func (s *memStore) History(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]models.ChatMessage, 0, len(s.messages[conversationID]))
	for _, m := range s.messages[conversationID] {
		history = append(history, models.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return history, nil
}

// fakeGateway records calls and returns canned results.
type fakeGateway struct {
	healthy       bool
	models        []string
	reply         models.ChatMessage
	generateErr   error
	generateCalls int
	lastProvider  gateway.Provider
	lastPrompt    string
	lastHistory   []models.ChatMessage
	lastOverride  string
}

func (g *fakeGateway) Generate(ctx context.Context, provider gateway.Provider, prompt string, history []models.ChatMessage, modelOverride string) (*models.ChatMessage, error) {
	g.generateCalls++
	g.lastProvider = provider
	g.lastPrompt = prompt
	g.lastHistory = history
	g.lastOverride = modelOverride
	if g.generateErr != nil {
		return nil, g.generateErr
	}
	reply := g.reply
	return &reply, nil
}

func (g *fakeGateway) CheckHealth(ctx context.Context, provider gateway.Provider) models.BackendHealth {
	status := "unhealthy"
	if g.healthy {
		status = "healthy"
	}
	return models.BackendHealth{Status: status, Provider: provider.String()}
}

func (g *fakeGateway) ListModels(ctx context.Context, provider gateway.Provider) []string {
	return g.models
}

// fakeSearch returns a fixed augmentation result.
type fakeSearch struct {
	context string
	calls   int
}

func (s *fakeSearch) SearchAndAugment(ctx context.Context, query string) *models.AugmentedSearch {
	s.calls++
	return &models.AugmentedSearch{Query: query, Context: s.context}
}

// memConfigStore mirrors the lazy-default config repository contract.
type memConfigStore struct {
	mu      sync.Mutex
	configs map[string]*models.UserConfig
	clock   time.Time
}

func newMemConfigStore() *memConfigStore {
	return &memConfigStore{
		configs: make(map[string]*models.UserConfig),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memConfigStore) GetOrCreate(ctx context.Context, userID string) (*models.UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(userID), nil
}

func (s *memConfigStore) getOrCreateLocked(userID string) *models.UserConfig {
	if userID == "" {
		userID = models.DefaultUserID
	}
	if cfg, ok := s.configs[userID]; ok {
		copied := *cfg
		return &copied
	}
	s.clock = s.clock.Add(time.Second)
	cfg := &models.UserConfig{
		UserID:           userID,
		BackendType:      "ollama",
		BackendPort:      11434,
		AccentColor:      "emerald",
		WebSearchEnabled: false,
		CreatedAt:        s.clock,
		UpdatedAt:        s.clock,
	}
	s.configs[userID] = cfg
	copied := *cfg
	return &copied
}

func (s *memConfigStore) Update(ctx context.Context, userID string, upd models.ConfigUpdate) (*models.UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" {
		userID = models.DefaultUserID
	}
	s.getOrCreateLocked(userID)
	cfg := s.configs[userID]

	if upd.BackendType != nil {
		cfg.BackendType = *upd.BackendType
	}
	if upd.BackendPort != nil {
		cfg.BackendPort = *upd.BackendPort
	}
	if upd.AccentColor != nil {
		cfg.AccentColor = *upd.AccentColor
	}
	if upd.WebSearchEnabled != nil {
		cfg.WebSearchEnabled = *upd.WebSearchEnabled
	}
	s.clock = s.clock.Add(time.Second)
	cfg.UpdatedAt = s.clock

	copied := *cfg
	return &copied, nil
}

var _ conversationStore = (*memStore)(nil)
var _ modelGateway = (*fakeGateway)(nil)
var _ searchAugmenter = (*fakeSearch)(nil)
var _ configStore = (*memConfigStore)(nil)
