package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bifrost-backend/internal/models"
)

const defaultTitle = "New Conversation"
const defaultPreview = "New conversation started..."

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

func (r *ConversationRepo) Create(ctx context.Context, title string) (*models.Conversation, error) {
	if title == "" {
		title = defaultTitle
	}

	c := &models.Conversation{
		ID:      uuid.New().String(),
		Title:   title,
		Preview: defaultPreview,
	}

	query := `INSERT INTO conversations (id, title, preview)
		VALUES ($1, $2, $3) RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Title, c.Preview).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return c, nil
}

// GetByID returns (nil, nil) when the conversation does not exist.
func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	c := &models.Conversation{}
	query := `SELECT id, title, preview, created_at, updated_at FROM conversations WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Title, &c.Preview, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ConversationRepo) List(ctx context.Context) ([]*models.Conversation, error) {
	query := `SELECT id, title, preview, created_at, updated_at
		FROM conversations ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		c := &models.Conversation{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Preview, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// Delete removes a conversation; its messages go with it via the FK cascade.
func (r *ConversationRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM conversations WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ConversationRepo) UpdateTitle(ctx context.Context, id, title string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE conversations SET title = $1, updated_at = NOW() WHERE id = $2", title, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AppendMessage inserts a message and updates the owning conversation's
// preview and updated_at in one transaction. The conversation row update runs
// first so concurrent appends to the same conversation serialize on its row
// lock. Returns (nil, nil) when the conversation does not exist.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, content, role string) (*models.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	preview := models.Truncate(content, models.PreviewMaxLen)
	tag, err := tx.Exec(ctx,
		"UPDATE conversations SET preview = $1, updated_at = NOW() WHERE id = $2",
		preview, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	m := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Content:        content,
		Role:           role,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO messages (id, conversation_id, content, role)
		VALUES ($1, $2, $3, $4) RETURNING created_at`,
		m.ID, m.ConversationID, m.Content, m.Role,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit message: %w", err)
	}
	return m, nil
}

func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `SELECT id, conversation_id, content, role, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Content, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// History projects the ordered messages into the shape the model backends
// consume.
func (r *ConversationRepo) History(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	messages, err := r.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	history := make([]models.ChatMessage, len(messages))
	for i, m := range messages {
		history[i] = models.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return history, nil
}
