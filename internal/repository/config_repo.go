package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bifrost-backend/internal/models"
)

type ConfigRepo struct {
	pool *pgxpool.Pool
}

func NewConfigRepo(pool *pgxpool.Pool) *ConfigRepo {
	return &ConfigRepo{pool: pool}
}

// GetOrCreate returns the user's configuration, lazily inserting the default
// record on first access.
func (r *ConfigRepo) GetOrCreate(ctx context.Context, userID string) (*models.UserConfig, error) {
	if userID == "" {
		userID = models.DefaultUserID
	}

	_, err := r.pool.Exec(ctx,
		"INSERT INTO user_configs (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create default config: %w", err)
	}

	return r.get(ctx, userID)
}

func (r *ConfigRepo) get(ctx context.Context, userID string) (*models.UserConfig, error) {
	cfg := &models.UserConfig{}
	query := `SELECT user_id, backend_type, backend_port, accent_color, web_search_enabled, created_at, updated_at
		FROM user_configs WHERE user_id = $1`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&cfg.UserID, &cfg.BackendType, &cfg.BackendPort, &cfg.AccentColor,
		&cfg.WebSearchEnabled, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Update merges the non-nil fields of upd into the user's configuration and
// bumps updated_at.
func (r *ConfigRepo) Update(ctx context.Context, userID string, upd models.ConfigUpdate) (*models.UserConfig, error) {
	if userID == "" {
		userID = models.DefaultUserID
	}

	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	set := "updated_at = NOW()"
	var args []interface{}
	argIdx := 1

	if upd.BackendType != nil {
		set += fmt.Sprintf(", backend_type = $%d", argIdx)
		args = append(args, *upd.BackendType)
		argIdx++
	}
	if upd.BackendPort != nil {
		set += fmt.Sprintf(", backend_port = $%d", argIdx)
		args = append(args, *upd.BackendPort)
		argIdx++
	}
	if upd.AccentColor != nil {
		set += fmt.Sprintf(", accent_color = $%d", argIdx)
		args = append(args, *upd.AccentColor)
		argIdx++
	}
	if upd.WebSearchEnabled != nil {
		set += fmt.Sprintf(", web_search_enabled = $%d", argIdx)
		args = append(args, *upd.WebSearchEnabled)
		argIdx++
	}

	query := fmt.Sprintf("UPDATE user_configs SET %s WHERE user_id = $%d", set, argIdx)
	args = append(args, userID)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to update config: %w", err)
	}

	return r.get(ctx, userID)
}
