package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/domain/repositories"
)

// PostgresAdminSessionRepository implements the AdminSessionRepository interface
type PostgresAdminSessionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAdminSessionRepository creates a new admin session repository
func NewAdminSessionRepository(cfg *RepositoryConfig) repositories.AdminSessionRepository {
	return &PostgresAdminSessionRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
		logger: cfg.Logger,
	}
}

// Create inserts a new admin session
func (r *PostgresAdminSessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (token, username, expire_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.AdminSessions)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		session.Token,
		session.Username,
		session.ExpireAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create admin session: %w", err)
	}

	return nil
}

// Get retrieves an admin session by token
func (r *PostgresAdminSessionRepository) Get(ctx context.Context, token string) (*models.AdminSession, error) {
	query := fmt.Sprintf(`
		SELECT token, username, expire_at, created_at
		FROM %s
		WHERE token = $1
	`, r.tables.AdminSessions)

	var session models.AdminSession
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.Username,
		&session.ExpireAt,
		&session.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("admin session: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get admin session: %w", err)
	}

	return &session, nil
}

// Delete removes an admin session
func (r *PostgresAdminSessionRepository) Delete(ctx context.Context, token string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE token = $1`, r.tables.AdminSessions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}

	return nil
}
