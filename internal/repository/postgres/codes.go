package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/domain/repositories"
)

// PostgresActivationCodeRepository implements the ActivationCodeRepository interface
type PostgresActivationCodeRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewActivationCodeRepository creates a new activation code repository
func NewActivationCodeRepository(cfg *RepositoryConfig) repositories.ActivationCodeRepository {
	return &PostgresActivationCodeRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
		logger: cfg.Logger,
	}
}

// Create inserts a new unused code
func (r *PostgresActivationCodeRepository) Create(ctx context.Context, code *models.ActivationCode) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (code, level, days, created_at, used, used_by, used_at)
		VALUES ($1, $2, $3, $4, FALSE, NULL, NULL)
	`, r.tables.ActivationCodes)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, code.Code, code.Level, code.Days, code.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("code %s: %w", code.Code, domain.ErrConflict)
		}
		return fmt.Errorf("create activation code: %w", err)
	}

	return nil
}

// Get retrieves an activation code
func (r *PostgresActivationCodeRepository) Get(ctx context.Context, code string) (*models.ActivationCode, error) {
	return r.get(ctx, code, false)
}

// GetForUpdate retrieves an activation code with its row locked for the
// duration of the enclosing transaction.
func (r *PostgresActivationCodeRepository) GetForUpdate(ctx context.Context, code string) (*models.ActivationCode, error) {
	return r.get(ctx, code, true)
}

func (r *PostgresActivationCodeRepository) get(ctx context.Context, code string, forUpdate bool) (*models.ActivationCode, error) {
	query := fmt.Sprintf(`
		SELECT code, level, days, created_at, used, used_by, used_at
		FROM %s
		WHERE code = $1
	`, r.tables.ActivationCodes)
	if forUpdate {
		query += " FOR UPDATE"
	}

	var ac models.ActivationCode
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, code).Scan(
		&ac.Code,
		&ac.Level,
		&ac.Days,
		&ac.CreatedAt,
		&ac.Used,
		&ac.UsedBy,
		&ac.UsedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("activation code: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get activation code: %w", err)
	}

	return &ac, nil
}

// MarkUsed records the one-time unused -> used transition
func (r *PostgresActivationCodeRepository) MarkUsed(ctx context.Context, code, username string, usedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET used = TRUE, used_by = $1, used_at = $2
		WHERE code = $3 AND used = FALSE
	`, r.tables.ActivationCodes)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, username, usedAt, code)
	if err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("code %s: %w", code, domain.ErrConflict)
	}

	return nil
}

// List returns all codes, newest first
func (r *PostgresActivationCodeRepository) List(ctx context.Context) ([]*models.ActivationCode, error) {
	query := fmt.Sprintf(`
		SELECT code, level, days, created_at, used, used_by, used_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.ActivationCodes)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list activation codes: %w", err)
	}
	defer rows.Close()

	var codes []*models.ActivationCode
	for rows.Next() {
		var ac models.ActivationCode
		if err := rows.Scan(
			&ac.Code,
			&ac.Level,
			&ac.Days,
			&ac.CreatedAt,
			&ac.Used,
			&ac.UsedBy,
			&ac.UsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activation code: %w", err)
		}
		codes = append(codes, &ac)
	}

	return codes, rows.Err()
}

// Delete removes a code
func (r *PostgresActivationCodeRepository) Delete(ctx context.Context, code string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE code = $1`, r.tables.ActivationCodes)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("delete activation code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("code %s: %w", code, domain.ErrNotFound)
	}

	return nil
}
