package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"knowhub/internal/domain/repositories"
)

// PostgresUsageRepository implements the UsageRepository interface
type PostgresUsageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUsageRepository creates a new AI usage repository
func NewUsageRepository(cfg *RepositoryConfig) repositories.UsageRepository {
	return &PostgresUsageRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
		logger: cfg.Logger,
	}
}

// Count returns the day-bucket counter, zero when absent
func (r *PostgresUsageRepository) Count(ctx context.Context, identifier, date string) (int, error) {
	return r.count(ctx, identifier, date, false)
}

// CountForUpdate returns the day-bucket counter with the row locked, so a
// following Increment in the same transaction is race-free.
func (r *PostgresUsageRepository) CountForUpdate(ctx context.Context, identifier, date string) (int, error) {
	return r.count(ctx, identifier, date, true)
}

func (r *PostgresUsageRepository) count(ctx context.Context, identifier, date string, forUpdate bool) (int, error) {
	query := fmt.Sprintf(`SELECT count FROM %s WHERE identifier = $1 AND date = $2`, r.tables.AIUsage)
	if forUpdate {
		query += " FOR UPDATE"
	}

	var count int
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, identifier, date).Scan(&count)
	if err != nil {
		if IsPgNoRowsError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count usage: %w", err)
	}

	return count, nil
}

// Increment upserts the day bucket and purges buckets older than
// purgeBefore in the same operation. There is no separate background sweep.
func (r *PostgresUsageRepository) Increment(ctx context.Context, identifier, date, purgeBefore string) error {
	executor := GetExecutor(ctx, r.pool)

	upsert := fmt.Sprintf(`
		INSERT INTO %s (identifier, date, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (identifier, date) DO UPDATE SET count = %s.count + 1
	`, r.tables.AIUsage, r.tables.AIUsage)

	if _, err := executor.Exec(ctx, upsert, identifier, date); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}

	purge := fmt.Sprintf(`DELETE FROM %s WHERE date < $1`, r.tables.AIUsage)
	if _, err := executor.Exec(ctx, purge, purgeBefore); err != nil {
		return fmt.Errorf("purge stale usage: %w", err)
	}

	return nil
}
