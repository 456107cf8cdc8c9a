package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/domain/repositories"
)

// PostgresAccountRepository implements the AccountRepository interface
type PostgresAccountRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(cfg *RepositoryConfig) repositories.AccountRepository {
	return &PostgresAccountRepository{
		pool:   cfg.Pool,
		tables: cfg.Tables,
		logger: cfg.Logger,
	}
}

// Create inserts a new account
func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, password, email, level, level_expire_at, session_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		account.Username,
		account.Password,
		account.Email,
		account.Level,
		account.LevelExpireAt,
		account.SessionToken,
		account.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message: fmt.Sprintf("username '%s' already exists", account.Username),
			}
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// GetByUsername retrieves an account by username
func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT username, password, email, level, level_expire_at, session_token, created_at
		FROM %s
		WHERE username = $1
	`, r.tables.Accounts)

	return r.scanOne(ctx, query, username)
}

// GetBySessionToken resolves the account holding the given session token
func (r *PostgresAccountRepository) GetBySessionToken(ctx context.Context, token string) (*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT username, password, email, level, level_expire_at, session_token, created_at
		FROM %s
		WHERE session_token = $1
	`, r.tables.Accounts)

	return r.scanOne(ctx, query, token)
}

func (r *PostgresAccountRepository) scanOne(ctx context.Context, query string, arg interface{}) (*models.Account, error) {
	var account models.Account
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, arg).Scan(
		&account.Username,
		&account.Password,
		&account.Email,
		&account.Level,
		&account.LevelExpireAt,
		&account.SessionToken,
		&account.CreatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("account: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

// UpdateSessionToken replaces the account's session token. The previous
// token becomes invalid implicitly.
func (r *PostgresAccountRepository) UpdateSessionToken(ctx context.Context, username, token string) error {
	query := fmt.Sprintf(`UPDATE %s SET session_token = $1 WHERE username = $2`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, token, username)
	if err != nil {
		return fmt.Errorf("update session token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", username, domain.ErrNotFound)
	}

	return nil
}

// UpdateLevel sets the membership tier and expiry
func (r *PostgresAccountRepository) UpdateLevel(ctx context.Context, username string, level config.Level, expireAt *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET level = $1, level_expire_at = $2 WHERE username = $3`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, level, expireAt, username)
	if err != nil {
		return fmt.Errorf("update level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", username, domain.ErrNotFound)
	}

	return nil
}

// List returns all accounts, newest first
func (r *PostgresAccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := fmt.Sprintf(`
		SELECT username, password, email, level, level_expire_at, session_token, created_at
		FROM %s
		ORDER BY created_at DESC
	`, r.tables.Accounts)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.Username,
			&account.Password,
			&account.Email,
			&account.Level,
			&account.LevelExpireAt,
			&account.SessionToken,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}
