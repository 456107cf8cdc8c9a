package repositories

import (
	"context"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/domain/models"
)

// AccountRepository stores registered member accounts.
type AccountRepository interface {
	// Create inserts a new account. A duplicate username yields
	// domain.ErrConflict.
	Create(ctx context.Context, account *models.Account) error

	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// GetBySessionToken resolves the account currently holding the given
	// session token.
	GetBySessionToken(ctx context.Context, token string) (*models.Account, error)

	// UpdateSessionToken replaces the account's session token, implicitly
	// invalidating the previous one.
	UpdateSessionToken(ctx context.Context, username, token string) error

	// UpdateLevel sets the membership tier and its expiry.
	UpdateLevel(ctx context.Context, username string, level config.Level, expireAt *time.Time) error

	// List returns all accounts, newest first.
	List(ctx context.Context) ([]*models.Account, error)
}
