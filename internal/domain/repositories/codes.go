package repositories

import (
	"context"
	"time"

	"knowhub/internal/domain/models"
)

// ActivationCodeRepository stores activation codes. Codes are immutable
// after creation except for the one-time unused -> used transition.
type ActivationCodeRepository interface {
	// Create inserts a new unused code. A duplicate code value yields
	// domain.ErrConflict so the generator can retry.
	Create(ctx context.Context, code *models.ActivationCode) error

	Get(ctx context.Context, code string) (*models.ActivationCode, error)

	// GetForUpdate locks the code row for the duration of the enclosing
	// transaction, so two concurrent redemptions cannot both observe
	// "unused".
	GetForUpdate(ctx context.Context, code string) (*models.ActivationCode, error)

	// MarkUsed records the redemption.
	MarkUsed(ctx context.Context, code, username string, usedAt time.Time) error

	// List returns all codes, newest first.
	List(ctx context.Context) ([]*models.ActivationCode, error)

	Delete(ctx context.Context, code string) error
}
