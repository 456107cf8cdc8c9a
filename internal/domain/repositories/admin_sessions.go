package repositories

import (
	"context"

	"knowhub/internal/domain/models"
)

// AdminSessionRepository stores administrator sessions.
type AdminSessionRepository interface {
	Create(ctx context.Context, session *models.AdminSession) error
	Get(ctx context.Context, token string) (*models.AdminSession, error)
	Delete(ctx context.Context, token string) error
}
