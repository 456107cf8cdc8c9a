package membership

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateCode returns a code like "A2CD-EF34-GH56-JK78": sixteen random
// characters in four hyphenated blocks. The alphabet drops the easily
// confused 0/O/1/I.
func generateCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	var b strings.Builder
	for i, c := range buf {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String(), nil
}

// GenerateCodes mints count unused activation codes for the given tier.
// A collision with an existing code is retried with a fresh value, so the
// returned set is always distinct.
func (s *Service) GenerateCodes(ctx context.Context, count int, level config.Level, days int) ([]*models.ActivationCode, error) {
	if count < config.MinCodeCount || count > config.MaxCodeCount {
		return nil, fmt.Errorf("%w: count must be between %d and %d", domain.ErrValidation, config.MinCodeCount, config.MaxCodeCount)
	}
	if days < config.MinCodeDays || days > config.MaxCodeDays {
		return nil, fmt.Errorf("%w: days must be between %d and %d", domain.ErrValidation, config.MinCodeDays, config.MaxCodeDays)
	}
	if _, err := config.ParseLevel(string(level)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	codes := make([]*models.ActivationCode, 0, count)
	for len(codes) < count {
		value, err := s.newCode()
		if err != nil {
			return nil, err
		}

		code := &models.ActivationCode{
			Code:      value,
			Level:     level,
			Days:      days,
			CreatedAt: s.now().UTC(),
		}
		if err := s.codes.Create(ctx, code); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue // collided with an existing code, mint another
			}
			return nil, err
		}
		codes = append(codes, code)
	}

	s.logger.Info("activation codes generated", "count", count, "level", level, "days", days)
	return codes, nil
}

// RedeemCode marks a code used and applies its grant to the account, all
// in one transaction. Time remaining on a current non-expired grant is
// preserved: the new expiry extends it by the code's days. The account's
// level is set to the code's level even when that is a lower tier than
// the current one.
func (s *Service) RedeemCode(ctx context.Context, code, username string) (*models.Grant, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}

	var grant *models.Grant
	err := s.txm.ExecTx(ctx, func(ctx context.Context) error {
		record, err := s.codes.GetForUpdate(ctx, code)
		if err != nil {
			return err
		}

		if record.Used {
			usedBy := ""
			if record.UsedBy != nil {
				usedBy = *record.UsedBy
			}
			return &domain.ConflictError{
				Message: fmt.Sprintf("code already redeemed by %s", usedBy),
				UsedBy:  usedBy,
			}
		}

		account, err := s.accounts.GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if err := s.codes.MarkUsed(ctx, code, username, now); err != nil {
			return err
		}

		base := now
		if account.LevelExpireAt != nil && account.LevelExpireAt.After(now) {
			base = *account.LevelExpireAt
		}
		expireAt := base.AddDate(0, 0, record.Days)

		if err := s.accounts.UpdateLevel(ctx, username, record.Level, &expireAt); err != nil {
			return err
		}

		grant = &models.Grant{
			Level:     record.Level,
			LevelName: s.levels.Get(record.Level).Name,
			Days:      record.Days,
			ExpireAt:  expireAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("activation code redeemed", "username", username, "level", grant.Level, "expire_at", grant.ExpireAt)
	return grant, nil
}

// ListCodes returns all activation codes, newest first.
func (s *Service) ListCodes(ctx context.Context) ([]*models.ActivationCode, error) {
	return s.codes.List(ctx)
}

// DeleteCode removes a code. Used codes can be deleted too; the value
// never becomes redeemable again because redemption state lives on the
// account.
func (s *Service) DeleteCode(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	return s.codes.Delete(ctx, code)
}
