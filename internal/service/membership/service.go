// Package membership implements accounts, sessions, daily AI quotas and
// activation codes. Every multi-step mutation runs as a single database
// transaction so concurrent redemptions and quota checks cannot interleave.
package membership

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/domain/repositories"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Service implements membership operations. Guest callers are identified
// by client IP; admin is a separate session namespace with no account row
// and no metering.
type Service struct {
	accounts repositories.AccountRepository
	sessions repositories.AdminSessionRepository
	codes    repositories.ActivationCodeRepository
	usage    repositories.UsageRepository
	txm      repositories.TransactionManager
	levels   config.Levels
	logger   *slog.Logger

	adminUsername string
	adminPassword string

	// newCode is swapped out in tests to force collisions.
	newCode func() (string, error)

	// now is swapped out in tests to pin the clock.
	now func() time.Time
}

func NewService(
	accounts repositories.AccountRepository,
	sessions repositories.AdminSessionRepository,
	codes repositories.ActivationCodeRepository,
	usage repositories.UsageRepository,
	txm repositories.TransactionManager,
	levels config.Levels,
	adminUsername, adminPassword string,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:      accounts,
		sessions:      sessions,
		codes:         codes,
		usage:         usage,
		txm:           txm,
		levels:        levels,
		logger:        logger,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		newCode:       generateCode,
		now:           time.Now,
	}
}

// Levels exposes the tier table for display purposes.
func (s *Service) Levels() config.Levels {
	return s.levels
}

// Register creates a new basic-tier account.
func (s *Service) Register(ctx context.Context, username, password, email string) (*models.Account, error) {
	err := validation.Errors{
		"username": validation.Validate(username,
			validation.Required,
			validation.Length(config.MinUsernameLength, config.MaxUsernameLength),
			validation.Match(usernamePattern).Error("must contain only letters and digits"),
		),
		"password": validation.Validate(password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 0),
		),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Username:  username,
		Password:  string(hash),
		Email:     email,
		Level:     config.LevelBasic,
		CreatedAt: s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", "username", username)
	return account, nil
}

// Authenticate verifies the password and returns the account. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	return account, nil
}

// IssueSession generates a fresh opaque token for the account, implicitly
// invalidating any previous one. One live session per account.
func (s *Service) IssueSession(ctx context.Context, username string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if err := s.accounts.UpdateSessionToken(ctx, username, token); err != nil {
		return "", err
	}

	return token, nil
}

// AccountByToken resolves a member session token.
func (s *Service) AccountByToken(ctx context.Context, token string) (*models.Account, error) {
	account, err := s.accounts.GetBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid session", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return account, nil
}

// AdminLogin checks the configured admin credentials and opens an admin
// session.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (string, error) {
	if username != s.adminUsername || password != s.adminPassword {
		return "", fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	session := &models.AdminSession{
		Token:     token,
		Username:  username,
		ExpireAt:  s.now().UTC().Add(config.AdminSessionTTL),
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	s.logger.Info("admin logged in", "username", username)
	return token, nil
}

// VerifyAdmin checks an admin session token. Expired sessions are purged
// on sight, not just rejected.
func (s *Service) VerifyAdmin(ctx context.Context, token string) (*models.AdminSession, error) {
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid session", domain.ErrUnauthorized)
		}
		return nil, err
	}

	if s.now().After(session.ExpireAt) {
		if delErr := s.sessions.Delete(ctx, token); delErr != nil {
			s.logger.Warn("failed to purge expired admin session", "error", delErr)
		}
		return nil, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}

	return session, nil
}

// AdminLogout closes an admin session.
func (s *Service) AdminLogout(ctx context.Context, token string) error {
	err := s.sessions.Delete(ctx, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// QuotaStatus reports where an identity stands against its daily limit.
type QuotaStatus struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Used    int    `json:"used"`
	Limit   int    `json:"limit"`
	Level   string `json:"level"`
}

// CheckQuota resolves the caller's tier (guest keyed by IP when account is
// nil) and compares today's usage against the tier limit. Read-only; use
// Consume for the atomic check-and-increment.
func (s *Service) CheckQuota(ctx context.Context, account *models.Account, ip string) (*QuotaStatus, error) {
	identifier, level := s.resolveIdentity(account, ip)
	cfg := s.levels.Get(level)

	used, err := s.usage.Count(ctx, identifier, s.today())
	if err != nil {
		return nil, err
	}

	status := &QuotaStatus{
		Used:  used,
		Limit: cfg.DailyAILimit,
		Level: string(level),
	}
	if used >= cfg.DailyAILimit {
		status.Reason = denialReason(level, used, cfg.DailyAILimit)
		return status, nil
	}

	status.Allowed = true
	return status, nil
}

// Consume atomically checks the caller's quota and records one usage unit.
// The day bucket row is locked for the check, so two concurrent calls
// against a limit of N cannot both pass and push usage to N+1 twice.
func (s *Service) Consume(ctx context.Context, account *models.Account, ip string) error {
	identifier, level := s.resolveIdentity(account, ip)
	cfg := s.levels.Get(level)
	today := s.today()

	return s.txm.ExecTx(ctx, func(ctx context.Context) error {
		used, err := s.usage.CountForUpdate(ctx, identifier, today)
		if err != nil {
			return err
		}

		if used >= cfg.DailyAILimit {
			return &domain.QuotaExceededError{
				Reason: denialReason(level, used, cfg.DailyAILimit),
				Used:   used,
				Limit:  cfg.DailyAILimit,
			}
		}

		purgeBefore := s.now().UTC().AddDate(0, 0, -config.UsageRetentionDays).Format("2006-01-02")
		return s.usage.Increment(ctx, identifier, today, purgeBefore)
	})
}

// SetLevel assigns a tier directly (admin operation). A zero expiry means
// no expiry.
func (s *Service) SetLevel(ctx context.Context, username string, level config.Level, expireAt *time.Time) error {
	if _, err := config.ParseLevel(string(level)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := s.accounts.UpdateLevel(ctx, username, level, expireAt); err != nil {
		return err
	}

	s.logger.Info("level assigned", "username", username, "level", level)
	return nil
}

// AccountSummary is an account row decorated with today's usage, for the
// admin listing.
type AccountSummary struct {
	*models.Account
	UsedToday int `json:"used_today"`
}

// ListAccounts returns all accounts with their usage today.
func (s *Service) ListAccounts(ctx context.Context) ([]*AccountSummary, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	out := make([]*AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		used, err := s.usage.Count(ctx, account.Username, today)
		if err != nil {
			return nil, err
		}
		out = append(out, &AccountSummary{Account: account, UsedToday: used})
	}

	return out, nil
}

// resolveIdentity maps a caller to its quota identifier and tier. The
// account's stored level is used as-is, without checking level_expire_at;
// expiry only constrains redemption accounting.
func (s *Service) resolveIdentity(account *models.Account, ip string) (string, config.Level) {
	if account == nil {
		return "ip:" + ip, config.LevelGuest
	}
	return account.Username, account.Level
}

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func denialReason(level config.Level, used, limit int) string {
	if limit == 0 {
		if level == config.LevelGuest {
			return "AI chat requires a VIP membership; sign in and redeem an activation code"
		}
		return "AI chat requires a VIP membership; redeem an activation code to upgrade"
	}
	return fmt.Sprintf("daily AI limit reached (%d/%d); resets at midnight UTC", used, limit)
}

// generateToken returns a 64-hex-character opaque session token.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
