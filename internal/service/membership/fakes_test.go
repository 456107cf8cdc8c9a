package membership

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
	"knowhub/internal/domain/repositories"
)

// In-memory repository fakes. They honor the same error contracts as the
// postgres implementations; the fake transaction manager just runs the
// function, since the fakes mutate maps directly.

type fakeAccounts struct {
	byName map[string]*models.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byName: map[string]*models.Account{}}
}

func (f *fakeAccounts) Create(_ context.Context, account *models.Account) error {
	if _, ok := f.byName[account.Username]; ok {
		return &domain.ConflictError{Message: "username already exists"}
	}
	cp := *account
	f.byName[account.Username] = &cp
	return nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	account, ok := f.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (f *fakeAccounts) GetBySessionToken(_ context.Context, token string) (*models.Account, error) {
	for _, account := range f.byName {
		if account.SessionToken != nil && *account.SessionToken == token {
			cp := *account
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAccounts) UpdateSessionToken(_ context.Context, username, token string) error {
	account, ok := f.byName[username]
	if !ok {
		return domain.ErrNotFound
	}
	account.SessionToken = &token
	return nil
}

func (f *fakeAccounts) UpdateLevel(_ context.Context, username string, level config.Level, expireAt *time.Time) error {
	account, ok := f.byName[username]
	if !ok {
		return domain.ErrNotFound
	}
	account.Level = level
	account.LevelExpireAt = expireAt
	return nil
}

func (f *fakeAccounts) List(_ context.Context) ([]*models.Account, error) {
	out := make([]*models.Account, 0, len(f.byName))
	for _, account := range f.byName {
		cp := *account
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeAdminSessions struct {
	byToken map[string]*models.AdminSession
}

func newFakeAdminSessions() *fakeAdminSessions {
	return &fakeAdminSessions{byToken: map[string]*models.AdminSession{}}
}

func (f *fakeAdminSessions) Create(_ context.Context, session *models.AdminSession) error {
	cp := *session
	f.byToken[session.Token] = &cp
	return nil
}

func (f *fakeAdminSessions) Get(_ context.Context, token string) (*models.AdminSession, error) {
	session, ok := f.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (f *fakeAdminSessions) Delete(_ context.Context, token string) error {
	if _, ok := f.byToken[token]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byToken, token)
	return nil
}

type fakeCodes struct {
	byCode map[string]*models.ActivationCode
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{byCode: map[string]*models.ActivationCode{}}
}

func (f *fakeCodes) Create(_ context.Context, code *models.ActivationCode) error {
	if _, ok := f.byCode[code.Code]; ok {
		return domain.ErrConflict
	}
	cp := *code
	f.byCode[code.Code] = &cp
	return nil
}

func (f *fakeCodes) Get(_ context.Context, code string) (*models.ActivationCode, error) {
	record, ok := f.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *record
	return &cp, nil
}

func (f *fakeCodes) GetForUpdate(ctx context.Context, code string) (*models.ActivationCode, error) {
	return f.Get(ctx, code)
}

func (f *fakeCodes) MarkUsed(_ context.Context, code, username string, usedAt time.Time) error {
	record, ok := f.byCode[code]
	if !ok || record.Used {
		return domain.ErrConflict
	}
	record.Used = true
	record.UsedBy = &username
	record.UsedAt = &usedAt
	return nil
}

func (f *fakeCodes) List(_ context.Context) ([]*models.ActivationCode, error) {
	out := make([]*models.ActivationCode, 0, len(f.byCode))
	for _, record := range f.byCode {
		cp := *record
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCodes) Delete(_ context.Context, code string) error {
	if _, ok := f.byCode[code]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byCode, code)
	return nil
}

type fakeUsage struct {
	counts map[string]int // key: identifier + "|" + date
}

func newFakeUsage() *fakeUsage {
	return &fakeUsage{counts: map[string]int{}}
}

func usageKey(identifier, date string) string {
	return fmt.Sprintf("%s|%s", identifier, date)
}

func (f *fakeUsage) Count(_ context.Context, identifier, date string) (int, error) {
	return f.counts[usageKey(identifier, date)], nil
}

func (f *fakeUsage) CountForUpdate(ctx context.Context, identifier, date string) (int, error) {
	return f.Count(ctx, identifier, date)
}

func (f *fakeUsage) Increment(_ context.Context, identifier, date, purgeBefore string) error {
	f.counts[usageKey(identifier, date)]++
	for key := range f.counts {
		if day := strings.SplitN(key, "|", 2)[1]; day < purgeBefore {
			delete(f.counts, key)
		}
	}
	return nil
}

type fakeTxm struct{}

func (fakeTxm) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
