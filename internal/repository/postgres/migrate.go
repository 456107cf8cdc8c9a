package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the relational schema if it does not exist yet: member
// accounts, admin sessions, daily AI usage counters and activation codes.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				username        TEXT PRIMARY KEY,
				password        TEXT NOT NULL,
				email           TEXT NOT NULL DEFAULT '',
				level           TEXT NOT NULL DEFAULT 'basic',
				level_expire_at TIMESTAMPTZ,
				session_token   TEXT,
				created_at      TIMESTAMPTZ NOT NULL
			)
		`, tables.Accounts),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				token      TEXT PRIMARY KEY,
				username   TEXT NOT NULL,
				expire_at  TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)
		`, tables.AdminSessions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				identifier TEXT NOT NULL,
				date       TEXT NOT NULL,
				count      INTEGER NOT NULL DEFAULT 0,
				UNIQUE (identifier, date)
			)
		`, tables.AIUsage),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				code       TEXT PRIMARY KEY,
				level      TEXT NOT NULL,
				days       INTEGER NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				used       BOOLEAN NOT NULL DEFAULT FALSE,
				used_by    TEXT,
				used_at    TIMESTAMPTZ
			)
		`, tables.ActivationCodes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_date ON %s (date)`,
			tables.AIUsage, tables.AIUsage),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_session ON %s (session_token)`,
			tables.Accounts, tables.Accounts),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	return nil
}
