package models

import (
	"time"

	"knowhub/internal/config"
)

// Account is a registered member. The username is the primary key.
type Account struct {
	Username      string       `json:"username" db:"username"`
	Password      string       `json:"-" db:"password"` // one-way hash, never serialized
	Email         string       `json:"email" db:"email"`
	Level         config.Level `json:"level" db:"level"`
	LevelExpireAt *time.Time   `json:"level_expire_at,omitempty" db:"level_expire_at"`
	SessionToken  *string      `json:"-" db:"session_token"` // at most one live token
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// AdminSession is an administrator session. Admin sessions live in their
// own namespace, distinct from account session tokens, and grant an
// unmetered role.
type AdminSession struct {
	Token     string    `json:"-" db:"token"`
	Username  string    `json:"username" db:"username"`
	ExpireAt  time.Time `json:"expire_at" db:"expire_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
