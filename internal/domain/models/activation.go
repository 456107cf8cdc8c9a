package models

import (
	"time"

	"knowhub/internal/config"
)

// ActivationCode is a single-use token granting a membership tier for a
// fixed duration. Once redeemed, only the used-tracking fields change,
// exactly once.
type ActivationCode struct {
	Code      string       `json:"code" db:"code"`
	Level     config.Level `json:"level" db:"level"`
	Days      int          `json:"days" db:"days"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	Used      bool         `json:"used" db:"used"`
	UsedBy    *string      `json:"used_by,omitempty" db:"used_by"`
	UsedAt    *time.Time   `json:"used_at,omitempty" db:"used_at"`
}

// Grant describes the result of a successful code redemption.
type Grant struct {
	Level     config.Level `json:"level"`
	LevelName string       `json:"level_name"`
	Days      int          `json:"days"`
	ExpireAt  time.Time    `json:"expire_at"`
}
