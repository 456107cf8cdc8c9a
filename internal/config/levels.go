package config

import (
	"fmt"
)

// Level is a membership tier. The set is closed: parsing an unknown name
// fails instead of silently falling back to a default tier.
type Level string

const (
	LevelGuest Level = "guest" // unauthenticated, identified by client IP
	LevelBasic Level = "basic" // registered account, default
	LevelVIP   Level = "vip"
	LevelSVIP  Level = "svip"
)

// ParseLevel validates a tier name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelGuest, LevelBasic, LevelVIP, LevelSVIP:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown membership level %q", s)
}

// LevelConfig describes one membership tier.
type LevelConfig struct {
	Name         string `json:"name"`
	DailyAILimit int    `json:"daily_ai_limit"`
	Description  string `json:"description"`
}

// Levels is the tier lookup table. It is constructed once at startup and
// passed into the membership service, so tests can substitute alternate
// quota tables.
type Levels map[Level]LevelConfig

// DefaultLevels returns the built-in tier table. Guest and basic have a
// zero AI quota: the chat feature requires a paid tier.
func DefaultLevels() Levels {
	return Levels{
		LevelGuest: {Name: "Guest", DailyAILimit: 0, Description: "Unregistered visitor"},
		LevelBasic: {Name: "Member", DailyAILimit: 0, Description: "Free registered account"},
		LevelVIP:   {Name: "VIP", DailyAILimit: 50, Description: "Paid VIP membership"},
		LevelSVIP:  {Name: "SVIP", DailyAILimit: 200, Description: "Paid SVIP membership"},
	}
}

// Get returns the configuration for a tier. Unknown tiers resolve to the
// basic configuration; ParseLevel should have rejected them long before.
func (l Levels) Get(level Level) LevelConfig {
	if cfg, ok := l[level]; ok {
		return cfg
	}
	return l[LevelBasic]
}

// Ordered lists the tiers from least to most privileged.
func (l Levels) Ordered() []Level {
	return []Level{LevelGuest, LevelBasic, LevelVIP, LevelSVIP}
}
