package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string

	// File-backed storage locations
	DataDir   string // tree.json, comments.json, views.json
	DocsDir   string // markdown document bodies
	ImagesDir string // uploaded images
	LogDir    string // server log files (prod only)

	// Admin credentials (single built-in administrator)
	AdminUsername string
	AdminPassword string

	// AI configuration
	AnthropicAPIKey string
	ChatModel       string

	Site SiteConfig

	// Debug flags
	Debug bool
}

// SiteConfig holds the public-facing site identity used by the SEO surfaces
// (sitemap, RSS, meta tags).
type SiteConfig struct {
	Name        string
	Title       string
	Description string
	Keywords    string
	Author      string
	BaseURL     string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		DataDir:   getEnv("DATA_DIR", "data"),
		DocsDir:   getEnv("DOCS_DIR", "docs"),
		ImagesDir: getEnv("IMAGES_DIR", "images"),
		LogDir:    getEnv("LOG_DIR", "logs"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ChatModel:       getEnv("CHAT_MODEL", "claude-haiku-4-5-20251001"),

		Site: SiteConfig{
			Name:        getEnv("SITE_NAME", "KnowHub"),
			Title:       getEnv("SITE_TITLE", "KnowHub - Notes and Knowledge"),
			Description: getEnv("SITE_DESCRIPTION", "A personal knowledge base of technical notes"),
			Keywords:    getEnv("SITE_KEYWORDS", "notes,knowledge base,markdown"),
			Author:      getEnv("SITE_AUTHOR", ""),
			BaseURL:     getEnv("SITE_BASE_URL", ""),
		},

		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
