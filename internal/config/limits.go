package config

import "time"

const (
	// MinUsernameLength and MaxUsernameLength bound account usernames.
	// Usernames are alphanumeric only and act as the primary key.
	MinUsernameLength = 2
	MaxUsernameLength = 20

	// MinPasswordLength is the minimum account password length.
	MinPasswordLength = 6

	// MaxAuthorLength and MaxCommentLength bound comment fields.
	MaxCommentAuthorLength  = 50
	MaxCommentContentLength = 2000

	// Activation code generation bounds.
	MinCodeCount = 1
	MaxCodeCount = 100
	MinCodeDays  = 1
	MaxCodeDays  = 365

	// SearchResultLimit caps the number of returned search results.
	SearchResultLimit = 20

	// SnippetLength is the maximum snippet size in a search result.
	SnippetLength = 200

	// ChatContextBudget caps the document context embedded in the
	// AI system prompt, in characters.
	ChatContextBudget = 8000

	// ChatTimeout bounds a single upstream completion call.
	ChatTimeout = 60 * time.Second

	// ChatKeepAliveInterval is how often an idle chat stream emits an
	// SSE comment so proxies keep the connection open.
	ChatKeepAliveInterval = 15 * time.Second

	// UsageRetentionDays is how long daily AI usage buckets are kept.
	// Older buckets are purged opportunistically on increment.
	UsageRetentionDays = 7

	// AdminSessionTTL is the lifetime of an administrator session.
	AdminSessionTTL = 24 * time.Hour

	// MaxImageSize caps image uploads, in bytes.
	MaxImageSize = 5 << 20

	// MaxUploadSize caps markdown document uploads, in bytes.
	MaxUploadSize = 10 << 20
)
