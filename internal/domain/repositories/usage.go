package repositories

import "context"

// UsageRepository stores per-day AI usage counters keyed by
// (identifier, date). The identifier is a username or an "ip:"-prefixed
// client address; the date is a calendar day in YYYY-MM-DD form.
type UsageRepository interface {
	// Count returns the counter for the given day bucket, zero when the
	// bucket does not exist yet.
	Count(ctx context.Context, identifier, date string) (int, error)

	// CountForUpdate is Count with the bucket row locked for the duration
	// of the enclosing transaction, making check-then-increment atomic.
	CountForUpdate(ctx context.Context, identifier, date string) (int, error)

	// Increment upserts the day bucket and, in the same statement batch,
	// purges buckets older than purgeBefore.
	Increment(ctx context.Context, identifier, date, purgeBefore string) error
}
