package chat

import "context"

// StreamEvent is one unit of a streamed completion. Exactly one of the
// fields is meaningful: a content delta, an in-band error, or the
// end-of-stream marker.
type StreamEvent struct {
	Content string
	Err     error
	Done    bool
}

// CompletionRequest is a single-turn request to the upstream model.
type CompletionRequest struct {
	System    string
	Message   string
	MaxTokens int
}

// Provider abstracts the upstream LLM API. Stream errors arrive as
// in-band events on the channel, never as panics; the channel is always
// closed after the Done or error event.
type Provider interface {
	// Stream emits content deltas as they arrive. Cancelling ctx aborts
	// the upstream request, not just local consumption.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error)

	// Complete returns the full response text in one call.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
