// Package anthropic adapts the Anthropic Messages API to the chat
// provider interface.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"knowhub/internal/service/chat"
)

const defaultMaxTokens = 4096

// Provider implements chat.Provider against the Anthropic API.
type Provider struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewProvider(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Provider{
		client: &client,
		model:  anthropic.Model(model),
	}, nil
}

func (p *Provider) params(req chat.CompletionRequest) anthropic.MessageNewParams {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: req.System},
		}
	}
	return params
}

// Stream runs a streaming completion. Deltas are forwarded as they
// arrive; an upstream or transport error is emitted in-band and ends the
// stream.
func (p *Provider) Stream(ctx context.Context, req chat.CompletionRequest) (<-chan chat.StreamEvent, error) {
	events := make(chan chat.StreamEvent, 10)

	go func() {
		defer close(events)

		stream := p.client.Messages.NewStreaming(ctx, p.params(req))
		for stream.Next() {
			event := stream.Current()

			var text string
			switch e := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				if e.Delta.Type == "text_delta" {
					text = e.Delta.Text
				}
			default:
				continue
			}
			if text == "" {
				continue
			}

			select {
			case <-ctx.Done():
				events <- chat.StreamEvent{Err: ctx.Err()}
				return
			case events <- chat.StreamEvent{Content: text}:
			}
		}

		if err := stream.Err(); err != nil {
			events <- chat.StreamEvent{Err: fmt.Errorf("anthropic streaming: %w", err)}
			return
		}

		events <- chat.StreamEvent{Done: true}
	}()

	return events, nil
}

// Complete runs a blocking completion and concatenates the text blocks.
func (p *Provider) Complete(ctx context.Context, req chat.CompletionRequest) (string, error) {
	message, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
