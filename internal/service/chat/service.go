// Package chat proxies AI conversations about documents, metering usage
// against the caller's daily quota before any tokens flow.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
)

// Meter charges one usage unit against a caller's daily quota, atomically
// with the quota check.
type Meter interface {
	Consume(ctx context.Context, account *models.Account, ip string) error
}

// DocumentReader resolves a document for context building without
// counting a view.
type DocumentReader interface {
	Read(nodeID string, countView bool) (*models.Document, error)
}

// Service streams AI answers grounded in a document. One quota unit is
// consumed when the stream starts, not when it completes: a client that
// cancels midway has still spent the unit.
type Service struct {
	provider Provider
	meter    Meter
	docs     DocumentReader
	timeout  time.Duration
	logger   *slog.Logger
}

func NewService(provider Provider, meter Meter, docs DocumentReader, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		meter:    meter,
		docs:     docs,
		timeout:  config.ChatTimeout,
		logger:   logger,
	}
}

// Request is one chat turn. DocID is optional; when set, the document's
// body is embedded in the system prompt. Admin callers are unmetered.
type Request struct {
	DocID   string
	Message string
	Account *models.Account
	IP      string
	Admin   bool
}

const systemPreamble = "You are a helpful assistant for a personal knowledge base. " +
	"Answer questions concisely, in the language the user writes in."

// Chat meters the caller, then opens an upstream stream. Upstream
// failures after the stream starts arrive as in-band error events; a
// deadline hit is reported as a timeout, distinct from other failures.
// The returned channel closes after its final event.
func (s *Service) Chat(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	if req.Message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	if !req.Admin {
		if err := s.meter.Consume(ctx, req.Account, req.IP); err != nil {
			return nil, err
		}
	}

	system, err := s.buildSystem(req.DocID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	upstream, err := s.provider.Stream(ctx, CompletionRequest{
		System:  system,
		Message: req.Message,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	out := make(chan StreamEvent, 10)
	go func() {
		defer close(out)
		defer cancel()

		for event := range upstream {
			if event.Err != nil {
				out <- StreamEvent{Err: s.classify(event.Err)}
				return
			}
			out <- event
			if event.Done {
				return
			}
		}
	}()

	return out, nil
}

// classify maps a raw stream failure onto the domain error taxonomy.
func (s *Service) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("chat upstream timed out")
		return fmt.Errorf("%w: no response within %s", domain.ErrUpstreamTimeout, s.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("chat upstream failed", "error", err)
	return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
}

// buildSystem assembles the system prompt, embedding the document body
// truncated to the context character budget.
func (s *Service) buildSystem(docID string) (string, error) {
	if docID == "" {
		return systemPreamble, nil
	}

	doc, err := s.docs.Read(docID, false)
	if err != nil {
		return "", err
	}
	if doc.Empty {
		return systemPreamble, nil
	}

	content := doc.Content
	if runes := []rune(content); len(runes) > config.ChatContextBudget {
		content = string(runes[:config.ChatContextBudget])
	}

	return fmt.Sprintf("%s\n\nThe user is reading the document %q:\n\n%s", systemPreamble, doc.Name, content), nil
}
