package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"knowhub/internal/domain"
	"knowhub/internal/domain/models"
)

const (
	minOutlineDepth = 1
	maxOutlineDepth = 3
)

// Model output may wrap the JSON in prose or a code fence; take the
// outermost array.
var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

const outlinePromptFormat = "Design a table of contents for a knowledge base about %q. " +
	"Respond with only a JSON array, no prose, nested at most %d levels deep, " +
	`where every entry has the shape {"name": "...", "children": [...]}. ` +
	"Use the same language as the topic."

// GenerateOutline asks the model for a document tree outline on a topic.
// Admin-only at the HTTP layer, so it is not metered here.
func (s *Service) GenerateOutline(ctx context.Context, topic string, depth int) ([]models.OutlineNode, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrValidation)
	}
	if depth < minOutlineDepth || depth > maxOutlineDepth {
		return nil, fmt.Errorf("%w: depth must be between %d and %d", domain.ErrValidation, minOutlineDepth, maxOutlineDepth)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Complete(ctx, CompletionRequest{
		System:  "You design document hierarchies. Output valid JSON only.",
		Message: fmt.Sprintf(outlinePromptFormat, topic, depth),
	})
	if err != nil {
		return nil, s.classify(err)
	}

	blob := jsonArrayPattern.FindString(raw)
	if blob == "" {
		return nil, fmt.Errorf("%w: model response contains no JSON array", domain.ErrUpstream)
	}

	var outline []models.OutlineNode
	if err := json.Unmarshal([]byte(blob), &outline); err != nil {
		return nil, fmt.Errorf("%w: malformed outline JSON: %v", domain.ErrUpstream, err)
	}
	if len(outline) == 0 {
		return nil, fmt.Errorf("%w: model produced an empty outline", domain.ErrUpstream)
	}

	s.logger.Info("outline generated", "topic", topic, "depth", depth, "roots", len(outline))
	return outline, nil
}
