// Package markdown turns stored document bodies into sanitized HTML and
// understands the optional front-matter header that prefixes them.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML. Output is sanitized so stored
// documents (and uploads from members) cannot inject script into readers.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts Markdown body text to sanitized HTML.
func (r *Renderer) Render(body string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return r.policy.Sanitize(buf.String()), nil
}
