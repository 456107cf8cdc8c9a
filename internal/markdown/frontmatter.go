package markdown

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFrontMatter splits a document into its front-matter metadata and body.
// Front matter is a leading block of key: value lines delimited by "---"
// lines. Documents without a well-formed block come back unchanged with nil
// metadata, as does a block that fails to parse as YAML.
func ParseFrontMatter(content string) (map[string]string, string) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return nil, content
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, content
	}

	header := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		return nil, content
	}

	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			meta[k] = ""
			continue
		}
		meta[k] = fmt.Sprint(v)
	}

	return meta, body
}
