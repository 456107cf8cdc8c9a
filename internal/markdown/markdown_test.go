package markdown

import (
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMeta map[string]string
		wantBody string
	}{
		{
			name:     "simple header",
			content:  "---\ntitle: Getting Started\nauthor: alice\n---\n# Hello\n",
			wantMeta: map[string]string{"title": "Getting Started", "author": "alice"},
			wantBody: "# Hello\n",
		},
		{
			name:     "no front matter",
			content:  "# Just a document\n",
			wantMeta: nil,
			wantBody: "# Just a document\n",
		},
		{
			name:     "unterminated block",
			content:  "---\ntitle: Broken\n# Body\n",
			wantMeta: nil,
			wantBody: "---\ntitle: Broken\n# Body\n",
		},
		{
			name:     "non-string values stringified",
			content:  "---\nversion: 2\ndraft: true\n---\nbody",
			wantMeta: map[string]string{"version": "2", "draft": "true"},
			wantBody: "body",
		},
		{
			name:     "dashes later in body are not a delimiter",
			content:  "intro\n---\nnot metadata\n",
			wantMeta: nil,
			wantBody: "intro\n---\nnot metadata\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := ParseFrontMatter(tt.content)
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if len(meta) != len(tt.wantMeta) {
				t.Fatalf("metadata = %v, want %v", meta, tt.wantMeta)
			}
			for k, want := range tt.wantMeta {
				if meta[k] != want {
					t.Errorf("metadata[%q] = %q, want %q", k, meta[k], want)
				}
			}
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRenderer_SanitizesScript(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(out, "<script") {
		t.Errorf("script tag survived sanitization: %s", out)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Errorf("surrounding text lost: %s", out)
	}
}

func TestRenderer_GFMTables(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "<table") {
		t.Errorf("table extension not applied: %s", out)
	}
}
