// Package seo renders the crawler-facing surfaces: sitemap, RSS feed and
// robots.txt. Documents are addressed as <base>/doc/<id>.
package seo

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"knowhub/internal/config"
	"knowhub/internal/domain/models"
	"knowhub/internal/markdown"
	"knowhub/internal/treestore"
)

const rssItemLimit = 20

// Generator renders SEO documents from the current tree.
type Generator struct {
	store   *treestore.Store
	docsDir string
	site    config.SiteConfig
}

func NewGenerator(store *treestore.Store, docsDir string, site config.SiteConfig) *Generator {
	return &Generator{store: store, docsDir: docsDir, site: site}
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap lists the site root plus every node, folders included, in tree
// pre-order.
func (g *Generator) Sitemap() ([]byte, error) {
	forest, err := g.store.Snapshot()
	if err != nil {
		return nil, err
	}

	set := urlset{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: g.site.BaseURL + "/"}},
	}
	treestore.Walk(forest, func(n *models.TreeNode) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     fmt.Sprintf("%s/doc/%s", g.site.BaseURL, n.ID),
			LastMod: lastMod(n.UpdatedAt),
		})
	})

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
}

// RSS lists the most recently updated documents, newest first, with a
// plain-text excerpt of each body.
func (g *Generator) RSS() ([]byte, error) {
	forest, err := g.store.Snapshot()
	if err != nil {
		return nil, err
	}

	docs := treestore.ListDocuments(forest)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UpdatedAt > docs[j].UpdatedAt
	})
	if len(docs) > rssItemLimit {
		docs = docs[:rssItemLimit]
	}

	channel := rssChannel{
		Title:       g.site.Title,
		Link:        g.site.BaseURL,
		Description: g.site.Description,
	}
	for _, doc := range docs {
		link := fmt.Sprintf("%s/doc/%s", g.site.BaseURL, doc.ID)
		channel.Items = append(channel.Items, rssItem{
			Title:       doc.Name,
			Link:        link,
			GUID:        link,
			Description: g.excerpt(*doc.Path),
			PubDate:     pubDate(doc.UpdatedAt),
		})
	}

	out, err := xml.MarshalIndent(rss{Version: "2.0", Channel: channel}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Robots allows everything and points crawlers at the sitemap.
func (g *Generator) Robots() []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	if g.site.BaseURL != "" {
		fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", g.site.BaseURL)
	}
	return []byte(b.String())
}

// excerpt returns the head of a body with front matter dropped and
// Markdown syntax flattened to plain text.
func (g *Generator) excerpt(relPath string) string {
	raw, err := os.ReadFile(filepath.Join(g.docsDir, relPath))
	if err != nil {
		return ""
	}

	_, body := markdown.ParseFrontMatter(string(raw))
	text := strings.NewReplacer("#", "", "*", "", "`", "", "[", "", "]", "", "(", "", ")", "").Replace(body)
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > config.SnippetLength {
		return string(runes[:config.SnippetLength]) + "..."
	}
	return text
}

// lastMod converts a node timestamp to the W3C date sitemaps expect.
func lastMod(updatedAt string) string {
	if len(updatedAt) >= 10 {
		return updatedAt[:10]
	}
	return ""
}

// pubDate converts a node timestamp to RFC 1123 for RSS.
func pubDate(updatedAt string) string {
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return ""
	}
	return t.Format(time.RFC1123Z)
}
