package trailblog

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.abhg.dev/goldmark/frontmatter"
)

// Page is one static site page (about, gear, FAQs, ...) rendered from a
// markdown file. Pages are loaded once at startup; they are not stored or
// cached like posts.
type Page struct {
	Slug  string        // Slug is the URL path segment, taken from the file name
	Title string        // Title comes from the frontmatter, falling back to the slug
	HTML  template.HTML // HTML is the rendered body
}

// PageMeta is the frontmatter of a static page.
type PageMeta struct {
	Title string `yaml:"title,omitempty" toml:"title,omitempty"`
}

func pageMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
}

// LoadPages reads every .md file directly under dir and renders it. The
// returned map is keyed by slug.
func LoadPages(dir string) (map[string]*Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pages directory: %w", err)
	}

	md := pageMarkdown()
	pages := make(map[string]*Page)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read page file %s: %w", entry.Name(), err)
		}

		slug := strings.TrimSuffix(entry.Name(), ".md")
		page, err := RenderPage(md, slug, content)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %s: %w", entry.Name(), err)
		}
		pages[slug] = page
	}

	return pages, nil
}

// RenderPage converts markdown content to a Page.
func RenderPage(md goldmark.Markdown, slug string, content []byte) (*Page, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	page := &Page{
		Slug:  slug,
		Title: slug,
		HTML:  template.HTML(buf.String()),
	}

	if data := frontmatter.Get(ctx); data != nil {
		meta := PageMeta{}
		if err := data.Decode(&meta); err != nil {
			return page, fmt.Errorf("failed to decode frontmatter: %w", err)
		}
		if meta.Title != "" {
			page.Title = meta.Title
		}
	}

	return page, nil
}
