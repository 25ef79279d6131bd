package paginator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Content keys understood by the bundled renderers.
const (
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyFields      = "fields"
	KeyFooter      = "footer"
	KeyColor       = "color"
)

// Content is the opaque, serializable body of a page. Features decide what
// goes in it; the engine only carries it verbatim.
type Content map[string]any

// Embed creates content with a title and a description.
func Embed(title, description string) Content {
	c := Content{}
	if title != "" {
		c[KeyTitle] = title
	}
	if description != "" {
		c[KeyDescription] = description
	}
	return c
}

// WithField appends a named field and returns the content for chaining.
func (c Content) WithField(name, value string, inline bool) Content {
	fields, _ := c[KeyFields].([]any)
	c[KeyFields] = append(fields, map[string]any{
		"name":   name,
		"value":  value,
		"inline": inline,
	})
	return c
}

// WithColor sets the accent color.
func (c Content) WithColor(color int) Content {
	c[KeyColor] = color
	return c
}

// Title returns the title string, if any.
func (c Content) Title() string {
	s, _ := c[KeyTitle].(string)
	return s
}

// Description returns the description string, if any.
func (c Content) Description() string {
	s, _ := c[KeyDescription].(string)
	return s
}

// Field is a single name/value line of a page.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Fields returns the page fields in insertion order. It accepts both the
// freshly built shape and the shape produced by decoding stored JSON.
func (c Content) Fields() []Field {
	raw, _ := c[KeyFields].([]any)
	fields := make([]Field, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		f := Field{}
		f.Name, _ = m["name"].(string)
		f.Value, _ = m["value"].(string)
		f.Inline, _ = m["inline"].(bool)
		fields = append(fields, f)
	}
	return fields
}

// FooterText returns the footer text, if any.
func (c Content) FooterText() string {
	footer, _ := c[KeyFooter].(map[string]any)
	s, _ := footer["text"].(string)
	return s
}

func (c Content) clone() Content {
	out := make(Content, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Page is one immutable unit of renderable content.
type Page struct {
	Index   int
	Name    string
	Content Content
}

// Label is the jump-list label: the display name, or "Page N".
func (p Page) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Page %d", p.Index+1)
}

// Paginator collects pages before they are sent. It is not safe for
// concurrent use.
type Paginator struct {
	engine *Engine
	pages  []Page
}

// AddPage appends an unnamed page.
func (p *Paginator) AddPage(content Content) {
	p.AddNamedPage(content, "")
}

// AddNamedPage appends a page whose jump-list label is name.
func (p *Paginator) AddNamedPage(content Content, name string) {
	p.pages = append(p.pages, Page{
		Index:   len(p.pages),
		Name:    capitalize(strings.TrimSpace(name)),
		Content: content,
	})
}

// Len returns the number of pages added so far.
func (p *Paginator) Len() int {
	return len(p.pages)
}

// Build returns a positional, read-only copy of the pages.
func (p *Paginator) Build() ([]Page, error) {
	return BuildPages(p.pages)
}

// BuildPages validates pages and reassigns indexes from their positions.
func BuildPages(pages []Page) ([]Page, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: paginator has no pages", ErrInvalidArgument)
	}

	built := make([]Page, len(pages))
	for i, page := range pages {
		if len(page.Content) == 0 {
			return nil, fmt.Errorf("%w: page %d has no content", ErrInvalidArgument, i+1)
		}
		built[i] = Page{
			Index:   i,
			Name:    page.Name,
			Content: page.Content.clone(),
		}
	}
	return built, nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
