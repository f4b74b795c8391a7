package entity

import (
	"fmt"
	"strings"
)

const maxTextSnippet = 80

// Rect is an element's layout rectangle in page coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// InteractableElement is one interactive element discovered on a route.
type InteractableElement struct {
	Tag           string   `json:"tag"`
	Role          string   `json:"role,omitempty"`
	TestID        string   `json:"test_id,omitempty"`
	AriaLabel     string   `json:"aria_label,omitempty"`
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name,omitempty"`
	Type          string   `json:"type,omitempty"`
	Text          string   `json:"text,omitempty"`
	Href          string   `json:"href,omitempty"`
	SelectorHints []string `json:"selector_hints,omitempty"`
	Rect          *Rect    `json:"rect,omitempty"`
	ParentTag     string   `json:"parent_tag,omitempty"`
}

// TruncateText bounds a text snippet to the configured snippet length.
func TruncateText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxTextSnippet {
		return s[:maxTextSnippet]
	}
	return s
}

// RankedSelectorHints builds the element's selector-hint list in priority
// order: test-id > id > role+tag > aria-label+tag > name+tag > type+tag >
// href+tag > visible-text+tag.
func (e InteractableElement) RankedSelectorHints() []string {
	var hints []string
	if e.TestID != "" {
		hints = append(hints, fmt.Sprintf("[data-testid=%q]", e.TestID))
	}
	if e.ID != "" {
		hints = append(hints, "#"+e.ID)
	}
	if e.Role != "" {
		hints = append(hints, fmt.Sprintf("%s[role=%q]", e.Tag, e.Role))
	}
	if e.AriaLabel != "" {
		hints = append(hints, fmt.Sprintf("%s[aria-label=%q]", e.Tag, e.AriaLabel))
	}
	if e.Name != "" {
		hints = append(hints, fmt.Sprintf("%s[name=%q]", e.Tag, e.Name))
	}
	if e.Type != "" {
		hints = append(hints, fmt.Sprintf("%s[type=%q]", e.Tag, e.Type))
	}
	if e.Href != "" {
		hints = append(hints, fmt.Sprintf("a[href=%q]", e.Href))
	}
	if e.Text != "" {
		hints = append(hints, fmt.Sprintf("%s:has-text(%q)", e.Tag, TruncateText(e.Text)))
	}
	return hints
}

// BestSelector returns the highest-priority hint, or "" when the element
// exposes nothing usable.
func (e InteractableElement) BestSelector() string {
	hints := e.SelectorHints
	if len(hints) == 0 {
		hints = e.RankedSelectorHints()
	}
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}

// FormField is one field of a discovered form.
type FormField struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// FormDescriptor describes one form on a route.
type FormDescriptor struct {
	Action string      `json:"action,omitempty"`
	Method string      `json:"method,omitempty"`
	Fields []FormField `json:"fields,omitempty"`
}

// Route is the crawl record of one visited page.
type Route struct {
	URL            string                `json:"url"`
	Title          string                `json:"title,omitempty"`
	DOMHash        string                `json:"dom_hash"`
	Depth          int                   `json:"depth"`
	Elements       []InteractableElement `json:"elements"`
	Forms          []FormDescriptor      `json:"forms,omitempty"`
	ScreenshotPath string                `json:"screenshot_path,omitempty"`
}

// CrawlResult is the crawler's aggregate output.
type CrawlResult struct {
	BaseURL       string   `json:"base_url"`
	SeedURLs      []string `json:"seed_urls"`
	MaxRoutes     int      `json:"max_routes"`
	MaxDepth      int      `json:"max_depth"`
	RoutesVisited int      `json:"routes_visited"`
	Routes        []Route  `json:"routes"`
	Warnings      []string `json:"warnings"`
}

// URLTask is one frontier entry of the breadth-first crawl.
type URLTask struct {
	URL   string
	Depth int
}
