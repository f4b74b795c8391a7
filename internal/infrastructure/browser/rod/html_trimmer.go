package rod

import (
	"strings"

	"golang.org/x/net/html"
)

type TrimConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxOutputSize int
}

// DefaultTrimConfig keeps the attributes the matching backend scores on
// (data-*, aria-*, id, name, class) while dropping script/style noise.
var DefaultTrimConfig = TrimConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe", "link", "meta",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority",
	},
	MaxOutputSize: 400_000,
}

// TrimHTML reduces serialized markup to what a heal request needs. Unlike
// an LLM-context cleaner it must keep data-* and aria-* attributes: the
// matching backend ranks candidates by exactly those.
func TrimHTML(rawHTML string, cfg *TrimConfig) string {
	if cfg == nil {
		cfg = &DefaultTrimConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	body := findBodyNode(doc)
	if body == nil {
		return rawHTML
	}

	trimNode(body, cfg)

	result := renderNode(body)
	if len(result) > cfg.MaxOutputSize {
		result = result[:cfg.MaxOutputSize]
	}
	return result
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func trimNode(n *html.Node, cfg *TrimConfig) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	if isOneOf(n.Data, cfg.TagsToRemove...) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	n.Attr = filterAttributes(n.Attr, cfg)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		trimNode(c, cfg)
		c = next
	}
}

func filterAttributes(attrs []html.Attribute, cfg *TrimConfig) []html.Attribute {
	var kept []html.Attribute
	for _, a := range attrs {
		if shouldRemoveAttr(a, cfg) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func shouldRemoveAttr(a html.Attribute, cfg *TrimConfig) bool {
	for _, r := range cfg.AttrsToRemove {
		if a.Key == r {
			return true
		}
	}
	// event handlers carry no selector signal
	return strings.HasPrefix(a.Key, "on")
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
