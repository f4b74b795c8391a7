package crawler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".css", ".js",
	".woff", ".woff2", ".ttf", ".map", ".pdf", ".zip",
}

type Config struct {
	BaseURL          string
	SeedURLs         []string
	MaxRoutes        int
	MaxDepth         int
	MaxInteractables int
	// ExcludeSubstrings is matched against the raw URL; any hit excludes the
	// link from traversal. Deliberately a plain substring check.
	ExcludeSubstrings []string
	// ScreenshotDir enables per-route screenshots when non-empty.
	ScreenshotDir string
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		SeedURLs:          []string{"/"},
		MaxRoutes:         30,
		MaxDepth:          3,
		MaxInteractables:  60,
		ExcludeSubstrings: []string{"/logout", "/static/"},
	}
}

// Crawler walks a running application breadth-first, one page at a time,
// and inventories each route's interactive surface. Bounded by MaxRoutes
// and MaxDepth; a normalized URL is never visited twice.
type Crawler struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *Crawler {
	if len(cfg.SeedURLs) == 0 {
		cfg.SeedURLs = []string{"/"}
	}
	return &Crawler{browser: browser, logger: logger, cfg: cfg}
}

func (c *Crawler) Crawl(ctx context.Context) (*entity.CrawlResult, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.cfg.BaseURL, err)
	}

	result := &entity.CrawlResult{
		BaseURL:   c.cfg.BaseURL,
		SeedURLs:  c.cfg.SeedURLs,
		MaxRoutes: c.cfg.MaxRoutes,
		MaxDepth:  c.cfg.MaxDepth,
	}

	// seen is keyed by normalized URL (origin+path) and marked at enqueue
	// time so a URL is never enqueued twice.
	seen := make(map[string]bool)
	var frontier []entity.URLTask

	for _, seed := range c.cfg.SeedURLs {
		abs, key, ok := c.normalize(base, seed)
		if !ok || seen[key] || c.excluded(abs) {
			continue
		}
		seen[key] = true
		frontier = append(frontier, entity.URLTask{URL: abs, Depth: 0})
	}

	for len(frontier) > 0 && len(result.Routes) < c.cfg.MaxRoutes {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		task := frontier[0]
		frontier = frontier[1:]

		route, links, err := c.visit(ctx, task)
		if err != nil {
			warning := fmt.Sprintf("failed to crawl %s: %v", task.URL, err)
			result.Warnings = append(result.Warnings, warning)
			c.logger.Warn("Route skipped", "url", task.URL, "error", err)
			continue
		}
		result.Routes = append(result.Routes, *route)

		if task.Depth >= c.cfg.MaxDepth {
			continue
		}
		for _, link := range links {
			abs, key, ok := c.normalize(base, link)
			if !ok || seen[key] || c.excluded(abs) {
				continue
			}
			seen[key] = true
			frontier = append(frontier, entity.URLTask{URL: abs, Depth: task.Depth + 1})
		}
	}

	result.RoutesVisited = len(result.Routes)
	return result, nil
}

func (c *Crawler) visit(ctx context.Context, task entity.URLTask) (*entity.Route, []string, error) {
	if !c.browser.Alive() {
		return nil, nil, fmt.Errorf("browser is closed")
	}
	if err := c.browser.Navigate(ctx, task.URL); err != nil {
		return nil, nil, err
	}
	if !c.browser.Alive() {
		return nil, nil, fmt.Errorf("browser closed during navigation")
	}

	info, err := c.browser.PageInfo(ctx)
	if err != nil {
		return nil, nil, err
	}

	html, err := c.browser.PageHTML(ctx)
	if err != nil {
		return nil, nil, err
	}

	elements, forms, links, err := c.browser.ExtractInteractables(ctx, c.cfg.MaxInteractables)
	if err != nil {
		c.logger.Warn("Element extraction failed", "url", task.URL, "error", err)
	}

	route := &entity.Route{
		URL:      task.URL,
		Title:    info.Title,
		DOMHash:  fingerprint(html),
		Depth:    task.Depth,
		Elements: elements,
		Forms:    forms,
	}

	if c.cfg.ScreenshotDir != "" {
		if path, err := c.captureScreenshot(ctx, task.URL); err == nil {
			route.ScreenshotPath = path
		} else {
			c.logger.Warn("Route screenshot failed", "url", task.URL, "error", err)
		}
	}

	c.logger.Info("Route crawled", "url", task.URL, "depth", task.Depth,
		"elements", len(elements), "forms", len(forms), "links", len(links))
	return route, links, nil
}

// normalize resolves a link against the base and returns the absolute URL
// plus its visited-set key (origin+path, query and fragment dropped).
// Cross-origin destinations are rejected.
func (c *Crawler) normalize(base *url.URL, raw string) (abs, key string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") ||
		strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "mailto:") {
		return "", "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", "", false
	}
	resolved := base.ResolveReference(ref)

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", "", false
	}
	if resolved.Host != base.Host {
		return "", "", false
	}

	path := resolved.EscapedPath()
	if path == "" {
		path = "/"
	}
	key = resolved.Scheme + "://" + resolved.Host + path
	return resolved.String(), key, true
}

func (c *Crawler) excluded(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(strings.SplitN(lower, "?", 2)[0], ext) {
			return true
		}
	}
	for _, sub := range c.cfg.ExcludeSubstrings {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func (c *Crawler) captureScreenshot(ctx context.Context, routeURL string) (string, error) {
	shot, err := c.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.cfg.ScreenshotDir, 0755); err != nil {
		return "", err
	}
	name := sanitizeFilename(routeURL) + ".jpg"
	path := filepath.Join(c.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, shot.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// fingerprint is a cheap content hash of the serialized markup, used by
// callers to detect page changes between visits.
func fingerprint(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

func sanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	out := strings.Trim(string(result), "_")
	if out == "" {
		return "route"
	}
	if len(out) > 100 {
		out = out[:100]
	}
	return out
}
