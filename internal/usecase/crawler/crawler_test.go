package crawler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
	"healing-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSite serves scripted pages keyed by absolute URL.
type fakePage struct {
	title    string
	html     string
	links    []string
	elements []entity.InteractableElement
	forms    []entity.FormDescriptor
	fail     bool
}

type fakeSite struct {
	pages   map[string]*fakePage
	current string
	visits  []string
	alive   bool
}

var _ output.BrowserPort = (*fakeSite)(nil)

func newFakeSite() *fakeSite {
	return &fakeSite{pages: map[string]*fakePage{}, alive: true}
}

func (s *fakeSite) page() *fakePage {
	if p, ok := s.pages[s.current]; ok {
		return p
	}
	return &fakePage{}
}

func (s *fakeSite) Navigate(ctx context.Context, url string) error {
	p, ok := s.pages[url]
	if !ok || p.fail {
		return fmt.Errorf("net::ERR_ABORTED: %s", url)
	}
	s.current = url
	s.visits = append(s.visits, url)
	return nil
}

func (s *fakeSite) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}
func (s *fakeSite) Fill(ctx context.Context, selector, text string, timeout time.Duration) error {
	return nil
}
func (s *fakeSite) MatchCount(ctx context.Context, selector string) (int, error) { return 0, nil }

func (s *fakeSite) PageHTML(ctx context.Context) (string, error) { return s.page().html, nil }

func (s *fakeSite) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte{1}, Format: "jpeg"}, nil
}

func (s *fakeSite) PageInfo(ctx context.Context) (*entity.PageInfo, error) {
	return &entity.PageInfo{URL: s.current, Title: s.page().title}, nil
}

func (s *fakeSite) ExtractInteractables(ctx context.Context, maxElements int) ([]entity.InteractableElement, []entity.FormDescriptor, []string, error) {
	p := s.page()
	els := p.elements
	if len(els) > maxElements {
		els = els[:maxElements]
	}
	return els, p.forms, p.links, nil
}

func (s *fakeSite) CurrentURL() string { return s.current }
func (s *fakeSite) Alive() bool        { return s.alive }
func (s *fakeSite) Close()             { s.alive = false }

const baseURL = "http://shop.local"

func storefront() *fakeSite {
	site := newFakeSite()
	site.pages[baseURL+"/"] = &fakePage{
		title: "Home",
		html:  "<body>home</body>",
		links: []string{
			"/products/1",
			"/products/2",
			"/products/3",
			"http://other.example/promo",
			"/images/banner.png",
		},
	}
	for i := 1; i <= 3; i++ {
		site.pages[fmt.Sprintf("%s/products/%d", baseURL, i)] = &fakePage{
			title: fmt.Sprintf("Product %d", i),
			html:  fmt.Sprintf("<body>product %d</body>", i),
			links: []string{"/", "/checkout"},
		}
	}
	site.pages[baseURL+"/checkout"] = &fakePage{title: "Checkout", html: "<body>checkout</body>"}
	return site
}

func crawl(t *testing.T, site *fakeSite, cfg Config) *entity.CrawlResult {
	t.Helper()
	result, err := New(site, logger.NewNop(), cfg).Crawl(context.Background())
	require.NoError(t, err)
	return result
}

func TestCrawl_BoundedByDepthAndExclusions(t *testing.T) {
	site := storefront()

	cfg := DefaultConfig(baseURL)
	cfg.MaxRoutes = 5
	cfg.MaxDepth = 1

	result := crawl(t, site, cfg)

	// home + 3 products; cross-origin and asset links excluded, checkout is
	// beyond maxDepth
	require.Len(t, result.Routes, 4)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 4, result.RoutesVisited)
	assert.Equal(t, baseURL+"/", result.Routes[0].URL)
	for _, r := range result.Routes {
		assert.NotContains(t, r.URL, "other.example")
		assert.NotContains(t, r.URL, ".png")
	}
}

func TestCrawl_NeverRevisitsNormalizedURL(t *testing.T) {
	site := newFakeSite()
	site.pages[baseURL+"/"] = &fakePage{
		html:  "<body></body>",
		links: []string{"/items?page=1", "/items?page=2", "/items#reviews"},
	}
	site.pages[baseURL+"/items?page=1"] = &fakePage{html: "<body>items</body>"}

	cfg := DefaultConfig(baseURL)
	result := crawl(t, site, cfg)

	// all three links normalize to origin+path "/items": visited once
	assert.Len(t, result.Routes, 2)
	assert.Len(t, site.visits, 2)
}

func TestCrawl_StopsAtRouteCap(t *testing.T) {
	site := newFakeSite()
	var links []string
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("/page/%d", i)
		links = append(links, u)
		site.pages[baseURL+u] = &fakePage{html: "<body>p</body>"}
	}
	site.pages[baseURL+"/"] = &fakePage{html: "<body>home</body>", links: links}

	cfg := DefaultConfig(baseURL)
	cfg.MaxRoutes = 4

	result := crawl(t, site, cfg)
	assert.Len(t, result.Routes, 4)
}

func TestCrawl_NavigationFailureIsWarningNotAbort(t *testing.T) {
	site := storefront()
	site.pages[baseURL+"/products/2"].fail = true

	cfg := DefaultConfig(baseURL)
	cfg.MaxDepth = 1

	result := crawl(t, site, cfg)

	assert.Len(t, result.Routes, 3)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "/products/2")
}

func TestCrawl_LogoutAndStaticSubstringsExcluded(t *testing.T) {
	site := newFakeSite()
	site.pages[baseURL+"/"] = &fakePage{
		html:  "<body></body>",
		links: []string{"/account/logout", "/static/help", "/help"},
	}
	site.pages[baseURL+"/help"] = &fakePage{html: "<body>help</body>"}

	result := crawl(t, site, DefaultConfig(baseURL))

	require.Len(t, result.Routes, 2)
	assert.Equal(t, baseURL+"/help", result.Routes[1].URL)
}

func TestCrawl_RecordsFingerprintAndMetadata(t *testing.T) {
	site := storefront()

	result := crawl(t, site, DefaultConfig(baseURL))

	home := result.Routes[0]
	assert.Equal(t, "Home", home.Title)
	assert.Equal(t, 0, home.Depth)
	assert.Len(t, home.DOMHash, 64)

	other := result.Routes[1]
	assert.NotEqual(t, home.DOMHash, other.DOMHash)
	assert.Equal(t, 1, other.Depth)
}
