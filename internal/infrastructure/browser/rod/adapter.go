package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	mu     sync.Mutex
	closed bool
}

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	NoSandbox  bool
	DevTools   bool
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		SlowMotion: 0,
		NoSandbox:  true,
		DevTools:   false,
	}
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-web-security").
		Set("allow-running-insecure-content").
		Set("disable-setuid-sandbox")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion).
		MustConnect()

	page := browser.MustPage("about:blank")

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
	}, nil
}

func isXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.Contains(selector, "xpath=")
}

func (b *BrowserAdapter) element(selector string, timeout time.Duration) (*rod.Element, error) {
	selector = strings.TrimPrefix(selector, "xpath=")
	if isXPath(selector) {
		return b.page.Timeout(timeout).ElementX(selector)
	}
	return b.page.Timeout(timeout).Element(selector)
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	if !b.Alive() {
		return fmt.Errorf("browser is closed")
	}
	if err := b.page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := b.page.WaitLoad(); err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	b.page.WaitIdle(5 * time.Second)
	return nil
}

func (b *BrowserAdapter) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if !b.Alive() {
		return fmt.Errorf("browser is closed")
	}
	el, err := b.element(selector, timeout)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	b.page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) Fill(ctx context.Context, selector, text string, timeout time.Duration) error {
	if !b.Alive() {
		return fmt.Errorf("browser is closed")
	}
	el, err := b.element(selector, timeout)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

// MatchCount counts current matches without waiting for the selector to
// appear, so the resolver can distinguish zero, one and many immediately.
func (b *BrowserAdapter) MatchCount(ctx context.Context, selector string) (int, error) {
	if !b.Alive() {
		return 0, fmt.Errorf("browser is closed")
	}
	selector = strings.TrimPrefix(selector, "xpath=")

	var els rod.Elements
	var err error
	if isXPath(selector) {
		els, err = b.page.ElementsX(selector)
	} else {
		els, err = b.page.Elements(selector)
	}
	if err != nil {
		return 0, fmt.Errorf("selector query failed: %s: %w", selector, err)
	}
	return len(els), nil
}

func (b *BrowserAdapter) PageHTML(ctx context.Context) (string, error) {
	if !b.Alive() {
		return "", fmt.Errorf("browser is closed")
	}
	html, err := b.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return TrimHTML(html, nil), nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if !b.Alive() {
		return nil, fmt.Errorf("browser is closed")
	}
	imgBytes, err := b.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > 1024 {
		img = imaging.Resize(img, 1024, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) PageInfo(ctx context.Context) (*entity.PageInfo, error) {
	if !b.Alive() {
		return nil, fmt.Errorf("browser is closed")
	}
	info, err := b.page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info failed: %w", err)
	}
	return &entity.PageInfo{URL: info.URL, Title: info.Title}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	if !b.Alive() {
		return ""
	}
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (b *BrowserAdapter) Alive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.page != nil
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}
