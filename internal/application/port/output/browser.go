package output

import (
	"context"
	"time"

	"healing-agent/internal/domain/entity"
)

// BrowserPort drives the page under test. Selectors starting with "/" are
// treated as XPath, everything else as CSS.
type BrowserPort interface {
	Navigate(ctx context.Context, url string) error

	// Click waits for the selector within timeout and clicks the first
	// document-order match.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// Fill clears and types into the first match of the selector.
	Fill(ctx context.Context, selector, text string, timeout time.Duration) error

	// MatchCount counts current matches without waiting.
	MatchCount(ctx context.Context, selector string) (int, error)

	// PageHTML returns the serialized markup trimmed for transport.
	PageHTML(ctx context.Context) (string, error)

	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	PageInfo(ctx context.Context) (*entity.PageInfo, error)

	// ExtractInteractables inventories interactive elements, forms and raw
	// outbound link targets of the current page.
	ExtractInteractables(ctx context.Context, maxElements int) ([]entity.InteractableElement, []entity.FormDescriptor, []string, error)

	CurrentURL() string

	// Alive reports whether the page can still be read. Callers must check
	// it before URL/markup reads so a closed browser short-circuits instead
	// of blocking.
	Alive() bool

	Close()
}
