package executor

import (
	"context"
	"fmt"
	"time"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

// fakeBrowser scripts selector behavior: matchCounts drives the resolver,
// failClicks marks selectors whose click attempts fail.
type fakeBrowser struct {
	matchCounts map[string]int
	failClicks  map[string]bool
	clicked     []string
	filled      map[string]string
	alive       bool
}

var _ output.BrowserPort = (*fakeBrowser)(nil)

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		matchCounts: map[string]int{},
		failClicks:  map[string]bool{},
		filled:      map[string]string{},
		alive:       true,
	}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error { return nil }

func (b *fakeBrowser) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if b.failClicks[selector] {
		return fmt.Errorf("element not found: %s", selector)
	}
	b.clicked = append(b.clicked, selector)
	return nil
}

func (b *fakeBrowser) Fill(ctx context.Context, selector, text string, timeout time.Duration) error {
	if b.failClicks[selector] {
		return fmt.Errorf("field not found: %s", selector)
	}
	b.filled[selector] = text
	return nil
}

func (b *fakeBrowser) MatchCount(ctx context.Context, selector string) (int, error) {
	return b.matchCounts[selector], nil
}

func (b *fakeBrowser) PageHTML(ctx context.Context) (string, error) {
	return "<body><main>page</main></body>", nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte{0xff, 0xd8}, Format: "jpeg"}, nil
}

func (b *fakeBrowser) PageInfo(ctx context.Context) (*entity.PageInfo, error) {
	return &entity.PageInfo{URL: "http://app/page", Title: "Page"}, nil
}

func (b *fakeBrowser) ExtractInteractables(ctx context.Context, maxElements int) ([]entity.InteractableElement, []entity.FormDescriptor, []string, error) {
	return nil, nil, nil, nil
}

func (b *fakeBrowser) CurrentURL() string { return "http://app/page" }
func (b *fakeBrowser) Alive() bool        { return b.alive }
func (b *fakeBrowser) Close()             { b.alive = false }

// fakeHealer replays scripted responses and records every request.
type fakeHealer struct {
	responses []*entity.HealResponse
	requests  []*entity.HealRequest
	err       error
}

var _ output.HealerPort = (*fakeHealer)(nil)

func (h *fakeHealer) Heal(ctx context.Context, req *entity.HealRequest) (*entity.HealResponse, error) {
	copied := *req
	h.requests = append(h.requests, &copied)
	if h.err != nil {
		return nil, h.err
	}
	resp := h.responses[0]
	if len(h.responses) > 1 {
		h.responses = h.responses[1:]
	}
	return resp, nil
}

func healResponse(chosen string, mutate func(*entity.HealResponse)) *entity.HealResponse {
	resp := &entity.HealResponse{}
	if chosen != "" {
		resp.Chosen = &chosen
		resp.Candidates = []entity.Candidate{
			{Selector: chosen, XPath: "/html/body/div[1]/button[1]", Score: 0.91},
		}
	}
	if mutate != nil {
		mutate(resp)
	}
	return resp
}

func strPtr(s string) *string { return &s }
