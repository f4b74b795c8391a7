package executor

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

// ContextTracker is the slice of the failure tracker the executor needs.
type ContextTracker interface {
	Set(testID string, update entity.ContextUpdate)
	AddStepEvent(testID string, event entity.StepEvent)
}

type Config struct {
	// PrimaryTimeout bounds the first locator attempt; short so a broken
	// selector fails fast into the healing path.
	PrimaryTimeout time.Duration
	// HealedTimeout bounds clicks on a freshly computed selector.
	HealedTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PrimaryTimeout: 3 * time.Second,
		HealedTimeout:  10 * time.Second,
	}
}

// Executor runs a single UI action with layered fallback: primary locator,
// then a remotely healed selector, then a one-shot cache-invalidation retry.
type Executor struct {
	browser  output.BrowserPort
	healer   output.HealerPort
	resolver *Resolver
	tracker  ContextTracker
	logger   output.LoggerPort
	cfg      Config
}

func New(browser output.BrowserPort, healer output.HealerPort, tracker ContextTracker, logger output.LoggerPort, cfg Config) *Executor {
	if cfg.PrimaryTimeout == 0 {
		cfg.PrimaryTimeout = DefaultConfig().PrimaryTimeout
	}
	if cfg.HealedTimeout == 0 {
		cfg.HealedTimeout = DefaultConfig().HealedTimeout
	}
	return &Executor{
		browser:  browser,
		healer:   healer,
		resolver: NewResolver(browser, logger),
		tracker:  tracker,
		logger:   logger,
		cfg:      cfg,
	}
}

type performFunc func(ctx context.Context, selector string, timeout time.Duration) error

func (e *Executor) ExecuteClick(ctx context.Context, testID string, action entity.UIAction) error {
	return e.execute(ctx, testID, action, "click", func(ctx context.Context, selector string, timeout time.Duration) error {
		return e.browser.Click(ctx, selector, timeout)
	})
}

func (e *Executor) ExecuteFill(ctx context.Context, testID string, action entity.UIAction, text string) error {
	return e.execute(ctx, testID, action, "fill", func(ctx context.Context, selector string, timeout time.Duration) error {
		return e.browser.Fill(ctx, selector, text, timeout)
	})
}

func (e *Executor) execute(ctx context.Context, testID string, action entity.UIAction, use string, perform performFunc) error {
	primaryErr := perform(ctx, action.Selector, e.cfg.PrimaryTimeout)
	if primaryErr == nil {
		e.tracker.AddStepEvent(testID, entity.StepEvent{
			Step:   action.Description,
			Type:   entity.StepTypeAction,
			Status: entity.StepPassed,
		})
		return nil
	}

	e.logger.Warn("Primary locator failed, attempting heal",
		"test", testID, "selector", action.Selector, "error", primaryErr)

	pageURL := ""
	if e.browser.Alive() {
		pageURL = e.browser.CurrentURL()
	}

	e.tracker.Set(testID, entity.ContextUpdate{
		FailedSelector:   action.Selector,
		FailureReason:    primaryErr.Error(),
		PageURL:          pageURL,
		HealingAttempted: entity.Bool(true),
		HealingOutcome:   entity.HealingFailed, // provisional until resolution succeeds
	})

	req := e.buildHealRequest(ctx, testID, action, use, pageURL)

	resp, err := e.healer.Heal(ctx, req)
	if err != nil {
		return e.fail(testID, action, fmt.Errorf("heal request failed: %w", err))
	}
	e.recordEnvelope(testID, resp, true)

	res, confidence, err := e.applyHealResponse(ctx, testID, action, resp, perform)
	if err == nil {
		return e.healed(testID, action, res, confidence, "")
	}
	if isTerminalHealError(err) {
		return e.fail(testID, action, err)
	}

	if !resp.ResolvedCacheHit() {
		return e.fail(testID, action, err)
	}

	// Cached selector did not resolve on the live page: invalidate the cache
	// and try once against a freshly computed response.
	e.logger.Info("Cached selector unusable, retrying with skip_cache",
		"test", testID, "selector", action.Selector, "cacheSource", resp.ResolvedCacheSourceID())
	e.tracker.Set(testID, entity.ContextUpdate{CacheFallbackToFresh: entity.Bool(true)})

	req.SkipCache = true
	fresh, freshErr := e.healer.Heal(ctx, req)
	if freshErr != nil {
		return e.fail(testID, action, fmt.Errorf("heal retry failed: %w", freshErr))
	}
	e.recordEnvelope(testID, fresh, false)

	res, confidence, err = e.applyHealResponse(ctx, testID, action, fresh, perform)
	if err == nil {
		return e.healed(testID, action, res, confidence, " after cache invalidation")
	}
	return e.fail(testID, action, err)
}

// applyHealResponse gates the response and performs the action via the
// resolved selector. Gate rejections come back as terminal typed errors.
func (e *Executor) applyHealResponse(ctx context.Context, testID string, action entity.UIAction, resp *entity.HealResponse, perform performFunc) (*Resolution, float64, error) {
	if resp.ResolvedValidationStatus() == entity.ValidationNoSafeMatch {
		rejected := ""
		if top := resp.TopCandidate(); top != nil {
			rejected = top.Selector
		}
		return nil, 0, &entity.HealingBlockedError{
			FailedSelector:    action.Selector,
			RejectedCandidate: rejected,
			Reason:            resp.ResolvedValidationReason(),
		}
	}

	chosen := resp.ChosenSelector()
	if chosen == "" {
		return nil, 0, &entity.NoSelectorReturnedError{FailedSelector: action.Selector}
	}

	structuralPath := ""
	confidence := 0.0
	if top := resp.TopCandidate(); top != nil {
		structuralPath = top.XPath
		confidence = top.Score
	}

	res, err := e.resolver.Resolve(ctx, chosen, structuralPath)
	if err != nil {
		return nil, 0, err
	}
	if err := perform(ctx, res.Selector, e.cfg.HealedTimeout); err != nil {
		return nil, 0, fmt.Errorf("healed selector action failed: %w", err)
	}
	return res, confidence, nil
}

func (e *Executor) buildHealRequest(ctx context.Context, testID string, action entity.UIAction, use, pageURL string) *entity.HealRequest {
	html := ""
	if h, err := e.browser.PageHTML(ctx); err == nil {
		html = h
	} else {
		e.logger.Warn("Failed to capture page markup for heal request", "error", err)
	}

	screenshot := ""
	if shot, err := e.browser.Screenshot(ctx); err == nil {
		screenshot = base64.StdEncoding.EncodeToString(shot.Data)
	} else {
		e.logger.Warn("Failed to capture screenshot for heal request", "error", err)
	}

	selectorType := action.SelectorType
	if selectorType == "" {
		selectorType = "css"
	}

	return &entity.HealRequest{
		TestName:       testID,
		FailedSelector: action.Selector,
		HTML:           html,
		Screenshot:     screenshot,
		PageURL:        pageURL,
		UseOfSelector:  use,
		SelectorType:   selectorType,
		IntentKey:      action.IntentKey,
	}
}

// recordEnvelope copies the response's change/history/cache signals into the
// failure context. The cache-hit flag is only taken from the first response
// so a fresh retry cannot erase the original observation.
func (e *Executor) recordEnvelope(testID string, resp *entity.HealResponse, includeCache bool) {
	update := entity.ContextUpdate{
		ValidationStatus: resp.ResolvedValidationStatus(),
		UIChangeLevel:    resp.ResolvedUIChangeLevel(),
		HistoryAssisted:  entity.Bool(resp.ResolvedHistoryAssisted()),
		HistoryHits:      entity.Int(resp.ResolvedHistoryHits()),
	}
	if includeCache {
		update.CacheHit = entity.Bool(resp.ResolvedCacheHit())
	}
	e.tracker.Set(testID, update)
}

func (e *Executor) healed(testID string, action entity.UIAction, res *Resolution, confidence float64, suffix string) error {
	message := fmt.Sprintf("healed via %s strategy%s", res.Strategy, suffix)
	e.tracker.AddStepEvent(testID, entity.StepEvent{
		Step:           action.Description,
		Type:           entity.StepTypeAction,
		Status:         entity.StepHealed,
		FailedSelector: action.Selector,
		HealedSelector: res.Selector,
		Confidence:     confidence,
		Message:        message,
	})
	e.tracker.Set(testID, entity.ContextUpdate{
		HealedSelector:    res.Selector,
		HealingOutcome:    entity.HealingSuccess,
		HealingConfidence: entity.Float(confidence),
	})
	e.logger.Info("Action healed", "test", testID, "from", action.Selector, "to", res.Selector, "strategy", res.Strategy)
	return nil
}

// fail records the terminal outcome and propagates the typed error so the
// enclosing test fails with a complete failure context.
func (e *Executor) fail(testID string, action entity.UIAction, err error) error {
	e.tracker.AddStepEvent(testID, entity.StepEvent{
		Step:           action.Description,
		Type:           entity.StepTypeAction,
		Status:         entity.StepFailed,
		FailedSelector: action.Selector,
		Message:        err.Error(),
	})
	e.tracker.Set(testID, entity.ContextUpdate{
		HealingOutcome: entity.HealingFailed,
		RootCause:      err.Error(),
	})
	e.logger.Error("Action failed", "test", testID, "selector", action.Selector, "error", err)
	return err
}

// isTerminalHealError reports whether the error must not trigger the
// cache-invalidation retry.
func isTerminalHealError(err error) bool {
	switch err.(type) {
	case *entity.HealingBlockedError, *entity.NoSelectorReturnedError:
		return true
	}
	return false
}
