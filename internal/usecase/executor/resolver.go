package executor

import (
	"context"
	"time"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

type ResolutionStrategy string

const (
	StrategyCSS        ResolutionStrategy = "css"
	StrategyStructural ResolutionStrategy = "structural"
)

// Resolution is the resolver's decision: which selector to act on and via
// which strategy.
type Resolution struct {
	Strategy ResolutionStrategy
	Selector string
}

// Resolver decides how to execute an action with a healed selector without
// ambiguity. The structural (tree-path) fallback is consulted only when the
// CSS selector is unusable; it never overrides a unique CSS match.
type Resolver struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewResolver(browser output.BrowserPort, logger output.LoggerPort) *Resolver {
	return &Resolver{browser: browser, logger: logger}
}

// Resolve picks the selector to act on. Exactly one CSS match wins outright;
// zero or multiple matches fall back to the first document-order match of
// the structural path when it resolves.
func (r *Resolver) Resolve(ctx context.Context, cssSelector, structuralPath string) (*Resolution, error) {
	matches, err := r.browser.MatchCount(ctx, cssSelector)
	if err != nil {
		r.logger.Debug("CSS match count failed, treating as zero matches", "selector", cssSelector, "error", err)
		matches = 0
	}

	switch {
	case matches == 1:
		return &Resolution{Strategy: StrategyCSS, Selector: cssSelector}, nil

	case matches > 1:
		if res := r.structural(ctx, structuralPath); res != nil {
			r.logger.Info("Ambiguous CSS selector, using structural fallback",
				"selector", cssSelector, "matches", matches, "structural", structuralPath)
			return res, nil
		}
		return nil, &entity.AmbiguousSelectorError{Selector: cssSelector, Matches: matches}

	default:
		if res := r.structural(ctx, structuralPath); res != nil {
			r.logger.Info("CSS selector matched nothing, using structural fallback",
				"selector", cssSelector, "structural", structuralPath)
			return res, nil
		}
		return nil, &entity.NoUsableSelectorError{Selector: cssSelector, StructuralPath: structuralPath}
	}
}

// ClickHealed resolves and clicks in one step.
func (r *Resolver) ClickHealed(ctx context.Context, cssSelector, structuralPath string, timeout time.Duration) (*Resolution, error) {
	res, err := r.Resolve(ctx, cssSelector, structuralPath)
	if err != nil {
		return nil, err
	}
	if err := r.browser.Click(ctx, res.Selector, timeout); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolver) structural(ctx context.Context, structuralPath string) *Resolution {
	if structuralPath == "" {
		return nil
	}
	matches, err := r.browser.MatchCount(ctx, structuralPath)
	if err != nil || matches == 0 {
		return nil
	}
	return &Resolution{Strategy: StrategyStructural, Selector: structuralPath}
}
