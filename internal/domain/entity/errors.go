package entity

import "fmt"

// AuthenticationError means the login response carried no access token.
// Fatal: the whole run cannot proceed without credentials.
type AuthenticationError struct {
	Detail string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Detail)
}

// HealingBlockedError means the backend's validation gate rejected every
// candidate. Terminal for the current action, no retry.
type HealingBlockedError struct {
	FailedSelector    string
	RejectedCandidate string
	Reason            string
}

func (e *HealingBlockedError) Error() string {
	msg := fmt.Sprintf("healing blocked for selector %q: %s", e.FailedSelector, e.Reason)
	if e.RejectedCandidate != "" {
		msg += fmt.Sprintf(" (rejected candidate: %s)", e.RejectedCandidate)
	}
	return msg
}

// NoSelectorReturnedError means the healer answered without a usable selector.
type NoSelectorReturnedError struct {
	FailedSelector string
}

func (e *NoSelectorReturnedError) Error() string {
	return fmt.Sprintf("healer returned no selector for %q", e.FailedSelector)
}

// AmbiguousSelectorError means the healed CSS selector matched more than one
// element and no structural fallback could break the tie.
type AmbiguousSelectorError struct {
	Selector string
	Matches  int
}

func (e *AmbiguousSelectorError) Error() string {
	return fmt.Sprintf("healed selector %q is ambiguous: %d matches and no usable structural fallback", e.Selector, e.Matches)
}

// NoUsableSelectorError means neither the healed CSS selector nor the
// structural fallback resolved to any element.
type NoUsableSelectorError struct {
	Selector       string
	StructuralPath string
}

func (e *NoUsableSelectorError) Error() string {
	return fmt.Sprintf("healed selector %q matched nothing and no structural fallback resolved", e.Selector)
}

// StatusError is a non-success HTTP response from the backend, kept with
// its body for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}
