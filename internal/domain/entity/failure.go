package entity

// UIChangeLevel is a coarse signal of how far the page diverged from what
// the backend expected. Severity only ever escalates within one test.
type UIChangeLevel string

const (
	UIChangeUnknown        UIChangeLevel = "UNKNOWN"
	UIChangeUnchanged      UIChangeLevel = "UNCHANGED"
	UIChangeMinor          UIChangeLevel = "MINOR_CHANGE"
	UIChangeMajor          UIChangeLevel = "MAJOR_CHANGE"
	UIChangeElementRemoved UIChangeLevel = "ELEMENT_REMOVED"
)

var uiChangeRank = map[UIChangeLevel]int{
	UIChangeUnknown:        0,
	UIChangeUnchanged:      1,
	UIChangeMinor:          2,
	UIChangeMajor:          3,
	UIChangeElementRemoved: 4,
}

// Rank returns the severity order of the level. Unrecognized strings rank
// lowest so a bogus backend value can never mask a real signal.
func (l UIChangeLevel) Rank() int {
	return uiChangeRank[l]
}

// MaxUIChangeLevel returns the more severe of the two levels.
func MaxUIChangeLevel(a, b UIChangeLevel) UIChangeLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

type HealingOutcome string

const (
	HealingNotAttempted HealingOutcome = "NOT_ATTEMPTED"
	HealingSuccess      HealingOutcome = "SUCCESS"
	HealingFailed       HealingOutcome = "FAILED"
)

// FailureContext is the per-test mutable aggregate the reporter flushes at
// teardown. It is created lazily on first write and merged on every
// subsequent write.
type FailureContext struct {
	FailedSelector       string
	HealedSelector       string
	FailureReason        string
	PageURL              string
	HealingAttempted     bool
	HealingOutcome       HealingOutcome
	HealingConfidence    float64
	ValidationStatus     string
	UIChangeLevel        UIChangeLevel
	HistoryAssisted      bool
	HistoryHits          int
	CacheHit             bool
	CacheFallbackToFresh bool
	RootCause            string
	StepEvents           []StepEvent
}

// ContextUpdate is a partial FailureContext. Pointer fields distinguish
// "not provided" from a deliberate false/zero.
type ContextUpdate struct {
	FailedSelector       string
	HealedSelector       string
	FailureReason        string
	PageURL              string
	ValidationStatus     string
	RootCause            string
	HealingOutcome       HealingOutcome
	UIChangeLevel        UIChangeLevel
	HealingAttempted     *bool
	HealingConfidence    *float64
	HistoryAssisted      *bool
	HistoryHits          *int
	CacheHit             *bool
	CacheFallbackToFresh *bool
	StepEvents           []StepEvent
}

// Bool, Int and Float build pointer fields for ContextUpdate literals.
func Bool(v bool) *bool        { return &v }
func Int(v int) *int           { return &v }
func Float(v float64) *float64 { return &v }

// Apply merges the update into the context. All fields are shallow-merged
// except StepEvents (concatenated) and UIChangeLevel (escalates only).
func (c *FailureContext) Apply(u ContextUpdate) {
	if u.FailedSelector != "" {
		c.FailedSelector = u.FailedSelector
	}
	if u.HealedSelector != "" {
		c.HealedSelector = u.HealedSelector
	}
	if u.FailureReason != "" {
		c.FailureReason = u.FailureReason
	}
	if u.PageURL != "" {
		c.PageURL = u.PageURL
	}
	if u.ValidationStatus != "" {
		c.ValidationStatus = u.ValidationStatus
	}
	if u.RootCause != "" {
		c.RootCause = u.RootCause
	}
	if u.HealingOutcome != "" {
		c.HealingOutcome = u.HealingOutcome
	}
	if u.UIChangeLevel != "" {
		c.UIChangeLevel = MaxUIChangeLevel(c.UIChangeLevel, u.UIChangeLevel)
	}
	if u.HealingAttempted != nil {
		c.HealingAttempted = *u.HealingAttempted
	}
	if u.HealingConfidence != nil {
		c.HealingConfidence = *u.HealingConfidence
	}
	if u.HistoryAssisted != nil {
		c.HistoryAssisted = *u.HistoryAssisted
	}
	if u.HistoryHits != nil {
		c.HistoryHits = *u.HistoryHits
	}
	if u.CacheHit != nil {
		c.CacheHit = *u.CacheHit
	}
	if u.CacheFallbackToFresh != nil {
		c.CacheFallbackToFresh = *u.CacheFallbackToFresh
	}
	c.StepEvents = append(c.StepEvents, u.StepEvents...)
}
