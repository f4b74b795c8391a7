package entity

// Validation statuses returned by the healing backend.
const (
	ValidationValid       = "VALID"
	ValidationNoSafeMatch = "NO_SAFE_MATCH"
)

// HealRequest is the payload of one heal attempt. Field names follow the
// backend contract exactly.
type HealRequest struct {
	TestName       string `json:"test_name"`
	FailedSelector string `json:"failed_selector"`
	HTML           string `json:"html"`
	Screenshot     string `json:"screenshot,omitempty"`
	PageURL        string `json:"page_url,omitempty"`
	UseOfSelector  string `json:"use_of_selector"`
	SelectorType   string `json:"selector_type"`
	IntentKey      string `json:"intent_key,omitempty"`
	SkipCache      bool   `json:"skip_cache,omitempty"`
}

// Candidate is one ranked replacement suggestion.
type Candidate struct {
	Selector       string  `json:"selector"`
	XPath          string  `json:"xpath,omitempty"`
	Score          float64 `json:"score"`
	BaseScore      float64 `json:"base_score,omitempty"`
	AttributeScore float64 `json:"attribute_score,omitempty"`
	Tag            string  `json:"tag,omitempty"`
	Text           string  `json:"text,omitempty"`
}

// HealDebug carries the backend's free-form diagnostics. Several fields
// duplicate top-level response fields; accessors on HealResponse resolve
// the duplication.
type HealDebug struct {
	Engine           string  `json:"engine,omitempty"`
	ProcessingTimeMS float64 `json:"processing_time_ms,omitempty"`
	TotalCandidates  int     `json:"total_candidates,omitempty"`
	CacheHit         *bool   `json:"cache_hit,omitempty"`
	CacheSourceID    *string `json:"cache_source_id,omitempty"`
	ValidationStatus *string `json:"validation_status,omitempty"`
	ValidationReason *string `json:"validation_reason,omitempty"`
	HistoryAssisted  *bool   `json:"history_assisted,omitempty"`
	HistoryHits      *int    `json:"history_hits,omitempty"`
	UIChangeLevel    *string `json:"ui_change_level,omitempty"`
}

// HealResponse is the backend's answer to a HealRequest. Immutable once
// received. Optional fields may appear at top level, inside debug, or both;
// top level wins when both are present.
type HealResponse struct {
	Chosen           *string     `json:"chosen"`
	Candidates       []Candidate `json:"candidates"`
	ValidationStatus *string     `json:"validation_status,omitempty"`
	ValidationReason *string     `json:"validation_reason,omitempty"`
	HistoryAssisted  *bool       `json:"history_assisted,omitempty"`
	HistoryHits      *int        `json:"history_hits,omitempty"`
	UIChangeLevel    *string     `json:"ui_change_level,omitempty"`
	CacheHit         *bool       `json:"cache_hit,omitempty"`
	CacheSourceID    *string     `json:"cache_source_id,omitempty"`
	Debug            *HealDebug  `json:"debug,omitempty"`
}

func firstNonNil[T any](values ...*T) (T, bool) {
	for _, v := range values {
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}

func (r *HealResponse) debug() *HealDebug {
	if r.Debug != nil {
		return r.Debug
	}
	return &HealDebug{}
}

// ChosenSelector returns the backend's chosen selector, or "" when none.
func (r *HealResponse) ChosenSelector() string {
	if r.Chosen == nil {
		return ""
	}
	return *r.Chosen
}

// TopCandidate returns the highest-ranked candidate, or nil.
func (r *HealResponse) TopCandidate() *Candidate {
	if len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

func (r *HealResponse) ResolvedValidationStatus() string {
	v, _ := firstNonNil(r.ValidationStatus, r.debug().ValidationStatus)
	return v
}

func (r *HealResponse) ResolvedValidationReason() string {
	v, _ := firstNonNil(r.ValidationReason, r.debug().ValidationReason)
	return v
}

func (r *HealResponse) ResolvedUIChangeLevel() UIChangeLevel {
	v, ok := firstNonNil(r.UIChangeLevel, r.debug().UIChangeLevel)
	if !ok {
		return UIChangeUnknown
	}
	return UIChangeLevel(v)
}

func (r *HealResponse) ResolvedHistoryAssisted() bool {
	v, _ := firstNonNil(r.HistoryAssisted, r.debug().HistoryAssisted)
	return v
}

func (r *HealResponse) ResolvedHistoryHits() int {
	v, _ := firstNonNil(r.HistoryHits, r.debug().HistoryHits)
	return v
}

func (r *HealResponse) ResolvedCacheHit() bool {
	v, _ := firstNonNil(r.CacheHit, r.debug().CacheHit)
	return v
}

func (r *HealResponse) ResolvedCacheSourceID() string {
	v, _ := firstNonNil(r.CacheSourceID, r.debug().CacheSourceID)
	return v
}
