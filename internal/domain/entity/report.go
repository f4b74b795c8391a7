package entity

// TestStatus values accepted by the analytics backend.
const (
	TestPassed  = "PASSED"
	TestFailed  = "FAILED"
	TestSkipped = "SKIPPED"
)

// Artifacts are optional capture paths attached to a test result.
type Artifacts struct {
	HTML           string
	ScreenshotPath string
	VideoPath      string
	TracePath      string
	ExecutionTime  float64
}

// TestResultReport is the consolidated payload posted at test teardown.
// Keys mirror the analytics backend's result endpoint.
type TestResultReport struct {
	RunID                string      `json:"run_id"`
	BuildID              string      `json:"build_id,omitempty"`
	Environment          string      `json:"environment,omitempty"`
	TestName             string      `json:"test_name"`
	Status               string      `json:"status"`
	ErrorMessage         string      `json:"error_message,omitempty"`
	StackTrace           string      `json:"stack_trace,omitempty"`
	FailureReason        string      `json:"failure_reason,omitempty"`
	HTML                 string      `json:"html"`
	PageURL              string      `json:"page_url,omitempty"`
	FailedSelector       string      `json:"failed_selector,omitempty"`
	HealedSelector       string      `json:"healed_selector,omitempty"`
	HealingAttempted     bool        `json:"healing_attempted"`
	HealingOutcome       string      `json:"healing_outcome,omitempty"`
	HealingConfidence    float64     `json:"healing_confidence,omitempty"`
	ValidationStatus     string      `json:"validation_status,omitempty"`
	UIChangeLevel        string      `json:"ui_change_level,omitempty"`
	HistoryAssisted      bool        `json:"history_assisted"`
	HistoryHits          int         `json:"history_hits"`
	CacheHit             bool        `json:"cache_hit"`
	CacheFallbackToFresh bool        `json:"cache_fallback_to_fresh"`
	RootCause            string      `json:"root_cause,omitempty"`
	StepEvents           []StepEvent `json:"step_events,omitempty"`
	ScreenshotPath       string      `json:"screenshot_path,omitempty"`
	VideoPath            string      `json:"video_path,omitempty"`
	TracePath            string      `json:"trace_path,omitempty"`
	ExecutionTime        float64     `json:"execution_time,omitempty"`
}
