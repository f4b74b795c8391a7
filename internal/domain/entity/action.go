package entity

import "time"

type StepType string

const (
	StepTypeAction     StepType = "action"
	StepTypeAssertion  StepType = "assertion"
	StepTypeNavigation StepType = "navigation"
)

type StepStatus string

const (
	StepPassed StepStatus = "PASSED"
	StepFailed StepStatus = "FAILED"
	StepHealed StepStatus = "HEALED"
)

// UIAction describes a single interaction a test step wants to perform.
// Created per call site, never persisted.
type UIAction struct {
	Selector     string
	Description  string
	SelectorType string
	IntentKey    string
}

// StepEvent is one entry of the per-test timeline. Events are append-only
// and immutable once recorded.
type StepEvent struct {
	Step           string     `json:"step"`
	Type           StepType   `json:"type"`
	Status         StepStatus `json:"status"`
	FailedSelector string     `json:"failed_selector,omitempty"`
	HealedSelector string     `json:"healed_selector,omitempty"`
	Confidence     float64    `json:"confidence,omitempty"`
	Message        string     `json:"message,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// Screenshot is a captured page image ready for embedding into requests.
type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// PageInfo is the minimal page metadata the crawler and executor read.
type PageInfo struct {
	URL   string
	Title string
}
