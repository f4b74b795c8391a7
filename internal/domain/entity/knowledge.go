package entity

// SnapshotElement is one element entry of a knowledge-sync payload.
type SnapshotElement struct {
	Selector  string `json:"selector"`
	Tag       string `json:"tag,omitempty"`
	Role      string `json:"role,omitempty"`
	Text      string `json:"text,omitempty"`
	TestID    string `json:"test_id,omitempty"`
	IntentKey string `json:"intent_key"`
}

// UISnapshot is the per-route knowledge payload pushed to the backend.
type UISnapshot struct {
	Route          string            `json:"route"`
	Title          string            `json:"title,omitempty"`
	FeatureName    string            `json:"feature_name,omitempty"`
	SnapshotType   string            `json:"snapshot_type"`
	DOMHash        string            `json:"dom_hash"`
	ScreenshotPath string            `json:"screenshot_path,omitempty"`
	SnapshotJSON   any               `json:"snapshot_json"`
	Elements       []SnapshotElement `json:"elements"`
}

// RouteIntent is the LLM collaborator's classification of one route.
type RouteIntent struct {
	FeatureName    string
	ElementIntents map[string]string
}

// DefaultIntentKey is used when classification is disabled or fails.
const DefaultIntentKey = "generic"

// SnapshotTypeCrawl marks snapshots produced by the crawler.
const SnapshotTypeCrawl = "CRAWL"
