package tracker

import (
	"sync"
	"time"

	"healing-agent/internal/domain/entity"
)

// Tracker accumulates per-test failure context and step timelines. State is
// partitioned by test identity; concurrent workers never touch each other's
// entries, so one lock over the map is enough.
type Tracker struct {
	mu       sync.Mutex
	contexts map[string]*entity.FailureContext
	now      func() time.Time
}

func New() *Tracker {
	return &Tracker{
		contexts: make(map[string]*entity.FailureContext),
		now:      time.Now,
	}
}

// Set merges the update into the context for testID, creating it lazily on
// first write.
func (t *Tracker) Set(testID string, update entity.ContextUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fc, ok := t.contexts[testID]
	if !ok {
		fc = &entity.FailureContext{HealingOutcome: entity.HealingNotAttempted}
		t.contexts[testID] = fc
	}
	fc.Apply(update)
}

// AddStepEvent appends an event to the test's timeline, stamping it with
// the current time when the caller left the timestamp zero.
func (t *Tracker) AddStepEvent(testID string, event entity.StepEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now()
	}
	t.Set(testID, entity.ContextUpdate{StepEvents: []entity.StepEvent{event}})
}

// Get returns the tracked context for testID, or nil when nothing was
// recorded.
func (t *Tracker) Get(testID string) *entity.FailureContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contexts[testID]
}

// Clear drops the context for testID.
func (t *Tracker) Clear(testID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.contexts, testID)
}
