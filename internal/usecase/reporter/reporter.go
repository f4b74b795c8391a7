package reporter

import (
	"context"
	"regexp"
	"strings"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

// ContextStore is the slice of the failure tracker the reporter needs.
type ContextStore interface {
	Get(testID string) *entity.FailureContext
	Clear(testID string)
}

// RunInfo identifies the enclosing run in every report.
type RunInfo struct {
	RunID       string
	BuildID     string
	Environment string
}

// Reporter posts the consolidated failure context and step timeline at test
// teardown. Reporting failures are logged, never re-thrown; the per-test
// context is cleared regardless of the outcome.
type Reporter struct {
	sink    output.ReportSink
	store   ContextStore
	logger  output.LoggerPort
	runInfo RunInfo
}

func New(sink output.ReportSink, store ContextStore, logger output.LoggerPort, runInfo RunInfo) *Reporter {
	return &Reporter{sink: sink, store: store, logger: logger, runInfo: runInfo}
}

// ReportTestResult flushes one test's result. testErr is the uncaught error
// that aborted the test, or nil on pass.
func (r *Reporter) ReportTestResult(ctx context.Context, testID, status string, testErr error, artifacts entity.Artifacts) {
	defer r.store.Clear(testID)

	fc := r.store.Get(testID)
	if fc == nil {
		fc = &entity.FailureContext{HealingOutcome: entity.HealingNotAttempted}
		if testErr != nil {
			// best-effort recovery when the test aborted before any
			// context was tracked
			parsed := parseErrorContext(testErr.Error())
			fc.FailedSelector = parsed.selector
			fc.RootCause = parsed.rootCause
		}
	}

	report := r.buildReport(testID, status, testErr, fc, artifacts)

	if err := r.sink.Report(ctx, report); err != nil {
		r.logger.Error("Result report failed", "test", testID, "error", err)
		return
	}
	r.logger.Info("Result reported", "test", testID, "status", status)
}

func (r *Reporter) buildReport(testID, status string, testErr error, fc *entity.FailureContext, artifacts entity.Artifacts) *entity.TestResultReport {
	report := &entity.TestResultReport{
		RunID:                r.runInfo.RunID,
		BuildID:              r.runInfo.BuildID,
		Environment:          r.runInfo.Environment,
		TestName:             testID,
		Status:               status,
		FailureReason:        fc.FailureReason,
		HTML:                 artifacts.HTML,
		PageURL:              fc.PageURL,
		FailedSelector:       fc.FailedSelector,
		HealedSelector:       fc.HealedSelector,
		HealingAttempted:     fc.HealingAttempted,
		HealingOutcome:       string(fc.HealingOutcome),
		HealingConfidence:    fc.HealingConfidence,
		ValidationStatus:     fc.ValidationStatus,
		UIChangeLevel:        string(fc.UIChangeLevel),
		HistoryAssisted:      fc.HistoryAssisted,
		HistoryHits:          fc.HistoryHits,
		CacheHit:             fc.CacheHit,
		CacheFallbackToFresh: fc.CacheFallbackToFresh,
		RootCause:            fc.RootCause,
		StepEvents:           fc.StepEvents,
		ScreenshotPath:       artifacts.ScreenshotPath,
		VideoPath:            artifacts.VideoPath,
		TracePath:            artifacts.TracePath,
		ExecutionTime:        artifacts.ExecutionTime,
	}
	if testErr != nil {
		report.ErrorMessage = testErr.Error()
	}
	if report.HealingOutcome == "" {
		report.HealingOutcome = string(entity.HealingNotAttempted)
	}
	return report
}

var selectorRe = regexp.MustCompile(`selector "([^"]+)"|selector '([^']+)'`)

type parsedContext struct {
	selector  string
	rootCause string
}

// parseErrorContext heuristically extracts a failed selector and root cause
// from an error message. Only used when no explicit context was tracked.
func parseErrorContext(message string) parsedContext {
	parsed := parsedContext{}

	if m := selectorRe.FindStringSubmatch(message); m != nil {
		if m[1] != "" {
			parsed.selector = m[1]
		} else {
			parsed.selector = m[2]
		}
	}

	firstLine := message
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	parsed.rootCause = strings.TrimSpace(firstLine)
	return parsed
}
