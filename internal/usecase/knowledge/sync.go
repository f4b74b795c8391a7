package knowledge

import (
	"context"
	"fmt"

	"healing-agent/internal/application/port/output"
	"healing-agent/internal/domain/entity"
)

// RouteSource produces the routes to sync; in production it is the crawler.
type RouteSource interface {
	Crawl(ctx context.Context) (*entity.CrawlResult, error)
}

type Summary struct {
	RoutesVisited int
	Synced        int
	Failed        int
	Errors        []string
	Warnings      []string
}

// Sync runs a crawl, classifies each route's intent and pushes per-route
// knowledge snapshots to the backend. One route failing never aborts the
// others.
type Sync struct {
	source     RouteSource
	classifier output.IntentClassifierPort
	store      output.KnowledgePort
	logger     output.LoggerPort
}

// New builds a sync. classifier may be nil, in which case every element
// gets the default intent key.
func New(source RouteSource, classifier output.IntentClassifierPort, store output.KnowledgePort, logger output.LoggerPort) *Sync {
	return &Sync{source: source, classifier: classifier, store: store, logger: logger}
}

func (s *Sync) Run(ctx context.Context) (*Summary, error) {
	crawl, err := s.source.Crawl(ctx)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}

	summary := &Summary{
		RoutesVisited: crawl.RoutesVisited,
		Warnings:      crawl.Warnings,
	}

	for i := range crawl.Routes {
		route := &crawl.Routes[i]

		intent := s.classify(ctx, route)
		snapshot := buildSnapshot(route, intent)

		if err := s.store.PushSnapshot(ctx, snapshot); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("sync %s: %v", route.URL, err))
			s.logger.Error("Snapshot push failed", "route", route.URL, "error", err)
			continue
		}
		summary.Synced++
		s.logger.Info("Route synced", "route", route.URL, "feature", snapshot.FeatureName, "elements", len(snapshot.Elements))
	}

	s.logger.Info("Knowledge sync finished",
		"visited", summary.RoutesVisited, "synced", summary.Synced, "failed", summary.Failed)
	return summary, nil
}

// classify asks the LLM collaborator; any failure degrades to defaults so
// one unclassifiable route cannot stop the sync.
func (s *Sync) classify(ctx context.Context, route *entity.Route) *entity.RouteIntent {
	fallback := &entity.RouteIntent{ElementIntents: map[string]string{}}
	if s.classifier == nil {
		return fallback
	}

	intent, err := s.classifier.ClassifyRoute(ctx, route)
	if err != nil {
		s.logger.Warn("Intent classification failed, using defaults", "route", route.URL, "error", err)
		return fallback
	}
	if intent.ElementIntents == nil {
		intent.ElementIntents = map[string]string{}
	}
	return intent
}

func buildSnapshot(route *entity.Route, intent *entity.RouteIntent) *entity.UISnapshot {
	snapshot := &entity.UISnapshot{
		Route:          route.URL,
		Title:          route.Title,
		FeatureName:    intent.FeatureName,
		SnapshotType:   entity.SnapshotTypeCrawl,
		DOMHash:        route.DOMHash,
		ScreenshotPath: route.ScreenshotPath,
		SnapshotJSON:   route,
		Elements:       []entity.SnapshotElement{},
	}

	for _, el := range route.Elements {
		selector := el.BestSelector()
		if selector == "" {
			continue
		}
		intentKey := intent.ElementIntents[selector]
		if intentKey == "" {
			intentKey = entity.DefaultIntentKey
		}
		snapshot.Elements = append(snapshot.Elements, entity.SnapshotElement{
			Selector:  selector,
			Tag:       el.Tag,
			Role:      el.Role,
			Text:      el.Text,
			TestID:    el.TestID,
			IntentKey: intentKey,
		})
	}
	return snapshot
}
