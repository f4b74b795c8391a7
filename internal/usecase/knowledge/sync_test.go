package knowledge

import (
	"context"
	"fmt"
	"testing"

	"healing-agent/internal/domain/entity"
	"healing-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	result *entity.CrawlResult
	err    error
}

func (f *fakeSource) Crawl(ctx context.Context) (*entity.CrawlResult, error) {
	return f.result, f.err
}

type fakeClassifier struct {
	intents map[string]*entity.RouteIntent
	err     error
}

func (f *fakeClassifier) ClassifyRoute(ctx context.Context, route *entity.Route) (*entity.RouteIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	if intent, ok := f.intents[route.URL]; ok {
		return intent, nil
	}
	return &entity.RouteIntent{}, nil
}

type fakeStore struct {
	snapshots []*entity.UISnapshot
	failFor   map[string]bool
}

func (f *fakeStore) PushSnapshot(ctx context.Context, snapshot *entity.UISnapshot) error {
	if f.failFor[snapshot.Route] {
		return fmt.Errorf("backend unavailable")
	}
	f.snapshots = append(f.snapshots, snapshot)
	return nil
}

func twoRouteCrawl() *entity.CrawlResult {
	return &entity.CrawlResult{
		BaseURL:       "http://shop.local",
		RoutesVisited: 2,
		Routes: []entity.Route{
			{
				URL:     "http://shop.local/",
				Title:   "Home",
				DOMHash: "aaa",
				Elements: []entity.InteractableElement{
					{Tag: "button", TestID: "add-to-cart", Text: "Add"},
					{Tag: "a", Href: "/cart", Text: "Cart"},
				},
			},
			{
				URL:     "http://shop.local/cart",
				Title:   "Cart",
				DOMHash: "bbb",
				Elements: []entity.InteractableElement{
					{Tag: "button", ID: "checkout", Text: "Checkout"},
				},
			},
		},
	}
}

func TestRun_PushesOneSnapshotPerRoute(t *testing.T) {
	store := &fakeStore{}
	classifier := &fakeClassifier{intents: map[string]*entity.RouteIntent{
		"http://shop.local/": {
			FeatureName: "storefront",
			ElementIntents: map[string]string{
				`[data-testid="add-to-cart"]`: "add_to_cart",
			},
		},
	}}

	sync := New(&fakeSource{result: twoRouteCrawl()}, classifier, store, logger.NewNop())
	summary, err := sync.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RoutesVisited)
	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, store.snapshots, 2)

	home := store.snapshots[0]
	assert.Equal(t, "storefront", home.FeatureName)
	assert.Equal(t, entity.SnapshotTypeCrawl, home.SnapshotType)
	assert.Equal(t, "aaa", home.DOMHash)
	require.Len(t, home.Elements, 2)
	assert.Equal(t, `[data-testid="add-to-cart"]`, home.Elements[0].Selector)
	assert.Equal(t, "add_to_cart", home.Elements[0].IntentKey)
	// unclassified elements fall back to the default intent key
	assert.Equal(t, entity.DefaultIntentKey, home.Elements[1].IntentKey)
}

func TestRun_ClassifierFailureDegradesToDefaults(t *testing.T) {
	store := &fakeStore{}
	classifier := &fakeClassifier{err: fmt.Errorf("model timeout")}

	sync := New(&fakeSource{result: twoRouteCrawl()}, classifier, store, logger.NewNop())
	summary, err := sync.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Synced)
	for _, snap := range store.snapshots {
		for _, el := range snap.Elements {
			assert.Equal(t, entity.DefaultIntentKey, el.IntentKey)
		}
	}
}

func TestRun_NilClassifierIsAllowed(t *testing.T) {
	store := &fakeStore{}

	sync := New(&fakeSource{result: twoRouteCrawl()}, nil, store, logger.NewNop())
	summary, err := sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Synced)
}

func TestRun_PushFailureContinuesWithOtherRoutes(t *testing.T) {
	store := &fakeStore{failFor: map[string]bool{"http://shop.local/": true}}

	sync := New(&fakeSource{result: twoRouteCrawl()}, nil, store, logger.NewNop())
	summary, err := sync.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "http://shop.local/")
	require.Len(t, store.snapshots, 1)
	assert.Equal(t, "http://shop.local/cart", store.snapshots[0].Route)
}

func TestRun_CrawlFailureAborts(t *testing.T) {
	sync := New(&fakeSource{err: fmt.Errorf("browser crashed")}, nil, &fakeStore{}, logger.NewNop())

	_, err := sync.Run(context.Background())
	assert.Error(t, err)
}
