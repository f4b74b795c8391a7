package output

import (
	"context"

	"healing-agent/internal/domain/entity"
)

// IntentClassifierPort asks the LLM collaborator what a route is for and
// which intent key each element carries.
type IntentClassifierPort interface {
	ClassifyRoute(ctx context.Context, route *entity.Route) (*entity.RouteIntent, error)
}
