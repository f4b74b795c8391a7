package output

import (
	"context"

	"healing-agent/internal/domain/entity"
)

// HealerPort is the request/response exchange with the selector-matching
// backend.
type HealerPort interface {
	Heal(ctx context.Context, req *entity.HealRequest) (*entity.HealResponse, error)
}

// KnowledgePort pushes per-route UI snapshots to the backend knowledge base.
type KnowledgePort interface {
	PushSnapshot(ctx context.Context, snapshot *entity.UISnapshot) error
}

// ReportSink receives consolidated test results at teardown.
type ReportSink interface {
	Report(ctx context.Context, result *entity.TestResultReport) error
}
