package repo

import (
	"context"

	"github.com/hamed0406/sitecheck/internal/domain"
)

// RunStore keeps the most recent pass so other parts of the process can
// read it. It is not a history.
type RunStore interface {
	Save(ctx context.Context, run domain.Run) error
	// Latest returns nil, nil before the first pass.
	Latest(ctx context.Context) (*domain.Run, error)
}
