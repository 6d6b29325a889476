package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/sitecheck/internal/domain"
	"github.com/hamed0406/sitecheck/internal/repo"
)

var _ repo.RunStore = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	latest *domain.Run
}

func New() *Store {
	return &Store{}
}

func (m *Store) Save(ctx context.Context, run domain.Run) error {
	cp := run
	cp.Results = append([]domain.CheckResult(nil), run.Results...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &cp
	return nil
}

func (m *Store) Latest(ctx context.Context) (*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return nil, nil
	}
	cp := *m.latest
	cp.Results = append([]domain.CheckResult(nil), m.latest.Results...)
	return &cp, nil
}
