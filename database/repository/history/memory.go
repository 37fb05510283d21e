package historyRepo

import (
	"context"
	"sort"
	"sync"

	"servicedesk/models"
)

type MemoryHistoryRepo struct {
	mu      sync.RWMutex
	entries []models.StatusChange
}

func NewMemoryHistoryRepo() *MemoryHistoryRepo {
	return &MemoryHistoryRepo{}
}

func (r *MemoryHistoryRepo) Record(ctx context.Context, entry models.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryHistoryRepo) ListByOrder(ctx context.Context, orderID string) ([]models.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.StatusChange
	for _, e := range r.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
