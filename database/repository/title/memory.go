package titleRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"servicedesk/apperrors"
	"servicedesk/models"

	"github.com/google/uuid"
)

type MemoryTitleRepo struct {
	mu     sync.RWMutex
	titles map[string]models.Title
}

func NewMemoryTitleRepo() *MemoryTitleRepo {
	return &MemoryTitleRepo{titles: make(map[string]models.Title)}
}

func (r *MemoryTitleRepo) Create(ctx context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	r.titles[t.ID] = *t
	return nil
}

func (r *MemoryTitleRepo) GetByID(ctx context.Context, id string) (*models.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.titles[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("title %s not found", id))
	}
	return &t, nil
}

func (r *MemoryTitleRepo) List(ctx context.Context, activeOnly bool) ([]models.Title, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Title
	for _, t := range r.titles {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryTitleRepo) Replace(ctx context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.titles[t.ID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("title %s not found", t.ID))
	}
	t.CreatedAt = existing.CreatedAt
	r.titles[t.ID] = *t
	return nil
}

func (r *MemoryTitleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.titles[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("title %s not found", id))
	}
	delete(r.titles, id)
	return nil
}
