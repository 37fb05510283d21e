package orderRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"servicedesk/apperrors"
	"servicedesk/models"

	"github.com/google/uuid"
)

// MemoryServiceOrderRepo keeps orders in process memory. Mutate holds the
// lock across read, fn and write, matching the Firestore transaction.
type MemoryServiceOrderRepo struct {
	mu     sync.Mutex
	orders map[string]models.ServiceOrder
}

func NewMemoryServiceOrderRepo() *MemoryServiceOrderRepo {
	return &MemoryServiceOrderRepo{orders: make(map[string]models.ServiceOrder)}
}

func (r *MemoryServiceOrderRepo) Create(ctx context.Context, order *models.ServiceOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return &apperrors.ConflictError{Message: fmt.Sprintf("service order %s already exists", order.ID)}
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

// read returns a detached copy with the status normalised, as the Firestore
// decoder does.
func read(o models.ServiceOrder) models.ServiceOrder {
	c := o.Clone()
	c.Status = c.Status.Normalize()
	return c
}

func (r *MemoryServiceOrderRepo) GetByID(ctx context.Context, id string) (*models.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service order %s not found", id))
	}
	c := read(o)
	return &c, nil
}

func (r *MemoryServiceOrderRepo) List(ctx context.Context, filter models.ServiceOrderFilter) ([]models.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ServiceOrder
	for _, o := range r.orders {
		if filter.Matches(o) {
			out = append(out, read(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryServiceOrderRepo) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.ServiceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("service order %s not found", id))
	}
	current.Status = current.Status.Normalize()
	patch, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	if patch == nil {
		c := read(r.orders[id])
		return &c, nil
	}
	patch.Version = current.Version + 1
	patch.ApplyTo(&current)
	r.orders[id] = current

	c := current.Clone()
	return &c, nil
}

func (r *MemoryServiceOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("service order %s not found", id))
	}
	delete(r.orders, id)
	return nil
}
