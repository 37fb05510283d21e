package orderRepo

import (
	"context"

	"servicedesk/models"
)

// MutateFunc inspects the current stored order and returns the partial update
// to write, or nil to write nothing. Returning an error aborts the write.
// It may be invoked more than once when the store retries on contention.
type MutateFunc func(current models.ServiceOrder) (*models.OrderPatch, error)

// ServiceOrderRepository defines data access for service orders.
type ServiceOrderRepository interface {
	// Create inserts a new order and assigns its ID.
	Create(ctx context.Context, order *models.ServiceOrder) error
	// GetByID returns apperrors.NotFoundError when the order does not exist.
	GetByID(ctx context.Context, id string) (*models.ServiceOrder, error)
	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter models.ServiceOrderFilter) ([]models.ServiceOrder, error)
	// Mutate runs read, fn and write atomically for one order and bumps its
	// version. It returns the order as stored after the write.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*models.ServiceOrder, error)
	// Delete removes an order.
	Delete(ctx context.Context, id string) error
}
