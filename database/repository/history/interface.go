package historyRepo

import (
	"context"

	"servicedesk/models"
)

// HistoryRepository stores the status audit trail of service orders.
type HistoryRepository interface {
	Record(ctx context.Context, entry models.StatusChange) error
	// ListByOrder returns the entries of one order, oldest first.
	ListByOrder(ctx context.Context, orderID string) ([]models.StatusChange, error)
}
