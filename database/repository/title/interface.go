package titleRepo

import (
	"context"

	"servicedesk/models"
)

// TitleRepository defines data access for the preset title catalogue.
type TitleRepository interface {
	Create(ctx context.Context, t *models.Title) error
	GetByID(ctx context.Context, id string) (*models.Title, error)
	List(ctx context.Context, activeOnly bool) ([]models.Title, error)
	Replace(ctx context.Context, t *models.Title) error
	Delete(ctx context.Context, id string) error
}
