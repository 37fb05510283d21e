package establishmentRepo

import (
	"context"

	"servicedesk/models"
)

// EstablishmentRepository defines data access for establishments and the
// sectors nested under them.
type EstablishmentRepository interface {
	Create(ctx context.Context, e *models.Establishment) error
	// GetByID returns apperrors.NotFoundError when the establishment does not exist.
	GetByID(ctx context.Context, id string) (*models.Establishment, error)
	List(ctx context.Context, activeOnly bool) ([]models.Establishment, error)
	// Replace overwrites the mutable fields of an establishment.
	Replace(ctx context.Context, e *models.Establishment) error
	// Delete removes an establishment together with its sectors.
	Delete(ctx context.Context, id string) error

	CreateSector(ctx context.Context, s *models.Sector) error
	GetSector(ctx context.Context, establishmentID, sectorID string) (*models.Sector, error)
	ListSectors(ctx context.Context, establishmentID string) ([]models.Sector, error)
	DeleteSector(ctx context.Context, establishmentID, sectorID string) error
}
