package establishmentRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"servicedesk/apperrors"
	"servicedesk/models"

	"github.com/google/uuid"
)

// MemoryEstablishmentRepo keeps establishments and sectors in process memory.
type MemoryEstablishmentRepo struct {
	mu             sync.RWMutex
	establishments map[string]models.Establishment
	sectors        map[string]map[string]models.Sector
}

func NewMemoryEstablishmentRepo() *MemoryEstablishmentRepo {
	return &MemoryEstablishmentRepo{
		establishments: make(map[string]models.Establishment),
		sectors:        make(map[string]map[string]models.Sector),
	}
}

func (r *MemoryEstablishmentRepo) Create(ctx context.Context, e *models.Establishment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	r.establishments[e.ID] = *e
	return nil
}

func (r *MemoryEstablishmentRepo) GetByID(ctx context.Context, id string) (*models.Establishment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.establishments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("establishment %s not found", id))
	}
	return &e, nil
}

func (r *MemoryEstablishmentRepo) List(ctx context.Context, activeOnly bool) ([]models.Establishment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Establishment
	for _, e := range r.establishments {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryEstablishmentRepo) Replace(ctx context.Context, e *models.Establishment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.establishments[e.ID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("establishment %s not found", e.ID))
	}
	e.CreatedAt = existing.CreatedAt
	r.establishments[e.ID] = *e
	return nil
}

func (r *MemoryEstablishmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.establishments[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("establishment %s not found", id))
	}
	delete(r.establishments, id)
	delete(r.sectors, id)
	return nil
}

func (r *MemoryEstablishmentRepo) CreateSector(ctx context.Context, s *models.Sector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if r.sectors[s.EstablishmentID] == nil {
		r.sectors[s.EstablishmentID] = make(map[string]models.Sector)
	}
	r.sectors[s.EstablishmentID][s.ID] = *s
	return nil
}

func (r *MemoryEstablishmentRepo) GetSector(ctx context.Context, establishmentID, sectorID string) (*models.Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sectors[establishmentID][sectorID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sector %s not found", sectorID))
	}
	return &s, nil
}

func (r *MemoryEstablishmentRepo) ListSectors(ctx context.Context, establishmentID string) ([]models.Sector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Sector
	for _, s := range r.sectors[establishmentID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryEstablishmentRepo) DeleteSector(ctx context.Context, establishmentID, sectorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sectors[establishmentID][sectorID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("sector %s not found", sectorID))
	}
	delete(r.sectors[establishmentID], sectorID)
	return nil
}
