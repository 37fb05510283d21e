package establishment

import (
	"context"
	"strings"
	"time"

	"servicedesk/apperrors"
	establishmentRepo "servicedesk/database/repository/establishment"
	orderRepo "servicedesk/database/repository/serviceorder"
	"servicedesk/models"
	"servicedesk/utils"

	"go.uber.org/zap"
)

type EstablishmentService interface {
	Create(ctx context.Context, actor models.User, req models.EstablishmentRequest) (*models.Establishment, error)
	Get(ctx context.Context, id string) (*models.Establishment, error)
	List(ctx context.Context, actor models.User, includeInactive bool) ([]models.Establishment, error)
	Update(ctx context.Context, actor models.User, id string, req models.EstablishmentRequest) (*models.Establishment, error)
	Delete(ctx context.Context, actor models.User, id string) error

	CreateSector(ctx context.Context, actor models.User, establishmentID string, req models.SectorRequest) (*models.Sector, error)
	ListSectors(ctx context.Context, establishmentID string) ([]models.Sector, error)
	DeleteSector(ctx context.Context, actor models.User, establishmentID, sectorID string) error
}

// DefaultEstablishmentService is the production implementation.
type DefaultEstablishmentService struct {
	Repo   establishmentRepo.EstablishmentRepository
	Orders orderRepo.ServiceOrderRepository
	Now    func() time.Time
}

func (s *DefaultEstablishmentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func requireAdmin(actor models.User) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("admin access required")
	}
	return nil
}

func (s *DefaultEstablishmentService) Create(ctx context.Context, actor models.User, req models.EstablishmentRequest) (*models.Establishment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := s.now()
	e := &models.Establishment{
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive:  req.IsActive == nil || *req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Establishment created", zap.String("id", e.ID), zap.String("by", actor.UID))
	return e, nil
}

func (s *DefaultEstablishmentService) Get(ctx context.Context, id string) (*models.Establishment, error) {
	return s.Repo.GetByID(ctx, id)
}

// List shows inactive establishments to admins only, and only on request.
func (s *DefaultEstablishmentService) List(ctx context.Context, actor models.User, includeInactive bool) ([]models.Establishment, error) {
	out, err := s.Repo.List(ctx, !(includeInactive && actor.IsAdmin()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Establishment{}
	}
	return out, nil
}

func (s *DefaultEstablishmentService) Update(ctx context.Context, actor models.User, id string, req models.EstablishmentRequest) (*models.Establishment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Name = strings.TrimSpace(req.Name)
	current.Address = strings.TrimSpace(req.Address)
	current.Phone = strings.TrimSpace(req.Phone)
	current.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	current.UpdatedAt = s.now()
	if err := s.Repo.Replace(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Delete refuses while the establishment still has unfinished orders.
func (s *DefaultEstablishmentService) Delete(ctx context.Context, actor models.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if s.Orders != nil {
		orders, err := s.Orders.List(ctx, models.ServiceOrderFilter{EstablishmentID: id})
		if err != nil {
			return err
		}
		for _, o := range orders {
			if !o.Status.Normalize().Terminal() {
				return &apperrors.ConflictError{Message: "establishment still has unfinished service orders"}
			}
		}
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	utils.GetLogger().Info("Establishment deleted", zap.String("id", id), zap.String("by", actor.UID))
	return nil
}

func (s *DefaultEstablishmentService) CreateSector(ctx context.Context, actor models.User, establishmentID string, req models.SectorRequest) (*models.Sector, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.Repo.GetByID(ctx, establishmentID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	existing, err := s.Repo.ListSectors(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	for _, sec := range existing {
		if strings.EqualFold(sec.Name, name) {
			return nil, &apperrors.ConflictError{Message: "a sector with this name already exists"}
		}
	}
	sector := &models.Sector{EstablishmentID: establishmentID, Name: name, CreatedAt: s.now()}
	if err := s.Repo.CreateSector(ctx, sector); err != nil {
		return nil, err
	}
	return sector, nil
}

func (s *DefaultEstablishmentService) ListSectors(ctx context.Context, establishmentID string) ([]models.Sector, error) {
	if _, err := s.Repo.GetByID(ctx, establishmentID); err != nil {
		return nil, err
	}
	out, err := s.Repo.ListSectors(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Sector{}
	}
	return out, nil
}

func (s *DefaultEstablishmentService) DeleteSector(ctx context.Context, actor models.User, establishmentID, sectorID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.Repo.DeleteSector(ctx, establishmentID, sectorID)
}
