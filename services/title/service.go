package title

import (
	"context"
	"strings"
	"time"

	"servicedesk/apperrors"
	titleRepo "servicedesk/database/repository/title"
	"servicedesk/models"
)

// TitleService manages the catalogue of preset service-order titles.
type TitleService interface {
	Create(ctx context.Context, actor models.User, req models.TitleRequest) (*models.Title, error)
	List(ctx context.Context, actor models.User, includeInactive bool) ([]models.Title, error)
	Update(ctx context.Context, actor models.User, id string, req models.TitleRequest) (*models.Title, error)
	Delete(ctx context.Context, actor models.User, id string) error
}

type DefaultTitleService struct {
	Repo titleRepo.TitleRepository
	Now  func() time.Time
}

func (s *DefaultTitleService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultTitleService) Create(ctx context.Context, actor models.User, req models.TitleRequest) (*models.Title, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("admin access required")
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUnique(ctx, "", name); err != nil {
		return nil, err
	}
	t := &models.Title{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsActive:    req.IsActive == nil || *req.IsActive,
		CreatedAt:   s.now(),
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *DefaultTitleService) List(ctx context.Context, actor models.User, includeInactive bool) ([]models.Title, error) {
	out, err := s.Repo.List(ctx, !(includeInactive && actor.IsAdmin()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Title{}
	}
	return out, nil
}

func (s *DefaultTitleService) Update(ctx context.Context, actor models.User, id string, req models.TitleRequest) (*models.Title, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("admin access required")
	}
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUnique(ctx, id, name); err != nil {
		return nil, err
	}
	current.Name = name
	current.Description = strings.TrimSpace(req.Description)
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	if err := s.Repo.Replace(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *DefaultTitleService) Delete(ctx context.Context, actor models.User, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("admin access required")
	}
	return s.Repo.Delete(ctx, id)
}

func (s *DefaultTitleService) ensureUnique(ctx context.Context, selfID, name string) error {
	all, err := s.Repo.List(ctx, false)
	if err != nil {
		return err
	}
	for _, t := range all {
		if t.ID != selfID && strings.EqualFold(t.Name, name) {
			return &apperrors.ConflictError{Message: "a title with this name already exists"}
		}
	}
	return nil
}
