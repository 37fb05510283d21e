package serviceorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"servicedesk/apperrors"
	"servicedesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewOrderNumber builds the human-readable order number: prefix, creation
// date and a random suffix.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("OS-%s-%s", now.Format("20060102"), strings.ToUpper(suffix))
}

func (s *DefaultServiceOrderService) Create(ctx context.Context, actor models.User, req models.CreateServiceOrderRequest) (*models.ServiceOrder, error) {
	if actor.UserType != models.UserTypeEndUser && !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only end-users and admins can open service orders")
	}
	if !req.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority",
			apperrors.ValidationDetail{Field: "priority", Message: "must be one of low, medium, high, urgent"})
	}

	establishmentID := req.EstablishmentID
	if actor.UserType == models.UserTypeEndUser {
		if establishmentID != "" && establishmentID != actor.EstablishmentID {
			return nil, apperrors.NewForbiddenError("end-users can only open orders for their own establishment")
		}
		establishmentID = actor.EstablishmentID
	}
	if establishmentID == "" {
		return nil, apperrors.NewValidationError("establishmentId is required",
			apperrors.ValidationDetail{Field: "establishmentId", Message: "required field"})
	}

	est, err := s.Establishments.GetByID(ctx, establishmentID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewValidationError("establishment not found",
				apperrors.ValidationDetail{Field: "establishmentId", Message: "no such establishment"})
		}
		return nil, err
	}
	if !est.IsActive {
		return nil, apperrors.NewValidationError("establishment is inactive",
			apperrors.ValidationDetail{Field: "establishmentId", Message: "must reference an active establishment"})
	}

	now := s.now()
	order := &models.ServiceOrder{
		OrderNumber:       NewOrderNumber(now),
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		Priority:          req.Priority,
		EstablishmentID:   est.ID,
		EstablishmentName: est.Name,
		UserID:            actor.UID,
		UserName:          actor.Name,
		Status:            models.StatusOpen,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
		ScheduledAt:       req.ScheduledAt,
	}

	if req.SectorID != "" {
		sector, err := s.Establishments.GetSector(ctx, est.ID, req.SectorID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError("sector not found",
					apperrors.ValidationDetail{Field: "sectorId", Message: "no such sector in this establishment"})
			}
			return nil, err
		}
		order.SectorID = sector.ID
		order.SectorName = sector.Name
	}

	if req.TitleID != "" && s.Titles != nil {
		title, err := s.Titles.GetByID(ctx, req.TitleID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError("title not found",
					apperrors.ValidationDetail{Field: "titleId", Message: "no such title"})
			}
			return nil, err
		}
		order.TitleID = title.ID
		if order.Title == "" {
			order.Title = title.Name
		}
	}

	if err := s.Orders.Create(ctx, order); err != nil {
		s.logger().Error("Failed to create service order", zap.String("userId", actor.UID), zap.Error(err))
		return nil, err
	}

	s.record(ctx, models.StatusChange{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Event:       "create",
		ToStatus:    models.StatusOpen,
		Actor:       actor.Snapshot(),
		Version:     order.Version,
		CreatedAt:   now,
	})
	s.logger().Info("Service order created",
		zap.String("orderId", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("userId", actor.UID))
	return order, nil
}

func canView(actor models.User, order models.ServiceOrder) bool {
	switch actor.UserType {
	case models.UserTypeAdmin:
		return true
	case models.UserTypeTechnician:
		return order.TechnicianID == actor.UID
	case models.UserTypeEndUser:
		return order.UserID == actor.UID
	}
	return false
}

func (s *DefaultServiceOrderService) Get(ctx context.Context, actor models.User, id string) (*models.ServiceOrder, error) {
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, *order) {
		return nil, apperrors.NewForbiddenError("not allowed to view this service order")
	}
	return order, nil
}

// List scopes the listing to what the actor may see: requesters their own
// orders, technicians their assignments, admins everything.
func (s *DefaultServiceOrderService) List(ctx context.Context, actor models.User, filter models.ServiceOrderFilter) ([]models.ServiceOrder, error) {
	switch actor.UserType {
	case models.UserTypeAdmin:
	case models.UserTypeTechnician:
		filter.TechnicianID = actor.UID
	case models.UserTypeEndUser:
		filter.UserID = actor.UID
	default:
		return nil, apperrors.NewForbiddenError("unknown role")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status filter",
			apperrors.ValidationDetail{Field: "status", Message: "must be a canonical status"})
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority filter",
			apperrors.ValidationDetail{Field: "priority", Message: "must be one of low, medium, high, urgent"})
	}
	orders, err := s.Orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.ServiceOrder{}
	}
	return orders, nil
}

// UpdateDetails edits descriptive fields while the work has not started.
func (s *DefaultServiceOrderService) UpdateDetails(ctx context.Context, actor models.User, id string, req models.UpdateServiceOrderRequest) (*models.ServiceOrder, error) {
	if req.Priority != nil && !req.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority",
			apperrors.ValidationDetail{Field: "priority", Message: "must be one of low, medium, high, urgent"})
	}
	now := s.now()

	return s.Orders.Mutate(ctx, id, func(current models.ServiceOrder) (*models.OrderPatch, error) {
		if !actor.IsAdmin() && actor.UID != current.UserID {
			return nil, apperrors.NewForbiddenError("only the requester can edit this service order")
		}
		status := current.Status.Normalize()
		if status != models.StatusOpen && status != models.StatusAssigned {
			return nil, &apperrors.ConflictError{
				Message:   fmt.Sprintf("service order in status %s can no longer be edited", status),
				Current:   string(status),
				Attempted: "edit",
			}
		}

		patch := &models.OrderPatch{UpdatedAt: now}
		if req.Title != nil {
			t := strings.TrimSpace(*req.Title)
			patch.Title = &t
		}
		if req.Description != nil {
			d := strings.TrimSpace(*req.Description)
			patch.Description = &d
		}
		if req.Priority != nil {
			p := *req.Priority
			patch.Priority = &p
		}
		if req.ScheduledAt != nil {
			if req.ScheduledAt.IsZero() {
				patch.Clear = append(patch.Clear, models.FieldScheduledAt)
			} else {
				at := *req.ScheduledAt
				patch.ScheduledAt = &at
			}
		}
		if req.SectorID != nil {
			sectorID, sectorName := "", ""
			if *req.SectorID != "" {
				sector, err := s.Establishments.GetSector(ctx, current.EstablishmentID, *req.SectorID)
				if err != nil {
					if _, ok := apperrors.IsNotFoundError(err); ok {
						return nil, apperrors.NewValidationError("sector not found",
							apperrors.ValidationDetail{Field: "sectorId", Message: "no such sector in this establishment"})
					}
					return nil, err
				}
				sectorID, sectorName = sector.ID, sector.Name
			}
			patch.SectorID = &sectorID
			patch.SectorName = &sectorName
		}
		return patch, nil
	})
}

func (s *DefaultServiceOrderService) Delete(ctx context.Context, actor models.User, id string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("only admins can delete service orders")
	}
	if err := s.Orders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger().Info("Service order deleted", zap.String("orderId", id), zap.String("by", actor.UID))
	return nil
}

func (s *DefaultServiceOrderService) History(ctx context.Context, actor models.User, id string) ([]models.StatusChange, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if s.HistoryRepo == nil {
		return []models.StatusChange{}, nil
	}
	entries, err := s.HistoryRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.StatusChange{}
	}
	return entries, nil
}

// record appends to the audit trail. The trail is advisory: a failure is
// logged and does not undo the write it describes.
func (s *DefaultServiceOrderService) record(ctx context.Context, entry models.StatusChange) {
	if s.HistoryRepo == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := s.HistoryRepo.Record(ctx, entry); err != nil {
		s.logger().Warn("Failed to record status change",
			zap.String("orderId", entry.OrderID),
			zap.String("event", entry.Event),
			zap.Error(err))
	}
}
