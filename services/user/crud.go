package user

import (
	"context"
	"strings"

	"servicedesk/apperrors"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/utils"

	"go.uber.org/zap"
)

func requireAdmin(actor models.User) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbiddenError("admin access required")
	}
	return nil
}

// Create lets an admin provision a user of any type.
func (s *DefaultUserService) Create(ctx context.Context, actor models.User, req models.CreateUserRequest) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !req.UserType.Valid() {
		return nil, apperrors.NewValidationError("invalid userType",
			apperrors.ValidationDetail{Field: "userType", Message: "must be one of admin, technician, end_user"})
	}
	if req.UserType == models.UserTypeEndUser || req.EstablishmentID != "" {
		if err := s.requireActiveEstablishment(ctx, req.EstablishmentID); err != nil {
			return nil, err
		}
	}

	u, err := s.createAccount(ctx, accountInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		Phone:           req.Phone,
		UserType:        req.UserType,
		EstablishmentID: req.EstablishmentID,
	})
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("User created",
		zap.String("uid", u.UID),
		zap.String("userType", string(u.UserType)),
		zap.String("by", actor.UID))
	return u, nil
}

// Get returns a user to an admin or to the user themself.
func (s *DefaultUserService) Get(ctx context.Context, actor models.User, uid string) (*models.User, error) {
	if !actor.IsAdmin() && actor.UID != uid {
		return nil, apperrors.NewForbiddenError("not allowed to view this user")
	}
	return s.Repo.GetByID(ctx, uid)
}

func (s *DefaultUserService) List(ctx context.Context, actor models.User, filter userRepo.UserFilter) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if filter.UserType != "" && !filter.UserType.Valid() {
		return nil, apperrors.NewValidationError("invalid userType filter",
			apperrors.ValidationDetail{Field: "userType", Message: "must be one of admin, technician, end_user"})
	}
	users, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// ListTechnicians returns the active technicians an order can be assigned to.
func (s *DefaultUserService) ListTechnicians(ctx context.Context, actor models.User) ([]models.User, error) {
	return s.List(ctx, actor, userRepo.UserFilter{UserType: models.UserTypeTechnician, ActiveOnly: true})
}

// Update applies an admin edit, or a self edit limited to name and phone.
func (s *DefaultUserService) Update(ctx context.Context, actor models.User, uid string, req models.UpdateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		if actor.UID != uid {
			return nil, apperrors.NewForbiddenError("not allowed to edit this user")
		}
		if req.UserType != nil || req.IsActive != nil || req.EstablishmentID != nil {
			return nil, apperrors.NewForbiddenError("only admins can change role, status or establishment")
		}
	}
	if req.UserType != nil && !req.UserType.Valid() {
		return nil, apperrors.NewValidationError("invalid userType",
			apperrors.ValidationDetail{Field: "userType", Message: "must be one of admin, technician, end_user"})
	}

	current, err := s.Repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if req.EstablishmentID != nil && *req.EstablishmentID != "" {
		if err := s.requireActiveEstablishment(ctx, *req.EstablishmentID); err != nil {
			return nil, err
		}
	}
	targetType := current.UserType
	if req.UserType != nil {
		targetType = *req.UserType
	}
	targetEst := current.EstablishmentID
	if req.EstablishmentID != nil {
		targetEst = *req.EstablishmentID
	}
	if targetType == models.UserTypeEndUser && targetEst == "" {
		return nil, apperrors.NewValidationError("end-users need an establishment",
			apperrors.ValidationDetail{Field: "establishmentId", Message: "required for end_user"})
	}

	upd := models.UserUpdate{
		UserType:        req.UserType,
		EstablishmentID: req.EstablishmentID,
		IsActive:        req.IsActive,
		UpdatedAt:       s.now(),
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		upd.Name = &name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		upd.Phone = &phone
	}

	updated, err := s.Repo.Update(ctx, uid, upd)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, uid)
	return updated, nil
}

// Delete removes the user document and its identity account.
func (s *DefaultUserService) Delete(ctx context.Context, actor models.User, uid string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.UID == uid {
		return apperrors.NewValidationError("admins cannot delete their own account")
	}
	if err := s.Repo.Delete(ctx, uid); err != nil {
		return err
	}
	s.invalidate(ctx, uid)
	if err := s.Identity.DeleteAccount(ctx, uid); err != nil {
		utils.GetLogger().Warn("User document deleted but auth account remains", zap.String("uid", uid), zap.Error(err))
	}
	utils.GetLogger().Info("User deleted", zap.String("uid", uid), zap.String("by", actor.UID))
	return nil
}
