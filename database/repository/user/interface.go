package userRepo

import (
	"context"

	"servicedesk/models"
)

// UserFilter narrows a user listing. Empty fields are ignored.
type UserFilter struct {
	UserType        models.UserType
	EstablishmentID string
	ActiveOnly      bool
}

func (f UserFilter) Matches(u models.User) bool {
	if f.UserType != "" && u.UserType != f.UserType {
		return false
	}
	if f.EstablishmentID != "" && u.EstablishmentID != f.EstablishmentID {
		return false
	}
	if f.ActiveOnly && !u.IsActive {
		return false
	}
	return true
}

// UserRepository defines data access for application users.
type UserRepository interface {
	// Create inserts a user keyed by its UID.
	Create(ctx context.Context, user *models.User) error
	// GetByID returns apperrors.NotFoundError when the user does not exist.
	GetByID(ctx context.Context, uid string) (*models.User, error)
	// GetByEmail returns apperrors.NotFoundError when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// List returns users matching the filter ordered by name.
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	// Update writes only the populated fields of upd.
	Update(ctx context.Context, uid string, upd models.UserUpdate) (*models.User, error)
	// Delete removes a user document.
	Delete(ctx context.Context, uid string) error
}
