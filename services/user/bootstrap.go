package user

import (
	"context"
	"strings"

	"servicedesk/apperrors"
	"servicedesk/models"
	"servicedesk/utils"

	"go.uber.org/zap"
)

// EnsureAdmin creates an admin account for email unless a user with that
// email already exists. It reports whether an account was created.
func (s *DefaultUserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return false, err
	}

	u, err := s.createAccount(ctx, accountInput{
		Email:    email,
		Password: password,
		Name:     "Administrator",
		UserType: models.UserTypeAdmin,
	})
	if err != nil {
		return false, err
	}
	utils.GetLogger().Info("Bootstrap admin created", zap.String("uid", u.UID), zap.String("email", email))
	return true, nil
}
