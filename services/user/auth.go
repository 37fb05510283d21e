package user

import (
	"context"
	"strings"

	"servicedesk/apperrors"
	"servicedesk/models"
	"servicedesk/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates an end-user account bound to an establishment and logs
// it in.
func (s *DefaultUserService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResponse, error) {
	if err := s.requireActiveEstablishment(ctx, req.EstablishmentID); err != nil {
		return nil, err
	}
	u, err := s.createAccount(ctx, accountInput{
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		Phone:           req.Phone,
		UserType:        models.UserTypeEndUser,
		EstablishmentID: req.EstablishmentID,
	})
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("User registered", zap.String("uid", u.UID), zap.String("establishmentId", u.EstablishmentID))
	return s.issue(*u)
}

// Login checks the password against the stored bcrypt hash and issues a
// session token.
func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewAuthError("invalid email or password")
		}
		utils.GetLogger().Error("Login: failed to fetch user", zap.Error(err))
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperrors.NewAuthError("invalid email or password")
	}
	if !u.IsActive {
		return nil, apperrors.NewForbiddenError("account is disabled")
	}
	return s.issue(*u)
}

func (s *DefaultUserService) issue(u models.User) (*AuthResponse, error) {
	token, expires, err := s.Tokens.Generate(u)
	if err != nil {
		utils.GetLogger().Error("Failed to sign session token", zap.String("uid", u.UID), zap.Error(err))
		return nil, apperrors.NewUpstreamError("failed to issue session token", err)
	}
	return &AuthResponse{Token: token, ExpiresAt: expires, User: u}, nil
}

type accountInput struct {
	Email           string
	Password        string
	Name            string
	Phone           string
	UserType        models.UserType
	EstablishmentID string
}

// createAccount provisions the identity account and the user document. The
// identity account is removed again if the document cannot be written.
func (s *DefaultUserService) createAccount(ctx context.Context, in accountInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, &apperrors.ConflictError{Message: "a user with this email already exists"}
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("Failed to hash password", zap.Error(err))
		return nil, apperrors.NewUpstreamError("failed to hash password", err)
	}

	uid, err := s.Identity.CreateAccount(ctx, email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &models.User{
		UID:             uid,
		Email:           email,
		Name:            strings.TrimSpace(in.Name),
		Phone:           strings.TrimSpace(in.Phone),
		UserType:        in.UserType,
		EstablishmentID: in.EstablishmentID,
		IsActive:        true,
		PasswordHash:    string(hash),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if derr := s.Identity.DeleteAccount(ctx, uid); derr != nil {
			utils.GetLogger().Error("Failed to roll back auth account", zap.String("uid", uid), zap.Error(derr))
		}
		return nil, err
	}
	return u, nil
}

func (s *DefaultUserService) requireActiveEstablishment(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("establishmentId is required",
			apperrors.ValidationDetail{Field: "establishmentId", Message: "required field"})
	}
	est, err := s.Establishments.GetByID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewValidationError("establishment not found",
				apperrors.ValidationDetail{Field: "establishmentId", Message: "no such establishment"})
		}
		return err
	}
	if !est.IsActive {
		return apperrors.NewValidationError("establishment is inactive",
			apperrors.ValidationDetail{Field: "establishmentId", Message: "must reference an active establishment"})
	}
	return nil
}
