package user

import (
	"context"
	"io"
	"time"

	establishmentRepo "servicedesk/database/repository/establishment"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/services/identity"
	"servicedesk/services/storage"
	"servicedesk/utils"
)

type UserService interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*AuthResponse, error)

	// User Management
	Create(ctx context.Context, actor models.User, req models.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, actor models.User, uid string) (*models.User, error)
	List(ctx context.Context, actor models.User, filter userRepo.UserFilter) ([]models.User, error)
	ListTechnicians(ctx context.Context, actor models.User) ([]models.User, error)
	Update(ctx context.Context, actor models.User, uid string, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor models.User, uid string) error

	// Self-service
	UploadAvatar(ctx context.Context, actor models.User, file io.Reader) (*models.User, error)
	SetDeviceToken(ctx context.Context, actor models.User, token string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo           userRepo.UserRepository
	Establishments establishmentRepo.EstablishmentRepository
	Identity       identity.Provider
	Tokens         *utils.SessionTokens
	Avatars        storage.AvatarStore
	Cache          utils.UserCache
	Now            func() time.Time
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultUserService) invalidate(ctx context.Context, uid string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, uid)
	}
}
