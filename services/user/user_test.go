package user

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"servicedesk/apperrors"
	establishmentRepo "servicedesk/database/repository/establishment"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/services/identity"
	"servicedesk/services/storage"
	"servicedesk/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCache struct {
	utils.NoopUserCache
	mu          sync.Mutex
	invalidated []string
}

func (c *recordingCache) Invalidate(ctx context.Context, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, uid)
}

var admin = models.User{UID: "A1", Name: "Ada", UserType: models.UserTypeAdmin, IsActive: true}

func newService(t *testing.T) (*DefaultUserService, *recordingCache) {
	t.Helper()
	ctx := context.Background()

	ests := establishmentRepo.NewMemoryEstablishmentRepo()
	require.NoError(t, ests.Create(ctx, &models.Establishment{ID: "E1", Name: "Main Office", IsActive: true}))
	require.NoError(t, ests.Create(ctx, &models.Establishment{ID: "E2", Name: "Closed Site"}))

	tokens, err := utils.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)

	cache := &recordingCache{}
	return &DefaultUserService{
		Repo:           userRepo.NewMemoryUserRepo(),
		Establishments: ests,
		Identity:       identity.NewLocalProvider(),
		Tokens:         tokens,
		Avatars:        storage.NewMemoryStore(),
		Cache:          cache,
	}, cache
}

func register(t *testing.T, s *DefaultUserService, email string) *AuthResponse {
	t.Helper()
	resp, err := s.Register(context.Background(), models.RegisterRequest{
		Email:           email,
		Password:        "correct-horse",
		Name:            "Uma User",
		Phone:           "+5511999990000",
		EstablishmentID: "E1",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	resp := register(t, s, "Uma@Example.com")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "uma@example.com", resp.User.Email)
	assert.Equal(t, models.UserTypeEndUser, resp.User.UserType)
	assert.True(t, resp.User.IsActive)
	assert.NotEqual(t, "correct-horse", resp.User.PasswordHash)

	sub, err := s.Tokens.Subject(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.UID, sub)

	login, err := s.Login(ctx, models.LoginRequest{Email: "uma@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.UID, login.User.UID)

	_, err = s.Login(ctx, models.LoginRequest{Email: "uma@example.com", Password: "wrong"})
	assert.Equal(t, 401, apperrors.HTTPStatus(err))

	_, err = s.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
}

func TestRegister_Rejections(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	register(t, s, "uma@example.com")

	req := models.RegisterRequest{Email: "UMA@example.com", Password: "correct-horse", Name: "Dup", Phone: "+5511999990001", EstablishmentID: "E1"}
	_, err := s.Register(ctx, req)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	req.Email = "other@example.com"
	req.EstablishmentID = "E2"
	_, err = s.Register(ctx, req)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	req.EstablishmentID = "E404"
	_, err = s.Register(ctx, req)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestLogin_DisabledAccount(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	resp := register(t, s, "uma@example.com")

	inactive := false
	_, err := s.Update(ctx, admin, resp.User.UID, models.UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = s.Login(ctx, models.LoginRequest{Email: "uma@example.com", Password: "correct-horse"})
	assert.Equal(t, 403, apperrors.HTTPStatus(err))
}

func TestCreateByAdmin(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	tech, err := s.Create(ctx, admin, models.CreateUserRequest{
		Email: "tom@example.com", Password: "wrench-123", Name: "Tom", Phone: "+5511988887777",
		UserType: models.UserTypeTechnician,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeTechnician, tech.UserType)
	assert.Empty(t, tech.EstablishmentID)

	_, err = s.Create(ctx, admin, models.CreateUserRequest{
		Email: "eve@example.com", Password: "password-1", Name: "Eve", Phone: "+5511900000000",
		UserType: models.UserTypeEndUser,
	})
	assert.Equal(t, 400, apperrors.HTTPStatus(err), "end-users need an establishment")

	_, err = s.Create(ctx, *tech, models.CreateUserRequest{
		Email: "x@example.com", Password: "password-1", Name: "X", Phone: "+5511900000001",
		UserType: models.UserTypeAdmin,
	})
	assert.Equal(t, 403, apperrors.HTTPStatus(err))

	techs, err := s.ListTechnicians(ctx, admin)
	require.NoError(t, err)
	require.Len(t, techs, 1)
	assert.Equal(t, tech.UID, techs[0].UID)
}

func TestUpdate(t *testing.T) {
	s, cache := newService(t)
	ctx := context.Background()
	u := register(t, s, "uma@example.com").User

	name := "  Uma Updated "
	got, err := s.Update(ctx, u, u.UID, models.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Uma Updated", got.Name)
	assert.Equal(t, u.Phone, got.Phone)
	assert.Contains(t, cache.invalidated, u.UID)

	promote := models.UserTypeAdmin
	_, err = s.Update(ctx, u, u.UID, models.UpdateUserRequest{UserType: &promote})
	assert.Equal(t, 403, apperrors.HTTPStatus(err), "users cannot change their own role")

	_, err = s.Update(ctx, u, "someone-else", models.UpdateUserRequest{Name: &name})
	assert.Equal(t, 403, apperrors.HTTPStatus(err))

	empty := ""
	_, err = s.Update(ctx, admin, u.UID, models.UpdateUserRequest{EstablishmentID: &empty})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestDelete(t *testing.T) {
	s, cache := newService(t)
	ctx := context.Background()
	u := register(t, s, "uma@example.com").User

	assert.Equal(t, 403, apperrors.HTTPStatus(s.Delete(ctx, u, u.UID)))
	assert.Equal(t, 400, apperrors.HTTPStatus(s.Delete(ctx, admin, admin.UID)))

	require.NoError(t, s.Delete(ctx, admin, u.UID))
	assert.Contains(t, cache.invalidated, u.UID)

	_, err := s.Get(ctx, admin, u.UID)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))

	// the identity account is gone too, so the email can register again
	register(t, s, "uma@example.com")
}

func TestUploadAvatarAndDeviceToken(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	u := register(t, s, "uma@example.com").User

	got, err := s.UploadAvatar(ctx, u, strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "memory://avatars/"+u.UID, got.AvatarURL)

	require.NoError(t, s.SetDeviceToken(ctx, u, "fcm-token-1"))
	stored, err := s.Repo.GetByID(ctx, u.UID)
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-1", stored.DeviceToken)

	assert.Equal(t, 400, apperrors.HTTPStatus(s.SetDeviceToken(ctx, u, " ")))
}

func TestEnsureAdmin(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, "", "whatever")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = s.EnsureAdmin(ctx, " Root@Example.com ", "bootstrap-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin(ctx, "root@example.com", "other-pass")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := s.Login(ctx, models.LoginRequest{Email: "root@example.com", Password: "bootstrap-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeAdmin, resp.User.UserType)
}
