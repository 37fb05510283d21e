package title

import (
	"context"
	"testing"

	"servicedesk/apperrors"
	titleRepo "servicedesk/database/repository/title"
	"servicedesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = models.User{UID: "A1", UserType: models.UserTypeAdmin}
	tech  = models.User{UID: "T1", UserType: models.UserTypeTechnician}
)

func TestTitleCatalogue(t *testing.T) {
	ctx := context.Background()
	s := &DefaultTitleService{Repo: titleRepo.NewMemoryTitleRepo()}

	ac, err := s.Create(ctx, admin, models.TitleRequest{Name: "Air conditioning"})
	require.NoError(t, err)
	assert.True(t, ac.IsActive)

	_, err = s.Create(ctx, admin, models.TitleRequest{Name: "air CONDITIONING"})
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	_, err = s.Create(ctx, tech, models.TitleRequest{Name: "Plumbing"})
	assert.Equal(t, 403, apperrors.HTTPStatus(err))

	off := false
	plumbing, err := s.Create(ctx, admin, models.TitleRequest{Name: "Plumbing", IsActive: &off})
	require.NoError(t, err)

	list, err := s.List(ctx, tech, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Air conditioning", list[0].Name)

	list, err = s.List(ctx, admin, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = s.Update(ctx, admin, plumbing.ID, models.TitleRequest{Name: "Air Conditioning"})
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	on := true
	got, err := s.Update(ctx, admin, plumbing.ID, models.TitleRequest{Name: "Plumbing", Description: "Leaks, drains", IsActive: &on})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "Leaks, drains", got.Description)

	require.NoError(t, s.Delete(ctx, admin, ac.ID))
	assert.Equal(t, 404, apperrors.HTTPStatus(s.Delete(ctx, admin, ac.ID)))
}
