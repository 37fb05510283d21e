package user

import (
	"context"
	"io"
	"strings"

	"servicedesk/apperrors"
	"servicedesk/models"
	"servicedesk/utils"

	"go.uber.org/zap"
)

// UploadAvatar stores a new profile picture for the caller.
func (s *DefaultUserService) UploadAvatar(ctx context.Context, actor models.User, file io.Reader) (*models.User, error) {
	if s.Avatars == nil {
		return nil, apperrors.NewUpstreamError("avatar storage is not configured", nil)
	}
	url, err := s.Avatars.UploadAvatar(ctx, actor.UID, file)
	if err != nil {
		utils.GetLogger().Error("Avatar upload failed", zap.String("uid", actor.UID), zap.Error(err))
		return nil, apperrors.NewUpstreamError("failed to upload avatar", err)
	}
	updated, err := s.Repo.Update(ctx, actor.UID, models.UserUpdate{AvatarURL: &url, UpdatedAt: s.now()})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, actor.UID)
	return updated, nil
}

// SetDeviceToken records the FCM token push messages go to.
func (s *DefaultUserService) SetDeviceToken(ctx context.Context, actor models.User, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewValidationError("token is required",
			apperrors.ValidationDetail{Field: "token", Message: "required field"})
	}
	_, err := s.Repo.Update(ctx, actor.UID, models.UserUpdate{DeviceToken: &token, UpdatedAt: s.now()})
	return err
}
