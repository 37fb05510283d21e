package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const avatarFolder = "avatars"

// CloudinaryAvatarStore keeps one avatar per user under avatars/<uid>.
type CloudinaryAvatarStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryAvatarStore(cloudName, apiKey, apiSecret string) (*CloudinaryAvatarStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryAvatarStore{cld: cld}, nil
}

func (s *CloudinaryAvatarStore) UploadAvatar(ctx context.Context, uid string, file io.Reader) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       avatarFolder,
		PublicID:     uid,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload avatar: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("no URL returned for avatar upload")
	}
	return result.SecureURL, nil
}

func (s *CloudinaryAvatarStore) DeleteAvatar(ctx context.Context, uid string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: avatarFolder + "/" + uid})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
