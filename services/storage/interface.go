package storage

import (
	"context"
	"io"
)

// AvatarStore holds user profile pictures.
type AvatarStore interface {
	// UploadAvatar replaces the avatar of uid and returns its public URL.
	UploadAvatar(ctx context.Context, uid string, file io.Reader) (string, error)
	DeleteAvatar(ctx context.Context, uid string) error
}

// ReportStore holds exported report files.
type ReportStore interface {
	// Put writes data at objectPath and returns a download URL for it.
	Put(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}
