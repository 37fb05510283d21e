package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cloud.google.com/go/storage"
)

// GCSReportStore writes report exports into the Firebase Storage bucket.
type GCSReportStore struct {
	bucket     *storage.BucketHandle
	bucketName string
	urlTTL     time.Duration
}

func NewGCSReportStore(bucket *storage.BucketHandle, bucketName string) *GCSReportStore {
	return &GCSReportStore{bucket: bucket, bucketName: bucketName, urlTTL: 24 * time.Hour}
}

func (s *GCSReportStore) Put(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for %s: %w", objectPath, err)
	}

	signed, err := s.bucket.SignedURL(objectPath, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(s.urlTTL),
	})
	if err != nil {
		// Credentials without a signing key still get the authenticated
		// console URL.
		return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
			s.bucketName, url.QueryEscape(objectPath)), nil
	}
	return signed, nil
}
