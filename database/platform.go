package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Platform holds the Firebase clients the server runs on: Firestore for
// documents, Auth for identities, Cloud Messaging for push and the default
// Storage bucket for report exports.
type Platform struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
	Messaging *messaging.Client
	Bucket    *gcs.BucketHandle
}

// FirebaseInit initializes the Firebase app and its clients. An empty
// credentialsFile falls back to application default credentials.
func FirebaseInit(ctx context.Context, credentialsFile, projectID, bucket string) (*Platform, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	p := &Platform{App: app}
	if p.Firestore, err = app.Firestore(ctx); err != nil {
		return nil, fmt.Errorf("firebase: error getting Firestore client: %w", err)
	}
	if p.Auth, err = app.Auth(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("firebase: error getting Auth client: %w", err)
	}
	if p.Messaging, err = app.Messaging(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	if bucket != "" {
		st, err := app.Storage(ctx)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("firebase: error getting Storage client: %w", err)
		}
		if p.Bucket, err = st.DefaultBucket(); err != nil {
			p.Close()
			return nil, fmt.Errorf("firebase: error opening bucket %s: %w", bucket, err)
		}
	}
	return p, nil
}

// Ping reads at most one document to check that Firestore answers.
func (p *Platform) Ping(ctx context.Context) error {
	it := p.Firestore.Collection("establishments").Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func (p *Platform) Close() {
	if p.Firestore != nil {
		_ = p.Firestore.Close()
	}
}
