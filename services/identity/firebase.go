package identity

import (
	"context"
	"fmt"

	"servicedesk/apperrors"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider is backed by Firebase Authentication.
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", &apperrors.ConflictError{Message: "an account with this email already exists"}
		}
		return "", apperrors.NewUpstreamError("failed to create auth account", err)
	}
	return rec.UID, nil
}

func (p *FirebaseProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return nil
		}
		return apperrors.NewUpstreamError(fmt.Sprintf("failed to delete auth account %s", uid), err)
	}
	return nil
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	tok, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", apperrors.NewAuthError("invalid or expired token")
	}
	return tok.UID, nil
}
