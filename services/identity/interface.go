package identity

import "context"

// Provider owns the login identities behind application users. The uid it
// returns is the key of the user document.
type Provider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	DeleteAccount(ctx context.Context, uid string) error
	// VerifyIDToken checks a client-issued ID token and returns its uid.
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}
