package identity

import (
	"context"
	"strings"
	"sync"

	"servicedesk/apperrors"

	"github.com/google/uuid"
)

// LocalProvider issues uids in process. It backs the memory store driver,
// where clients log in with session tokens only.
type LocalProvider struct {
	mu     sync.Mutex
	emails map[string]string
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{emails: make(map[string]string)}
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, exists := p.emails[key]; exists {
		return "", &apperrors.ConflictError{Message: "an account with this email already exists"}
	}
	uid := uuid.New().String()
	p.emails[key] = uid
	return uid, nil
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for email, id := range p.emails {
		if id == uid {
			delete(p.emails, email)
		}
	}
	return nil
}

func (p *LocalProvider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	return "", apperrors.NewAuthError("firebase tokens are not accepted by this server")
}
