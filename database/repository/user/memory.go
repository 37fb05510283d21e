package userRepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"servicedesk/apperrors"
	"servicedesk/models"
)

// MemoryUserRepo keeps users in process memory.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.UID]; exists {
		return &apperrors.ConflictError{Message: "a user with this id already exists"}
	}
	user.Email = strings.ToLower(user.Email)
	r.users[user.UID] = *user
	return nil
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, uid string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[uid]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", uid))
	}
	return &u, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("user with email %s not found", email))
}

func (r *MemoryUserRepo) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.User
	for _, u := range r.users {
		if filter.Matches(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryUserRepo) Update(ctx context.Context, uid string, upd models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[uid]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", uid))
	}
	upd.ApplyTo(&u)
	r.users[uid] = u
	return &u, nil
}

func (r *MemoryUserRepo) Delete(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[uid]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", uid))
	}
	delete(r.users, uid)
	return nil
}
