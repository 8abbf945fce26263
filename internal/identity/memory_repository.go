package identity

import (
	"context"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by lowercased email
}

// NewMemoryRepository builds an in-memory user store for testing. It
// enforces the same case-insensitive email uniqueness the Postgres index
// guarantees.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := r.users[key]; exists {
		return ErrDuplicateEmail
	}
	r.users[key] = user
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldKey string
	found := false
	for key, existing := range r.users {
		if existing.ID == user.ID {
			oldKey, found = key, true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	newKey := strings.ToLower(user.Email)
	if newKey != oldKey {
		if _, taken := r.users[newKey]; taken {
			return ErrDuplicateEmail
		}
		delete(r.users, oldKey)
	}
	r.users[newKey] = user
	return nil
}
