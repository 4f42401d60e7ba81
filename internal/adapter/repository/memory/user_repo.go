// Package memory holds the live, in-process user set.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/simaogato/greenday-ledger/internal/domain"
)

// UserRepository implements domain.UserRepository over a map keyed by lower-cased username.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

var _ domain.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates an empty repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User)}
}

// Get retrieves a user by username, case-insensitively.
func (r *UserRepository) Get(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[domain.UserKey(username)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}
	return user, nil
}

// Put inserts or replaces a user under its key.
func (r *UserRepository) Put(ctx context.Context, user *domain.User) error {
	if user == nil || user.Key() == "" {
		return fmt.Errorf("%w: user without username", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	r.users[user.Key()] = user
	r.mu.Unlock()
	return nil
}

func (r *UserRepository) Exists(ctx context.Context, username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[domain.UserKey(username)]
	return ok
}

// FindByIdentifier is a linear scan; identifiers are not indexed.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: empty identifier", domain.ErrUserNotFound)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Identifier, identifier) {
			return user, nil
		}
	}
	return nil, fmt.Errorf("%w: identifier %s", domain.ErrUserNotFound, identifier)
}

// Snapshot returns the live users ordered by key.
func (r *UserRepository) Snapshot(ctx context.Context) []*domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Replace drops the current set. Later duplicates of a key win.
func (r *UserRepository) Replace(ctx context.Context, users []*domain.User) {
	next := make(map[string]*domain.User, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		next[user.Key()] = user
	}
	r.mu.Lock()
	r.users = next
	r.mu.Unlock()
}
