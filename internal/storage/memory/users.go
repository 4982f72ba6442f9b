package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/core/service"
)

var _ service.UserRepository = (*UserStore)(nil)

// UserStore is a map-backed credential store.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*domain.User),
	}
}

// Find retrieves a user by username.
func (s *UserStore) Find(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

// InsertIfAbsent registers username with the next sequential id.
func (s *UserStore) InsertIfAbsent(_ context.Context, username, password, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return nil, userExists(username)
	}

	u := &domain.User{
		ID:       strconv.Itoa(len(s.users) + 1),
		Username: username,
		Password: password,
		Email:    email,
	}
	s.users[username] = u

	return u.Clone(), nil
}

// Count returns the number of registered users.
func (s *UserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Seed inserts pre-identified users. A user without an id gets the next
// sequential one. Seeding a taken username fails and stops at that user.
func (s *UserStore) Seed(_ context.Context, users ...domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range users {
		u := users[i]
		if _, ok := s.users[u.Username]; ok {
			return userExists(u.Username)
		}
		if u.ID == "" {
			u.ID = strconv.Itoa(len(s.users) + 1)
		}
		s.users[u.Username] = &u
	}
	return nil
}

// Close is a no-op; it lets UserStore stand in wherever a closable store is
// expected.
func (s *UserStore) Close() error {
	return nil
}

func userExists(username string) *domain.DomainError {
	return domain.ErrUserExists.WithMessage(fmt.Sprintf("username: %s is registered", username))
}
