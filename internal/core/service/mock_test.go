package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/pkg/token"
)

type mockUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	insertErr error
	findErr   error
}

func newMockUserRepo(seed ...domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[string]*domain.User)}
	for i := range seed {
		u := seed[i]
		m.users[u.Username] = &u
	}
	return m
}

func (m *mockUserRepo) Find(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (m *mockUserRepo) InsertIfAbsent(_ context.Context, username, password, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if _, ok := m.users[username]; ok {
		return nil, domain.ErrUserExists.WithMessage(fmt.Sprintf("username: %s is registered", username))
	}
	u := &domain.User{ID: strconv.Itoa(len(m.users) + 1), Username: username, Password: password, Email: email}
	m.users[username] = u
	return u.Clone(), nil
}

func (m *mockUserRepo) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type mockRegistry struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{tokens: make(map[string]string)}
}

func (m *mockRegistry) Put(_ context.Context, username, tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[username] = tok
}

func (m *mockRegistry) Matches(_ context.Context, username, tok string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tokens[username]
	return ok && cur == tok
}

func (m *mockRegistry) Count(context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func (m *mockRegistry) get(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[username]
}

// failingCodec issues nothing and verifies through the wrapped codec.
type failingCodec struct {
	*token.Codec
}

func (failingCodec) Issue(string, string) (string, error) {
	return "", errors.New("signer unavailable")
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{counts: make(map[string]int)}
}

func (r *countingRecorder) RecordAuth(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[op+"/"+result]++
}

func (r *countingRecorder) get(op, result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[op+"/"+result]
}
