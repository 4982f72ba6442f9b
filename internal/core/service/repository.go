package service

import (
	"context"

	"github.com/yndnr/tokgate/internal/core/domain"
)

// UserRepository is the credential store consulted by AuthService.
type UserRepository interface {
	// Find returns the user registered under username, or
	// domain.ErrUserNotFound.
	Find(ctx context.Context, username string) (*domain.User, error)

	// InsertIfAbsent registers a new user and returns the stored record.
	// The existence check and the insert are one atomic step; a taken
	// username yields domain.ErrUserExists. The assigned id is the store
	// size before insertion plus one, in decimal.
	InsertIfAbsent(ctx context.Context, username, password, email string) (*domain.User, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)
}

// SessionRegistry maps a username to the one token currently accepted for
// that user.
type SessionRegistry interface {
	// Put records token as the live token for username, replacing any
	// previous one.
	Put(ctx context.Context, username, token string)

	// Matches reports whether token is exactly the live token for username.
	Matches(ctx context.Context, username, token string) bool

	// Count returns the number of users holding a registered token.
	Count(ctx context.Context) int
}
