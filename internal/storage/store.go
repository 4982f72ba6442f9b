package storage

import (
	"context"
	"fmt"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/core/service"
	"github.com/yndnr/tokgate/internal/storage/memory"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// Credential backends accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// UserStore is a credential store that can be seeded at start-up and
// released at shutdown.
type UserStore interface {
	service.UserRepository

	// Seed bulk-inserts pre-identified users.
	Seed(ctx context.Context, users ...domain.User) error

	// Close releases the backend.
	Close() error
}

// Open creates the credential store for backend.
func Open(backend string, log logger.Logger) (UserStore, error) {
	switch backend {
	case "", BackendMemory:
		return memory.NewUserStore(), nil
	case BackendBadger:
		return OpenBadgerUserStore(log)
	default:
		return nil, fmt.Errorf("unknown credential backend %q", backend)
	}
}
