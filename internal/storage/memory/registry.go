package memory

import (
	"context"

	"github.com/yndnr/tokgate/internal/core/service"
	"github.com/yndnr/tokgate/pkg/cmap"
)

var _ service.SessionRegistry = (*SessionRegistry)(nil)

// SessionRegistry holds the live token per username.
type SessionRegistry struct {
	tokens *cmap.Map[string]
}

// NewSessionRegistry creates a registry spread over shards shards.
// shards must be a power of two; other values use cmap.DefaultShardCount.
func NewSessionRegistry(shards int) *SessionRegistry {
	return &SessionRegistry{
		tokens: cmap.NewWithShards[string](shards),
	}
}

// Put overwrites the live token for username.
func (r *SessionRegistry) Put(_ context.Context, username, token string) {
	r.tokens.Set(username, token)
}

// Matches reports whether token is byte-for-byte the live token.
func (r *SessionRegistry) Matches(_ context.Context, username, token string) bool {
	current, ok := r.tokens.Get(username)
	return ok && current == token
}

// Count returns how many users have a live token.
func (r *SessionRegistry) Count(_ context.Context) int {
	return r.tokens.Count()
}

// ShardStats exposes per-shard occupancy.
func (r *SessionRegistry) ShardStats() []cmap.ShardStats {
	return r.tokens.Stats()
}
