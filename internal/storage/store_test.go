package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

func openBackends(t *testing.T) map[string]UserStore {
	t.Helper()
	stores := make(map[string]UserStore)
	for _, backend := range []string{BackendMemory, BackendBadger} {
		s, err := Open(backend, logger.Nop())
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = s.Close() })
		stores[backend] = s
	}
	return stores
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("postgres", logger.Nop())
	assert.Error(t, err)
}

func TestOpen_EmptyBackendIsMemory(t *testing.T) {
	s, err := Open("", logger.Nop())
	require.NoError(t, err)
	defer s.Close()
	_, isBadger := s.(*BadgerUserStore)
	assert.False(t, isBadger)
}

func TestUserStore_Backends(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Seed(ctx,
				domain.User{ID: "1", Username: "admin666", Password: "admin666"},
				domain.User{ID: "2", Username: "michael", Password: "michael"},
			))

			u, err := s.Find(ctx, "michael")
			require.NoError(t, err)
			assert.Equal(t, "2", u.ID)
			assert.Equal(t, "michael", u.Password)

			_, err = s.Find(ctx, "ghost1")
			assert.ErrorIs(t, err, domain.ErrUserNotFound)

			created, err := s.InsertIfAbsent(ctx, "alice1", "secret1", "a@b.co")
			require.NoError(t, err)
			assert.Equal(t, "3", created.ID)

			_, err = s.InsertIfAbsent(ctx, "alice1", "secret2", "a@b.co")
			assert.ErrorIs(t, err, domain.ErrUserExists)
			assert.Equal(t, "username: alice1 is registered", domain.GetErrorMessage(err))

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestUserStore_BackendsConcurrentRegistration(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 20
			var wg sync.WaitGroup
			var mu sync.Mutex
			wins := 0
			ids := make(map[string]bool)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if _, err := s.InsertIfAbsent(ctx, "shared", "secret1", "s@x.io"); err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
					}
					u, err := s.InsertIfAbsent(ctx, fmt.Sprintf("solo%02d", i), "secret1", "s@x.io")
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					ids[u.ID] = true
					mu.Unlock()
				}(i)
			}
			wg.Wait()

			assert.Equal(t, 1, wins, "shared username registered more than once")
			assert.Len(t, ids, workers, "ids must be distinct")
		})
	}
}

func TestBadgerUserStore_SeedIsAtomic(t *testing.T) {
	s, err := OpenBadgerUserStore(logger.Nop())
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	err = s.Seed(ctx,
		domain.User{Username: "first1"},
		domain.User{Username: "first1"},
	)
	require.ErrorIs(t, err, domain.ErrUserExists)

	_, err = s.Find(ctx, "first1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "aborted seed left a record behind")
	n, _ := s.Count(ctx)
	assert.Zero(t, n)
}
