package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/tokgate/internal/core/domain"
)

func seeded(t *testing.T) *UserStore {
	t.Helper()
	s := NewUserStore()
	require.NoError(t, s.Seed(context.Background(),
		domain.User{ID: "1", Username: "admin666", Password: "admin666"},
		domain.User{ID: "2", Username: "michael", Password: "michael"},
	))
	return s
}

func TestUserStore_Find(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	u, err := s.Find(ctx, "admin666")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "1", Username: "admin666", Password: "admin666"}, u)

	u.Password = "changed"
	again, _ := s.Find(ctx, "admin666")
	assert.Equal(t, "admin666", again.Password, "Find returned shared state")

	_, err = s.Find(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserStore_InsertIfAbsent(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	u, err := s.InsertIfAbsent(ctx, "alice1", "secret1", "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "3", u.ID)
	assert.Equal(t, "secret1", u.Password)
	assert.Equal(t, "a@b.co", u.Email)

	_, err = s.InsertIfAbsent(ctx, "alice1", "other12", "x@y.zz")
	require.ErrorIs(t, err, domain.ErrUserExists)
	assert.Equal(t, "username: alice1 is registered", domain.GetErrorMessage(err))

	stored, _ := s.Find(ctx, "alice1")
	assert.Equal(t, "secret1", stored.Password, "duplicate registration overwrote the record")

	n, _ := s.Count(ctx)
	assert.Equal(t, 3, n)
}

func TestUserStore_SeedRejectsDuplicates(t *testing.T) {
	s := seeded(t)
	err := s.Seed(context.Background(), domain.User{Username: "michael", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserStore_SeedAssignsMissingIDs(t *testing.T) {
	s := NewUserStore()
	require.NoError(t, s.Seed(context.Background(), domain.User{Username: "first1"}, domain.User{Username: "second"}))

	u, _ := s.Find(context.Background(), "second")
	assert.Equal(t, "2", u.ID)
}

func TestUserStore_ConcurrentSameUsername(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertIfAbsent(ctx, "racer1", "secret1", "r@x.io")
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrUserExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestUserStore_ConcurrentDistinctUsernamesGetDistinctIDs(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	const n = 100
	ids := make([]string, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.InsertIfAbsent(ctx, fmt.Sprintf("user%03d", i), "secret1", "u@x.io")
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	nums := make([]int, 0, n)
	for _, id := range ids {
		v, err := strconv.Atoi(id)
		require.NoError(t, err, "non-numeric id %q", id)
		nums = append(nums, v)
	}
	sort.Ints(nums)
	for i, v := range nums {
		require.Equal(t, i+3, v, "ids are not 3..%d without gaps: %v", n+2, nums)
	}
}
