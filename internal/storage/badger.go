package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

const userKeyPrefix = "user/"

// BadgerUserStore keeps users in an in-memory Badger database.
//
// Registration is serialized by mu so the id derived from the current count
// and the insert commit as one step.
type BadgerUserStore struct {
	db     *badger.DB
	logger logger.Logger

	mu    sync.Mutex
	count int
}

// OpenBadgerUserStore opens an empty in-memory Badger database.
func OpenBadgerUserStore(log logger.Logger) (*BadgerUserStore, error) {
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithMemTableSize(8 << 20).
		WithBlockCacheSize(8 << 20).
		WithLogger(&badgerLogger{logger: log.With("component", "badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Info("badger credential store opened", "in_memory", true)

	return &BadgerUserStore{
		db:     db,
		logger: log,
	}, nil
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

// Find retrieves a user by username.
func (s *BadgerUserStore) Find(_ context.Context, username string) (*domain.User, error) {
	var u domain.User

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &u)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrStorage.WithCause(err)
	}

	return &u, nil
}

// InsertIfAbsent registers username with the next sequential id.
func (s *BadgerUserStore) InsertIfAbsent(_ context.Context, username, password, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &domain.User{
		ID:       strconv.Itoa(s.count + 1),
		Username: username,
		Password: password,
		Email:    email,
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return putIfAbsent(txn, u)
	}); err != nil {
		return nil, storageError(err)
	}

	s.count++
	return u.Clone(), nil
}

// Count returns the number of registered users.
func (s *BadgerUserStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, nil
}

// Seed inserts users in one transaction. Users without an id get the next
// sequential one; a taken username aborts the whole seed.
func (s *BadgerUserStore) Seed(_ context.Context, users ...domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.count
	err := s.db.Update(func(txn *badger.Txn) error {
		for i := range users {
			u := users[i]
			next++
			if u.ID == "" {
				u.ID = strconv.Itoa(next)
			}
			if err := putIfAbsent(txn, &u); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageError(err)
	}

	s.count = next
	return nil
}

// Close closes the database.
func (s *BadgerUserStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger credential store closed")
	return nil
}

func putIfAbsent(txn *badger.Txn, u *domain.User) error {
	key := userKey(u.Username)

	_, err := txn.Get(key)
	switch {
	case err == nil:
		return userExists(u.Username)
	case !errors.Is(err, badger.ErrKeyNotFound):
		return domain.ErrStorage.WithCause(err)
	}

	val, err := json.Marshal(u)
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	if err := txn.Set(key, val); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// storageError passes domain errors through and wraps everything else,
// including commit failures, as ErrStorage.
func storageError(err error) error {
	if domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStorage.WithCause(err)
}

func userExists(username string) *domain.DomainError {
	return domain.ErrUserExists.WithMessage(fmt.Sprintf("username: %s is registered", username))
}

// badgerLogger adapts Logger to Badger's Logger interface. Badger's info
// chatter is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
