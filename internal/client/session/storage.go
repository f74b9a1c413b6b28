package session

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/contestclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/contestclient/internal/dbx"
)

// Storage keys of the two durable session entries.
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

// ErrStorage wraps every durable storage failure surfaced by the Store.
var ErrStorage = errors.New("session storage failure")

// Storage persists the token and the serialised user. Save and Remove must
// affect both entries atomically. Load returns empty strings for absent
// entries.
type Storage interface {
	Load(ctx context.Context) (token string, user string, err error)
	Save(ctx context.Context, token string, user string) error
	Remove(ctx context.Context) error
}

// DBStorage keeps the session in the session_kv table of the local SQLite
// database.
type DBStorage struct {
	db *sql.DB
}

func NewDBStorage(db *sql.DB) *DBStorage {
	return &DBStorage{db: db}
}

func (s *DBStorage) Load(ctx context.Context) (string, string, error) {
	var token, user string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		var err error
		if token, _, err = repo.Get(ctx, KeyToken); err != nil {
			return err
		}
		user, _, err = repo.Get(ctx, KeyUser)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return token, user, nil
}

func (s *DBStorage) Save(ctx context.Context, token string, user string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, user)
	})
}

func (s *DBStorage) Remove(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, KeyToken, KeyUser)
}

// MemoryStorage is a process-local Storage, used for tests and for runs
// that must not leave a session behind.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

func (m *MemoryStorage) Load(context.Context) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[KeyToken], m.entries[KeyUser], nil
}

func (m *MemoryStorage) Save(_ context.Context, token string, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[KeyToken] = token
	m.entries[KeyUser] = user
	return nil
}

func (m *MemoryStorage) Remove(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, KeyToken)
	delete(m.entries, KeyUser)
	return nil
}

// Put writes a single raw entry. Tests use it to seed partial state.
func (m *MemoryStorage) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

// Entries returns a copy of the stored entries.
func (m *MemoryStorage) Entries() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
