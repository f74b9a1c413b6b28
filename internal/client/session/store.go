// Package session holds the client's belief about who is logged in.
//
// Store is the single writer of the session: every mutation is written
// through to durable Storage before the in-memory state changes, and every
// new state is pushed to the subscribers registered with Subscribe.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/contestclient/internal/client/models"
	"github.com/dmitrijs2005/contestclient/internal/logging"
	"github.com/google/uuid"
)

// State is an immutable snapshot of the session.
type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	Loading         bool
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func authenticated(user models.User, token string) State {
	return State{User: &user, Token: token, IsAuthenticated: true}
}

// Listener receives session snapshots. Listeners run on the goroutine that
// caused the change and must not call Store mutators.
type Listener func(State)

type subscriber struct {
	id uuid.UUID
	fn Listener
}

type Store struct {
	// writeMu serialises mutations together with their notifications so
	// subscribers observe states in order.
	writeMu sync.Mutex

	mu      sync.RWMutex
	state   State
	subs    []subscriber
	closed  bool
	storage Storage
	logger  logging.Logger
}

// NewStore returns an empty store in the loading state. Call Restore once at
// startup.
func NewStore(storage Storage, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		state:   State{Loading: true},
		storage: storage,
		logger:  logger.With("component", "session"),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Token returns the current bearer token, "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Subscribe registers fn, immediately delivers the current state to it, and
// returns a function that removes the subscription.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id := uuid.New()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	current := s.state.clone()
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Restore loads the session from storage. Only a complete, decodable
// token+user pair restores an authenticated session; anything else yields
// the empty state and wipes the leftover entry.
func (s *Store) Restore(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	token, rawUser, err := s.storage.Load(ctx)
	if err != nil {
		s.logger.Warn(ctx, "session restore failed, starting logged out", "error", err)
		s.set(State{})
		return fmt.Errorf("%w: load: %v", ErrStorage, err)
	}

	if token == "" || rawUser == "" {
		if token != "" || rawUser != "" {
			s.logger.Warn(ctx, "partial session in storage, discarding")
			if err := s.storage.Remove(ctx); err != nil {
				s.logger.Error(ctx, "failed to discard partial session", "error", err)
			}
		}
		s.set(State{})
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn(ctx, "stored user is unreadable, discarding session", "error", err)
		if err := s.storage.Remove(ctx); err != nil {
			s.logger.Error(ctx, "failed to discard unreadable session", "error", err)
		}
		s.set(State{})
		return nil
	}

	s.logger.Debug(ctx, "session restored", "user", user.Username)
	s.set(authenticated(user, token))
	return nil
}

// SetAuthenticated persists user and token, then switches to the
// authenticated state. On a storage failure the state is left unchanged.
func (s *Store) SetAuthenticated(ctx context.Context, user models.User, token string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist(ctx, user, token); err != nil {
		return err
	}
	s.set(authenticated(user, token))
	return nil
}

// Clear removes the stored session and resets to the empty state. The
// in-memory state is cleared even when storage fails.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.storage.Remove(ctx)
	s.set(State{})

	if err != nil {
		s.logger.Error(ctx, "failed to remove stored session", "error", err)
		return fmt.Errorf("%w: remove: %v", ErrStorage, err)
	}
	return nil
}

// PatchUser merges patch into the current user and re-persists it. It is a
// no-op when nobody is logged in.
func (s *Store) PatchUser(ctx context.Context, patch models.UserPatch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Snapshot()
	if !current.IsAuthenticated {
		return nil
	}

	user := patch.Apply(*current.User)
	if err := s.persist(ctx, user, current.Token); err != nil {
		return err
	}
	s.set(authenticated(user, current.Token))
	return nil
}

// Close drops every subscriber. The store keeps working for reads and
// mutations, but nothing is notified any more.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = nil
	s.closed = true
}

func (s *Store) persist(ctx context.Context, user models.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: encode user: %v", ErrStorage, err)
	}
	if err := s.storage.Save(ctx, token, string(raw)); err != nil {
		s.logger.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("%w: save: %v", ErrStorage, err)
	}
	return nil
}

// set replaces the state and notifies subscribers. Callers hold writeMu.
func (s *Store) set(next State) {
	s.mu.Lock()
	s.state = next
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next.clone())
	}
}
