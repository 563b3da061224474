// Package store holds the synchronized, owner-scoped collections backing
// the client's working set (notes and ECG results). Each collection keeps
// an in-memory copy that mutates optimistically, persists remotely, and
// reconciles against server truth whenever the push channel reports a
// change to the owner's rows.
package store

import (
	"context"
	"sync"

	"cardionote-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// State is the lifecycle of one collection.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Persistence is the remote side of a synchronized collection. List must
// return rows ordered by last-updated descending; Insert lets the server
// assign the id and timestamps. Subscribe delivers a callback on any
// change to the owner's rows and returns an unsubscribe handle.
type Persistence[T any] interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]T, error)
	Insert(ctx context.Context, ownerID uuid.UUID, defaults map[string]interface{}) (T, error)
	Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error
	Subscribe(ownerID uuid.UUID, onChange func()) (func(), error)
}

// Config wires one collection type into a Store.
type Config[T any] struct {
	Name        string // collection name, used in logs
	Persistence Persistence[T]
	// ID extracts the entity identifier.
	ID func(T) uuid.UUID
	// Apply returns the entity with a partial field patch applied. It is
	// the local mirror of Persistence.Update.
	Apply  func(T, map[string]interface{}) T
	Logger logger.ILogger
}

// Store owns the in-memory collection for a single owner. Local state
// mutations happen under the mutex; remote calls happen outside it, so
// two in-flight operations interleave only at network boundaries and
// last-writer-wins at the remote store.
type Store[T any] struct {
	cfg   Config[T]
	owner uuid.UUID

	mu          sync.Mutex
	state       State
	items       []T
	selected    uuid.UUID
	lastError   string
	unsubscribe func()
}

func New[T any](owner uuid.UUID, cfg Config[T]) *Store[T] {
	return &Store[T]{
		cfg:   cfg,
		owner: owner,
		state: StateIdle,
	}
}

// Load fetches the full collection and establishes the push subscription.
// Calling it again replaces the previous subscription instead of stacking
// a duplicate. On fetch failure the collection is left unchanged.
func (s *Store[T]) Load(ctx context.Context) error {
	if s.owner == uuid.Nil {
		return nil
	}

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.state = StateLoading
	s.mu.Unlock()

	cancel, err := s.cfg.Persistence.Subscribe(s.owner, func() {
		s.reload()
	})
	if err != nil {
		s.fail("load", err)
		return err
	}

	s.mu.Lock()
	s.unsubscribe = cancel
	s.mu.Unlock()

	return s.fetch(ctx)
}

// fetch pulls the owner's rows and replaces the collection wholesale,
// keeping the current selection by id when still present and defaulting
// to the first row otherwise.
func (s *Store[T]) fetch(ctx context.Context) error {
	rows, err := s.cfg.Persistence.List(ctx, s.owner)
	if err != nil {
		s.fail("load", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = rows
	s.state = StateReady
	s.lastError = ""

	if s.indexOfLocked(s.selected) < 0 {
		if len(s.items) > 0 {
			s.selected = s.cfg.ID(s.items[0])
		} else {
			s.selected = uuid.Nil
		}
	}
	return nil
}

// reload is the push-channel reaction: a full re-fetch whose result
// overwrites local state. Server truth wins even over an optimistic
// mutation whose remote write the feed has not reflected yet.
func (s *Store[T]) reload() {
	if err := s.fetch(context.Background()); err != nil && s.cfg.Logger != nil {
		s.cfg.Logger.Warn("Store", "Reload after change notification failed", map[string]interface{}{
			"collection": s.cfg.Name,
			"owner_id":   s.owner.String(),
			"error":      err.Error(),
		})
	}
}

// Create inserts a server-defaulted row, prepends it locally, and selects
// it. Without an owner identity it is a silent no-op, not an error.
func (s *Store[T]) Create(ctx context.Context, defaults map[string]interface{}) (uuid.UUID, error) {
	if s.owner == uuid.Nil {
		return uuid.Nil, nil
	}

	entity, err := s.cfg.Persistence.Insert(ctx, s.owner, defaults)
	if err != nil {
		s.fail("create", err)
		return uuid.Nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.cfg.ID(entity)
	// A change-feed reload triggered by the insert can land before we
	// re-acquire the lock, in which case the row is already present.
	if s.indexOfLocked(id) < 0 {
		s.items = append([]T{entity}, s.items...)
	}
	s.selected = id
	s.state = StateReady
	s.lastError = ""
	return s.selected, nil
}

// Update applies the partial fields to the in-memory entity immediately,
// then issues the remote call. A remote failure is surfaced but does not
// roll the local mutation back; callers needing strict consistency must
// reload.
func (s *Store[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	if i := s.indexOfLocked(id); i >= 0 {
		s.items[i] = s.cfg.Apply(s.items[i], fields)
	}
	s.mu.Unlock()

	if err := s.cfg.Persistence.Update(ctx, s.owner, id, fields); err != nil {
		s.fail("update", err)
		return err
	}

	s.clearError()
	return nil
}

// Delete issues the remote call first; the entity leaves the collection
// only once the remote delete succeeds. Deleting the selected entity
// advances selection to the first remaining row.
func (s *Store[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cfg.Persistence.Delete(ctx, s.owner, id); err != nil {
		s.fail("delete", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOfLocked(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	if s.selected == id {
		if len(s.items) > 0 {
			s.selected = s.cfg.ID(s.items[0])
		} else {
			s.selected = uuid.Nil
		}
	}
	s.state = StateReady
	s.lastError = ""
	return nil
}

// Select points the current-entity marker at the matching in-memory row,
// or at nothing if the id is absent. Purely local.
func (s *Store[T]) Select(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(id) >= 0 {
		s.selected = id
	} else {
		s.selected = uuid.Nil
	}
}

// Cleanup clears all in-memory state and tears down the subscription.
// Used on session end; no remote call.
func (s *Store[T]) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.items = nil
	s.selected = uuid.Nil
	s.state = StateIdle
	s.lastError = ""
}

// Items returns a copy of the in-memory collection.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Selected returns the current entity id, uuid.Nil when none.
func (s *Store[T]) Selected() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Store[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the message from the most recent failed operation,
// empty once an operation succeeds again.
func (s *Store[T]) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Store[T]) indexOfLocked(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	for i, item := range s.items {
		if s.cfg.ID(item) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) fail(op string, err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err.Error()
	s.mu.Unlock()

	if s.cfg.Logger != nil {
		s.cfg.Logger.Warn("Store", "Operation failed", map[string]interface{}{
			"collection": s.cfg.Name,
			"operation":  op,
			"owner_id":   s.owner.String(),
			"error":      err.Error(),
		})
	}
}

func (s *Store[T]) clearError() {
	s.mu.Lock()
	s.lastError = ""
	s.state = StateReady
	s.mu.Unlock()
}
