// Package till tracks the live sessions of the point of sale. One session is
// one cashier's continuous use of the till, holding exactly one cart.
package till

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
)

var ErrSessionNotFound = errors.New("till session not found")

// Session is one open till. Mu serializes all cart operations for the
// session; nothing serializes two sessions selling the same product, which
// leaves the storefront's stock counters open to lost updates.
type Session struct {
	ID       string    `json:"id"`
	Cashier  string    `json:"cashier"`
	Cart     cart.Cart `json:"cart"`
	OpenedAt time.Time `json:"openedAt"`

	Mu sync.Mutex `json:"-"`
}

// Registry owns the session table. Sessions live in memory; when a snapshot
// store is configured every mutation is mirrored there so an open till
// survives a service restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store  SnapshotStore
	logger *log.Logger
}

func NewRegistry(store SnapshotStore, logger *log.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		store:    store,
		logger:   logger,
	}
}

// Open starts a new till session for the named cashier.
func (r *Registry) Open(ctx context.Context, cashier string) (*Session, error) {
	s := &Session{
		ID:       uuid.NewString(),
		Cashier:  cashier,
		OpenedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.Snapshot(ctx, s)
	return s, nil
}

// Get returns a live session, restoring it from the snapshot store if the
// service restarted since the session was opened.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return s, nil
	}

	if r.store == nil {
		return nil, ErrSessionNotFound
	}

	restored, err := r.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSnapshotMiss) {
			r.logger.Printf("till: restore session %s: %v", id, err)
		}
		return nil, ErrSessionNotFound
	}

	r.mu.Lock()
	// Another request may have restored it first; keep the winner.
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.sessions[id] = restored
	r.mu.Unlock()

	return restored, nil
}

// Close drops the session and its snapshot. The cart is cleared first so a
// later restore cannot resurrect stale lines.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.Mu.Lock()
	s.Cart.Clear()
	s.Mu.Unlock()

	if r.store != nil {
		if err := r.store.Delete(ctx, id); err != nil {
			r.logger.Printf("till: delete snapshot %s: %v", id, err)
		}
	}
	return nil
}

// Snapshot mirrors the session into the snapshot store, best effort.
// Callers should hold s.Mu so the serialized cart is consistent.
func (r *Registry) Snapshot(ctx context.Context, s *Session) {
	if r.store == nil {
		return
	}
	if err := r.store.Set(ctx, s); err != nil {
		r.logger.Printf("till: snapshot session %s: %v", s.ID, err)
	}
}
