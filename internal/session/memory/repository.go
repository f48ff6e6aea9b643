// Package sessionmemory keeps states and sessions in process memory.
// Records expire with the Expiry of the stored value.
package sessionmemory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/openkcm/twitch-login/internal/serviceerr"
	"github.com/openkcm/twitch-login/internal/session"
)

const cleanupInterval = time.Minute

type Repository struct {
	states   *cache.Cache
	sessions *cache.Cache

	// consume serializes ConsumeState so a state is handed out only once.
	consume sync.Mutex
}

var _ = session.Repository(&Repository{})

func NewRepository() *Repository {
	return &Repository{
		states:   cache.New(cache.NoExpiration, cleanupInterval),
		sessions: cache.New(cache.NoExpiration, cleanupInterval),
	}
}

func (r *Repository) StoreState(_ context.Context, state session.State) error {
	ttl := time.Until(state.Expiry)
	if ttl <= 0 {
		return nil
	}

	if err := r.states.Add(state.ID, state, ttl); err != nil {
		return serviceerr.ErrConflict
	}

	return nil
}

func (r *Repository) ConsumeState(_ context.Context, stateID string) (session.State, error) {
	r.consume.Lock()
	defer r.consume.Unlock()

	v, ok := r.states.Get(stateID)
	if !ok {
		return session.State{}, serviceerr.ErrNotFound
	}
	r.states.Delete(stateID)

	return v.(session.State), nil
}

func (r *Repository) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	v, ok := r.sessions.Get(sessionID)
	if !ok {
		return session.Session{}, serviceerr.ErrNotFound
	}

	return v.(session.Session), nil
}

func (r *Repository) StoreSession(_ context.Context, s session.Session) error {
	ttl := time.Until(s.Expiry)
	if ttl <= 0 {
		return nil
	}

	r.sessions.Set(s.ID, s, ttl)

	return nil
}

func (r *Repository) DeleteSession(_ context.Context, sessionID string) error {
	if _, ok := r.sessions.Get(sessionID); !ok {
		return serviceerr.ErrNotFound
	}
	r.sessions.Delete(sessionID)

	return nil
}
