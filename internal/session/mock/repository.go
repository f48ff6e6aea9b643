package sessionmock

import (
	"context"
	"sync"

	"github.com/openkcm/twitch-login/internal/serviceerr"
	"github.com/openkcm/twitch-login/internal/session"
)

type RepositoryOption func(*Repository)

type Repository struct {
	mu       sync.Mutex
	states   map[string]session.State
	sessions map[string]session.Session

	consumeStateErr, storeStateErr                    error
	loadSessionErr, storeSessionErr, deleteSessionErr error
}

func WithState(state session.State) RepositoryOption {
	return func(r *Repository) { r.states[state.ID] = state }
}
func WithSession(sess session.Session) RepositoryOption {
	return func(r *Repository) { r.sessions[sess.ID] = sess }
}
func WithConsumeStateError(err error) RepositoryOption {
	return func(r *Repository) { r.consumeStateErr = err }
}
func WithStoreStateError(err error) RepositoryOption {
	return func(r *Repository) { r.storeStateErr = err }
}
func WithLoadSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.loadSessionErr = err }
}
func WithStoreSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.storeSessionErr = err }
}
func WithDeleteSessionError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteSessionErr = err }
}

var _ = session.Repository(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		states:   make(map[string]session.State),
		sessions: make(map[string]session.Session),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) StoreState(_ context.Context, state session.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeStateErr != nil {
		return r.storeStateErr
	}
	if _, ok := r.states[state.ID]; ok {
		return serviceerr.ErrConflict
	}
	r.states[state.ID] = state
	return nil
}

func (r *Repository) ConsumeState(_ context.Context, stateID string) (session.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.consumeStateErr != nil {
		return session.State{}, r.consumeStateErr
	}
	state, ok := r.states[stateID]
	if !ok {
		return session.State{}, serviceerr.ErrNotFound
	}
	delete(r.states, stateID)
	return state, nil
}

func (r *Repository) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadSessionErr != nil {
		return session.Session{}, r.loadSessionErr
	}
	if s, ok := r.sessions[sessionID]; ok {
		return s, nil
	}
	return session.Session{}, serviceerr.ErrNotFound
}

func (r *Repository) StoreSession(_ context.Context, sess session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeSessionErr != nil {
		return r.storeSessionErr
	}
	r.sessions[sess.ID] = sess
	return nil
}

func (r *Repository) DeleteSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteSessionErr != nil {
		return r.deleteSessionErr
	}
	if _, ok := r.sessions[sessionID]; !ok {
		return serviceerr.ErrNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

// States returns the number of pending states.
func (r *Repository) States() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.states)
}

// Sessions returns a copy of the stored sessions.
func (r *Repository) Sessions() map[string]session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]session.Session, len(r.sessions))
	for k, v := range r.sessions {
		out[k] = v
	}
	return out
}
