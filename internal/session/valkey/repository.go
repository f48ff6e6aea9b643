// Package sessionvalkey stores states and sessions in ValKey. Keys expire
// together with the record they hold.
package sessionvalkey

import (
	"context"
	"errors"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/twitch-login/internal/session"
)

type ObjectType string

const (
	objectTypeSession ObjectType = "session"
	objectTypeState   ObjectType = "state"
)

var (
	ErrGetState      = errors.New("getting state from store")
	ErrStoreState    = errors.New("setting state into storage")
	ErrStoreSession  = errors.New("setting session into storage")
	ErrGetSession    = errors.New("getting session from store")
	ErrDeleteSession = errors.New("deleting session from store")
)

type Repository struct {
	store *store
}

var _ = session.Repository(&Repository{})

func NewRepository(valkeyClient valkey.Client, prefix string) *Repository {
	return &Repository{
		store: newStore(valkeyClient, prefix),
	}
}

func (r *Repository) StoreState(ctx context.Context, state session.State) error {
	if err := r.store.Set(ctx, objectTypeState, state.ID, state, time.Until(state.Expiry)); err != nil {
		return errors.Join(ErrStoreState, err)
	}

	return nil
}

func (r *Repository) ConsumeState(ctx context.Context, stateID string) (session.State, error) {
	var state session.State
	if err := r.store.GetDel(ctx, objectTypeState, stateID, &state); err != nil {
		return session.State{}, errors.Join(ErrGetState, err)
	}

	return state, nil
}

func (r *Repository) LoadSession(ctx context.Context, sessionID string) (session.Session, error) {
	var s session.Session
	if err := r.store.Get(ctx, objectTypeSession, sessionID, &s); err != nil {
		return session.Session{}, errors.Join(ErrGetSession, err)
	}

	return s, nil
}

func (r *Repository) StoreSession(ctx context.Context, s session.Session) error {
	if err := r.store.Set(ctx, objectTypeSession, s.ID, s, time.Until(s.Expiry)); err != nil {
		return errors.Join(ErrStoreSession, err)
	}

	return nil
}

func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.store.Destroy(ctx, objectTypeSession, sessionID); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}

	return nil
}
