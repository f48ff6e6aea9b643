package session

import "context"

// Repository persists states and sessions. Lookups of unknown or expired
// records return serviceerr.ErrNotFound.
type Repository interface {
	// State operations
	StoreState(ctx context.Context, state State) error
	// ConsumeState loads and deletes the state in one step so that it can be
	// used at most once.
	ConsumeState(ctx context.Context, stateID string) (State, error)
	// Session operations
	LoadSession(ctx context.Context, sessionID string) (Session, error)
	StoreSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}
