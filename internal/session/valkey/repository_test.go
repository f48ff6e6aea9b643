package sessionvalkey_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/twitch-login/internal/dbtest/valkeytest"
	"github.com/openkcm/twitch-login/internal/serviceerr"
	"github.com/openkcm/twitch-login/internal/session"
	sessionvalkey "github.com/openkcm/twitch-login/internal/session/valkey"
)

func TestRepository(t *testing.T) {
	ctx := t.Context()
	valkeyClient := valkeytest.Start(t).Client

	repo := sessionvalkey.NewRepository(valkeyClient, "repository-test")

	t.Run("state is consumed once", func(t *testing.T) {
		state := session.State{
			ID:          "state-id",
			SessionID:   "sid",
			Fingerprint: "fp",
			Expiry:      time.Now().Add(time.Minute).UTC().Truncate(time.Second),
		}
		require.NoError(t, repo.StoreState(ctx, state))

		got, err := repo.ConsumeState(ctx, state.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(state, got); diff != "" {
			t.Errorf("ConsumeState() mismatch (-want +got):\n%s", diff)
		}

		_, err = repo.ConsumeState(ctx, state.ID)
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)
		assert.ErrorIs(t, err, sessionvalkey.ErrGetState)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		sess := session.Session{
			ID: "sid",
			Profile: &session.AuthenticatedProfile{
				AccessToken:  "AT1",
				RefreshToken: "RT1",
				Fields:       map[string]string{"display_name": "Ada", "bio": "Engineer"},
			},
			Expiry: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		}

		_, err := repo.LoadSession(ctx, sess.ID)
		assert.ErrorIs(t, err, serviceerr.ErrNotFound)

		require.NoError(t, repo.StoreSession(ctx, sess))

		got, err := repo.LoadSession(ctx, sess.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(sess, got); diff != "" {
			t.Errorf("LoadSession() mismatch (-want +got):\n%s", diff)
		}

		require.NoError(t, repo.DeleteSession(ctx, sess.ID))
		assert.ErrorIs(t, repo.DeleteSession(ctx, sess.ID), serviceerr.ErrNotFound)
	})
}
