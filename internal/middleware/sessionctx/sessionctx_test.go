package sessionctx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/twitch-login/internal/middleware/sessionctx"
)

type fakeIssuer struct {
	makeErr error
	next    string
}

func (f *fakeIssuer) SessionCookieName() string { return "sid" }

func (f *fakeIssuer) SessionIDFromCookie(value string) (string, bool) {
	id, ok := strings.CutSuffix(value, ".signed")
	return id, ok && id != ""
}

func (f *fakeIssuer) NewSessionID() string { return f.next }

func (f *fakeIssuer) MakeSessionCookie(_ context.Context, sessionID string) (*http.Cookie, error) {
	if f.makeErr != nil {
		return nil, f.makeErr
	}
	return &http.Cookie{Name: "sid", Value: sessionID + ".signed"}, nil
}

func TestSessionMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		cookie     *http.Cookie
		issuer     *fakeIssuer
		wantID     string
		wantStatus int
		wantCookie string
	}{
		{
			name:       "Valid cookie",
			cookie:     &http.Cookie{Name: "sid", Value: "existing.signed"},
			issuer:     &fakeIssuer{next: "fresh"},
			wantID:     "existing",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing cookie",
			issuer:     &fakeIssuer{next: "fresh"},
			wantID:     "fresh",
			wantStatus: http.StatusOK,
			wantCookie: "fresh.signed",
		},
		{
			name:       "Tampered cookie",
			cookie:     &http.Cookie{Name: "sid", Value: "existing.forged"},
			issuer:     &fakeIssuer{next: "fresh"},
			wantID:     "fresh",
			wantStatus: http.StatusOK,
			wantCookie: "fresh.signed",
		},
		{
			name:       "Cookie error",
			issuer:     &fakeIssuer{next: "fresh", makeErr: errors.New("invalid cookie")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				id, err := sessionctx.SessionIDFromContext(r.Context())
				//nolint:testifylint
				require.NoError(t, err)
				gotID = id
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()

			sessionctx.SessionMiddleware(tt.issuer)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantID, gotID)

			cookies := rec.Result().Cookies()
			if tt.wantCookie == "" {
				assert.Empty(t, cookies)
				return
			}
			require.Len(t, cookies, 1)
			assert.Equal(t, tt.wantCookie, cookies[0].Value)
		})
	}
}

func TestSessionIDFromContext(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		id, err := sessionctx.SessionIDFromContext(sessionctx.WithSessionID(t.Context(), "sid"))
		require.NoError(t, err)
		assert.Equal(t, "sid", id)
	})

	t.Run("Failure_KeyNotFound", func(t *testing.T) {
		_, err := sessionctx.SessionIDFromContext(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in context")
	})
}
