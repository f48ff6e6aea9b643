package fingerprint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestFromHTTPRequest(t *testing.T) {
	base := map[string]string{"User-Agent": "Foo", "Accept-Language": "en"}

	tests := []struct {
		name     string
		other    map[string]string
		wantSame bool
	}{
		{
			name:     "same headers",
			other:    base,
			wantSame: true,
		}, {
			name:     "unrelated headers are ignored",
			other:    map[string]string{"User-Agent": "Foo", "Accept-Language": "en", "Cookie": "a=1", "Accept": "image/png"},
			wantSame: true,
		}, {
			name:  "different user agent",
			other: map[string]string{"User-Agent": "Baz", "Accept-Language": "en"},
		}, {
			name:  "values do not run together",
			other: map[string]string{"User-Agent": "Fooen"},
		},
	}

	want, err := FromHTTPRequest(request(base))
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromHTTPRequest(request(tt.other))
			require.NoError(t, err)

			if tt.wantSame {
				assert.Equal(t, want, got)
			} else {
				assert.NotEqual(t, want, got)
			}
		})
	}

	t.Run("nil request", func(t *testing.T) {
		_, err := FromHTTPRequest(nil)
		assert.ErrorIs(t, err, ErrNilRequest)
	})
}

func TestFingerprintCtxMiddleware(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		fp, err := ExtractFingerprint(r.Context())
		assert.NoError(t, err)
		got = fp
	})

	req := request(map[string]string{"User-Agent": "Foo"})
	FingerprintCtxMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	want, _ := FromHTTPRequest(req)
	assert.Equal(t, want, got)

	_, err := ExtractFingerprint(context.Background())
	assert.ErrorIs(t, err, ErrNoFingerprint)
}
