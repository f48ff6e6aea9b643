// Package fingerprint derives a coarse browser identity from request headers.
// It binds a login attempt to the browser that started it; it is not an
// authentication factor.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
)

var (
	ErrNilRequest    = errors.New("http request is nil")
	ErrNoFingerprint = errors.New("no fingerprint in context")
)

// Headers that stay stable for one browser across a redirect round trip.
var headerKeys = []string{"User-Agent", "Accept-Language"}

type ctxKey struct{}

// FromHTTPRequest hashes the identifying headers of r.
func FromHTTPRequest(r *http.Request) (string, error) {
	if r == nil {
		return "", ErrNilRequest
	}

	h := sha256.New()
	for _, key := range headerKeys {
		h.Write([]byte(key))
		h.Write([]byte{0})
		h.Write([]byte(r.Header.Get(key)))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func FingerprintCtxMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp, _ := FromHTTPRequest(r)
		next.ServeHTTP(w, r.WithContext(WithFingerprint(r.Context(), fp)))
	})
}

func WithFingerprint(ctx context.Context, fp string) context.Context {
	return context.WithValue(ctx, ctxKey{}, fp)
}

func ExtractFingerprint(ctx context.Context) (string, error) {
	fp, ok := ctx.Value(ctxKey{}).(string)
	if !ok {
		return "", ErrNoFingerprint
	}
	return fp, nil
}
