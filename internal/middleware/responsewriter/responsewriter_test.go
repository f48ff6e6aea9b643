package responsewriter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/twitch-login/internal/middleware/responsewriter"
)

func TestStatusRecorder(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		want  int
	}{
		{
			name:  "Nothing written",
			write: func(http.ResponseWriter) {},
			want:  http.StatusOK,
		},
		{
			name:  "Body only",
			write: func(w http.ResponseWriter) { _, _ = w.Write([]byte("ok")) },
			want:  http.StatusOK,
		},
		{
			name: "Redirect",
			write: func(w http.ResponseWriter) {
				http.Redirect(w, httptest.NewRequest(http.MethodGet, "/", nil), "/", http.StatusFound)
			},
			want: http.StatusFound,
		},
		{
			name: "First status wins",
			write: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusInternalServerError)
				w.WriteHeader(http.StatusOK)
			},
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := responsewriter.NewStatusRecorder(rec)

			tt.write(w)

			assert.Equal(t, tt.want, w.Status())
			assert.Same(t, rec, w.Unwrap())
		})
	}
}
