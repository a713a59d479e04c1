package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	tok, err := issuer.Issue(&User{ID: 7, Username: "alice"})
	require.NoError(t, err)
	foreign, err := NewTokenIssuer("other-secret", time.Minute).Issue(&User{ID: 7, Username: "alice"})
	require.NoError(t, err)

	var seen *Claims
	h := Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + tok.AccessToken, http.StatusNoContent},
		{"lowercase scheme", "bearer " + tok.AccessToken, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok.AccessToken, http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign.AccessToken, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/main/owners", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "alice", seen.Subject)
				assert.Equal(t, int64(7), seen.UserID)
			} else {
				assert.Nil(t, seen, "handler must not run")
				assert.Contains(t, rec.Body.String(), `"msg"`)
			}
		})
	}
}
