package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboard/internal/domain"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func authServe(t *testing.T, authHeader string) (*httptest.ResponseRecorder, domain.Viewer, bool) {
	t.Helper()

	var viewer domain.Viewer
	var seen bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, seen = domain.ViewerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/folders", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	Auth(testSecret)(next).ServeHTTP(rec, req)
	return rec, viewer, seen
}

func TestAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":    "u-alice",
		"email":  "alice@example.com",
		"groups": []string{"analysts", "emea"},
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	rec, viewer, seen := authServe(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, seen)
	assert.Equal(t, "u-alice", viewer.ID)
	assert.Equal(t, "alice@example.com", viewer.Email)
	assert.Equal(t, []string{"analysts", "emea"}, viewer.Groups)
}

func TestAuthRejectsBadTokens(t *testing.T) {
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u-alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongSecret := signToken(t, []byte("other-secret"), jwt.MapClaims{
		"sub": "u-alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noSubject := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + wrongSecret},
		{"no subject", "Bearer " + noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, seen := authServe(t, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, seen)
		})
	}
}

func TestAuthRejectsUnexpectedAlg(t *testing.T) {
	// alg=none style tokens must not pass the HS256 allow-list.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-alice"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	rec, _, seen := authServe(t, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, seen)
}
