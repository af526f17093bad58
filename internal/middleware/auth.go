// Package middleware provides HTTP middleware: viewer authentication,
// request IDs, and rate limiting.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lakeboard/internal/domain"
)

// Auth validates the Bearer token with the shared HS256 secret and stores
// the viewer identity in the request context. The engine trusts the token
// contents: token issuance belongs to the identity provider, not here.
//
// Claims: "sub" (viewer id, required), "email", and "groups" (list).
func Auth(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				return jwtSecret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid token claims")
				return
			}
			viewer, ok := viewerFromClaims(claims)
			if !ok {
				unauthorized(w, "token has no subject")
				return
			}

			ctx := domain.WithViewer(r.Context(), viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func viewerFromClaims(claims jwt.MapClaims) (domain.Viewer, bool) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Viewer{}, false
	}
	v := domain.Viewer{ID: sub}
	if email, ok := claims["email"].(string); ok {
		v.Email = email
	}
	if groups, ok := claims["groups"].([]interface{}); ok {
		for _, g := range groups {
			if name, ok := g.(string); ok && name != "" {
				v.Groups = append(v.Groups, name)
			}
		}
	}
	return v, true
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
