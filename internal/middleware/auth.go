package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	AdminSubjectKey contextKey = "adminSubject"
	TokenClaimsKey  contextKey = "jwtClaims"
)

// AdminAuth guards operator-only routes. Requests must carry a Bearer
// token signed with the admin secret and claiming role "admin".
func AdminAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || claims["role"] != "admin" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), TokenClaimsKey, claims)
			if sub, ok := claims["sub"].(string); ok {
				ctx = context.WithValue(ctx, AdminSubjectKey, sub)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminSubjectFromContext returns the authenticated operator's subject.
func AdminSubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(AdminSubjectKey).(string)
	return sub, ok
}
