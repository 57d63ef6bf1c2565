package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"survive-sports/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Claim names expected in the upstream-issued token.
const (
	jwtClaimSubject = "sub"
	jwtClaimName    = "name"
	jwtClaimEmail   = "email"
	jwtClaimRoles   = "roles"
)

// Authenticate verifies the HS256 bearer token and stores the resolved user
// in the request context. The engine performs no authentication beyond
// trusting the token's claims.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromRequest(r, secret)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose authenticated user lacks the role.
// Must run after Authenticate.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !user.HasRole(role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext returns the identity stored by Authenticate.
func UserFromContext(ctx context.Context) (models.User, error) {
	user, ok := ctx.Value(userContextKey).(models.User)
	if !ok {
		return models.User{}, errors.New("user not found in context")
	}
	return user, nil
}

// WithUser returns a context carrying the given identity. Exists for
// handler tests that bypass Authenticate.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func userFromRequest(r *http.Request, secret []byte) (models.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return models.User{}, errors.New("missing Authorization header")
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return models.User{}, errors.New("Authorization header is not a bearer token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.User{}, errors.New("invalid token claims")
	}

	return userFromClaims(claims)
}

func userFromClaims(claims jwt.MapClaims) (models.User, error) {
	id, ok := claims[jwtClaimSubject].(string)
	if !ok || id == "" {
		return models.User{}, fmt.Errorf("missing %q claim in token", jwtClaimSubject)
	}

	user := models.User{ID: id}
	if name, ok := claims[jwtClaimName].(string); ok {
		user.Name = name
	}
	if email, ok := claims[jwtClaimEmail].(string); ok {
		user.Email = email
	}
	if rawRoles, ok := claims[jwtClaimRoles].([]interface{}); ok {
		for _, raw := range rawRoles {
			if role, ok := raw.(string); ok {
				user.Roles = append(user.Roles, role)
			}
		}
	}
	return user, nil
}
