package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/SantaVM/bank-rest/internal/apperrors"
	"github.com/SantaVM/bank-rest/internal/config"
	"github.com/SantaVM/bank-rest/internal/models"
	"github.com/SantaVM/bank-rest/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// UserID extracts the authenticated user id from the request context.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// UserRole extracts the authenticated user role from the request context.
func UserRole(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(roleKey).(models.Role)
	return role, ok
}

// respondProblem writes the same problem JSON shape the handlers use, so
// middleware rejections are indistinguishable from handler ones.
func respondProblem(w http.ResponseWriter, kind apperrors.Kind, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   string(kind),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}

// AuthMiddleware validates the Bearer token and stores the caller identity
// in the request context.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				respondProblem(w, apperrors.KindUnauthorized, http.StatusUnauthorized,
					"authentication is required")
				return
			}

			claims := &service.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				respondProblem(w, apperrors.KindUnauthorized, http.StatusUnauthorized,
					"invalid or expired token")
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				respondProblem(w, apperrors.KindUnauthorized, http.StatusUnauthorized,
					"invalid token subject")
				return
			}
			role, err := models.ParseRole(claims.Role)
			if err != nil {
				respondProblem(w, apperrors.KindUnauthorized, http.StatusUnauthorized,
					"invalid token role")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose token does not carry the ADMIN role.
// Must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := UserRole(r.Context())
		if !ok || role != models.RoleAdmin {
			respondProblem(w, apperrors.KindForbidden, http.StatusForbidden,
				"admin role is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
