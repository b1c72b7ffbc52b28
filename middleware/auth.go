package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/utils"
	"github.com/gorilla/mux"
)

type TokenValidator interface {
	ValidateJWT(token string) (*utils.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth requires a valid, unrevoked Bearer token and stores the caller's
// user id and token id in the request context.
func Auth(tokens TokenValidator, revoked RevocationChecker) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.Logger(r.Context())

			tokenHeader := r.Header.Get("Authorization")
			if tokenHeader == "" {
				logger.Warn("Missing Authorization header")
				utils.WriteError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			tokenParts := strings.Split(tokenHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				logger.Warn("Invalid Authorization header format")
				utils.WriteError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.ValidateJWT(tokenParts[1])
			if err != nil {
				logger.Warn("Invalid or expired token", slog.Any("error", err))
				utils.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if revoked != nil && claims.Id != "" {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.Id)
				if err != nil {
					logger.Error("Token revocation check failed", slog.Any("error", err))
					utils.WriteError(w, http.StatusInternalServerError, "Failed to verify session")
					return
				}
				if isRevoked {
					logger.Warn("Revoked token presented", slog.String("user_id", claims.UserID))
					utils.WriteError(w, http.StatusUnauthorized, "Session has been signed out")
					return
				}
			}

			ctx := contextkeys.WithUserID(r.Context(), claims.UserID)
			ctx = contextkeys.WithTokenID(ctx, claims.Id)
			ctx = contextkeys.WithLogger(ctx, logger.With("user_id", claims.UserID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
