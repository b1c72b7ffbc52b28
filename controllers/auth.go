package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dcode-github/property_tours/cache"
	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/contracts"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/models"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/utils"
	"github.com/google/uuid"
)

type TokenIssuer interface {
	GenerateJWT(userID string) (string, *utils.Claims, error)
}

type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type ResetTokenStore interface {
	SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}

type registerRequest struct {
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	FullName    string             `json:"fullName"`
	PhoneNumber string             `json:"phoneNumber"`
	LookingFor  *models.LookingFor `json:"lookingFor"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *models.User    `json:"user"`
	Profile   *models.Profile `json:"profile,omitempty"`
}

const (
	forgotPasswordMessage  = "If the email is registered, a reset link has been sent"
	passwordTooLongMessage = "password: must be at most 72 bytes"
)

func issueSession(w http.ResponseWriter, r *http.Request, tokens TokenIssuer, pub events.Publisher, user *models.User) (*Session, bool) {
	token, claims, err := tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		serverError(w, r, "Failed to generate token", err)
		return nil, false
	}
	publish(r.Context(), pub, events.SessionSignedIn, events.SessionChanged{UserID: user.ID.Hex()})
	return &Session{Token: token, ExpiresAt: claims.ExpiresTime().UTC(), User: user}, true
}

func RegisterUser(users repository.UserStore, profiles repository.ProfileStore, tokens TokenIssuer, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r, contracts.Register)
		if !ok {
			return
		}
		var req registerRequest
		if !decodeBody(w, r, body, &req) {
			return
		}
		if utils.PasswordTooLong(req.Password) {
			utils.WriteError(w, http.StatusBadRequest, passwordTooLongMessage)
			return
		}

		hashedPwd, err := utils.HashPassword(req.Password)
		if err != nil {
			serverError(w, r, "Failed to hash password", err)
			return
		}

		now := time.Now().UTC()
		user := models.User{Email: req.Email, Password: hashedPwd, CreatedAt: now}
		err = users.Create(r.Context(), &user)
		if errors.Is(err, repository.ErrDuplicate) {
			contextkeys.Logger(r.Context()).Info("User email already exists")
			utils.WriteError(w, http.StatusConflict, "Email already exists")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to create user", err)
			return
		}

		profile := models.Profile{
			ID:                 user.ID.Hex(),
			FullName:           strings.TrimSpace(req.FullName),
			LookingFor:         req.LookingFor,
			PreferredLocations: []string{},
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
			profile.PhoneNumber = &phone
		}
		if err := profiles.Create(r.Context(), &profile); err != nil {
			if delErr := users.Delete(r.Context(), user.ID.Hex()); delErr != nil {
				contextkeys.Logger(r.Context()).Error("Failed to remove user without profile",
					slog.String("user_id", user.ID.Hex()), slog.Any("error", delErr))
			}
			serverError(w, r, "Failed to create profile", err)
			return
		}

		session, ok := issueSession(w, r, tokens, pub, &user)
		if !ok {
			return
		}
		session.Profile = &profile

		contextkeys.Logger(r.Context()).Info("User registered", slog.String("user_id", user.ID.Hex()))
		utils.WriteSuccess(w, http.StatusCreated, "User registered successfully", session)
	}
}

func LoginUser(users repository.UserStore, tokens TokenIssuer, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r, contracts.Login)
		if !ok {
			return
		}
		var creds credentials
		if !decodeBody(w, r, body, &creds) {
			return
		}

		dbUser, err := users.GetByEmail(r.Context(), creds.Email)
		if errors.Is(err, repository.ErrNotFound) {
			contextkeys.Logger(r.Context()).Info("Login for unknown email")
			utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to fetch user", err)
			return
		}

		if !utils.CheckPasswordHash(creds.Password, dbUser.Password) {
			contextkeys.Logger(r.Context()).Info("Invalid credentials", slog.String("user_id", dbUser.ID.Hex()))
			utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		session, ok := issueSession(w, r, tokens, pub, dbUser)
		if !ok {
			return
		}
		utils.WriteSuccess(w, http.StatusOK, "Login successful", session)
	}
}

// LogoutUser revokes the presented token. tokenTTL bounds how long the
// revocation has to be remembered.
func LogoutUser(sessions SessionRevoker, tokenTTL time.Duration, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		jti, ok := contextkeys.TokenID(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusBadRequest, "Token cannot be revoked")
			return
		}

		if err := sessions.Revoke(r.Context(), jti, time.Now().Add(tokenTTL)); err != nil {
			serverError(w, r, "Failed to sign out", err)
			return
		}
		publish(r.Context(), pub, events.SessionSignedOut, events.SessionChanged{UserID: userID})

		utils.WriteSuccess(w, http.StatusOK, "Signed out", nil)
	}
}

func ForgotPassword(users repository.UserStore, resets ResetTokenStore, resetTTL time.Duration, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r, contracts.PasswordForgot)
		if !ok {
			return
		}
		var req credentials
		if !decodeBody(w, r, body, &req) {
			return
		}
		logger := contextkeys.Logger(r.Context())

		user, err := users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.Error("Failed to fetch user for password reset", slog.Any("error", err))
			}
			utils.WriteSuccess(w, http.StatusOK, forgotPasswordMessage, nil)
			return
		}

		token := uuid.NewString()
		if err := resets.SaveResetToken(r.Context(), token, user.ID.Hex(), resetTTL); err != nil {
			logger.Error("Failed to store reset token", slog.Any("error", err))
			utils.WriteSuccess(w, http.StatusOK, forgotPasswordMessage, nil)
			return
		}
		publish(r.Context(), pub, events.PasswordResetRequested, events.PasswordReset{Email: user.Email, Token: token})

		utils.WriteSuccess(w, http.StatusOK, forgotPasswordMessage, nil)
	}
}

func ResetPassword(users repository.UserStore, resets ResetTokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r, contracts.PasswordReset)
		if !ok {
			return
		}
		var req passwordResetRequest
		if !decodeBody(w, r, body, &req) {
			return
		}
		if utils.PasswordTooLong(req.Password) {
			utils.WriteError(w, http.StatusBadRequest, passwordTooLongMessage)
			return
		}

		userID, err := resets.ConsumeResetToken(r.Context(), req.Token)
		if errors.Is(err, cache.ErrTokenNotFound) {
			utils.WriteError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to verify reset token", err)
			return
		}

		hashedPwd, err := utils.HashPassword(req.Password)
		if err != nil {
			serverError(w, r, "Failed to hash password", err)
			return
		}
		err = users.UpdatePassword(r.Context(), userID, hashedPwd)
		if errors.Is(err, repository.ErrNotFound) {
			utils.WriteError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		if err != nil {
			serverError(w, r, "Failed to update password", err)
			return
		}

		contextkeys.Logger(r.Context()).Info("Password reset", slog.String("user_id", userID))
		utils.WriteSuccess(w, http.StatusOK, "Password updated", nil)
	}
}
