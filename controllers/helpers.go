package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dcode-github/property_tours/contextkeys"
	"github.com/dcode-github/property_tours/contracts"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

// Clock returns the current time. Handlers that compare against "today" take
// one so tests can pin the date.
type Clock func() time.Time

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := contextkeys.UserID(r.Context())
	if !ok {
		contextkeys.Logger(r.Context()).Warn("User ID missing in context")
		utils.WriteError(w, http.StatusUnauthorized, "User ID missing in context")
		return "", false
	}
	return userID, true
}

// readBody reads the request body and validates it against schema. On
// failure the response has already been written.
func readBody(w http.ResponseWriter, r *http.Request, schema string) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		contextkeys.Logger(r.Context()).Warn("Failed to read request body", slog.Any("error", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if err := contracts.Validate(schema, body); err != nil {
		var ve *contracts.ValidationError
		if errors.As(err, &ve) {
			contextkeys.Logger(r.Context()).Warn("Request body rejected", slog.String("schema", schema), slog.String("reason", ve.Message))
			utils.WriteError(w, http.StatusBadRequest, ve.Message)
			return nil, false
		}
		serverError(w, r, "Failed to validate request body", err)
		return nil, false
	}
	return body, true
}

// decodeBody unmarshals a body that readBody accepted into v. On failure the
// response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, body []byte, v interface{}) bool {
	if err := json.Unmarshal(body, v); err != nil {
		contextkeys.Logger(r.Context()).Warn("Invalid request body", slog.Any("error", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func objectIDVar(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		contextkeys.Logger(r.Context()).Warn("Invalid id format", slog.String("param", name), slog.Any("error", err))
		utils.WriteError(w, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func serverError(w http.ResponseWriter, r *http.Request, message string, err error) {
	contextkeys.Logger(r.Context()).Error(message, slog.Any("error", err))
	utils.WriteError(w, http.StatusInternalServerError, message)
}

// publish emits an event without failing the request when the broker is
// unavailable.
func publish(ctx context.Context, pub events.Publisher, eventType string, payload interface{}) {
	if err := pub.Publish(ctx, eventType, payload); err != nil {
		contextkeys.Logger(ctx).Warn("Failed to publish event", slog.String("event", eventType), slog.Any("error", err))
	}
}
