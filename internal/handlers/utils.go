package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type contextKey string

const contextClaimsKey contextKey = "claims"

// MessageResponse is the uniform `{message}` envelope used for every
// non-success response and for plain acknowledgements.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserInfo is the public profile view of a user. The password hash is never
// part of it.
type UserInfo struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func claimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(contextClaimsKey).(*Claims)
	if !ok || claims == nil {
		return nil, errors.New("missing claims")
	}
	return claims, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
