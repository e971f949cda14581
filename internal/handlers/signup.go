package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/useraccounts/apiserver/internal/events"
	"github.com/useraccounts/apiserver/internal/store"
	"github.com/useraccounts/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUserCreated     = "User created successfully"
	msgEmailTaken      = "User already exists"
	msgUsernameTaken   = "Username already taken"
	msgInvalidEmail    = "Invalid email format. Email must end with @gmail.com"
	msgInvalidUsername = "Invalid username format. Username should start with a small letter, followed by other small letters and a number."
	msgInvalidPassword = "Invalid password format. Password must be 6 characters long and contain at least 1 number and 1 special character."
)

// Signup creates a new user account.
//
// The uniqueness check runs before format validation on purpose: a colliding
// email or username is reported as a conflict even when the input would also
// fail a format rule.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	existing, err := h.userService.GetByEmailOrUsername(r.Context(), email, username)
	if err == nil {
		if existing.Email == email {
			writeMessage(w, http.StatusConflict, msgEmailTaken)
		} else {
			writeMessage(w, http.StatusConflict, msgUsernameTaken)
		}
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if !validEmail(email) {
		writeMessage(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if !validUsername(username) {
		writeMessage(w, http.StatusBadRequest, msgInvalidUsername)
		return
	}
	if !validPassword(password) {
		writeMessage(w, http.StatusBadRequest, msgInvalidPassword)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.publish(r.Context(), events.EventUserCreated, user)

	writeMessage(w, http.StatusCreated, msgUserCreated)
}

// publish emits an account event best-effort; a broker fault never fails the
// request.
func (h *AuthHandler) publish(ctx context.Context, eventType string, user types.User) {
	if err := h.events.Publish(ctx, events.Event{
		Type:     eventType,
		Username: user.Username,
		Email:    user.Email,
	}); err != nil {
		log.Printf("publish %s event: %v", eventType, err)
	}
}
