package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/useraccounts/apiserver/internal/events"
	"golang.org/x/crypto/bcrypt"
)

func signupForm(email, username, password string) url.Values {
	return url.Values{
		"email":    {email},
		"username": {username},
		"password": {password},
	}
}

func TestSignupSuccess(t *testing.T) {
	repo := &fakeRepo{}
	backend := &captureBackend{}
	handler := newTestHandler(repo, backend)

	rec := httptest.NewRecorder()
	handler.Signup(rec, formRequest("/my/signup", signupForm("bob1@gmail.com", "bob1", "b1!cde")))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, msgUserCreated, decodeMessage(t, rec))

	require.Len(t, repo.users, 1)
	stored := repo.users[0]
	assert.Equal(t, "bob1@gmail.com", stored.Email)
	assert.Equal(t, "bob1", stored.Username)
	assert.NotEqual(t, "b1!cde", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("b1!cde")))

	require.Len(t, backend.payloads, 1)
	assert.Equal(t, events.DefaultChannel, backend.channels[0])
	var event events.Event
	require.NoError(t, json.Unmarshal(backend.payloads[0], &event))
	assert.Equal(t, events.EventUserCreated, event.Type)
	assert.Equal(t, "bob1", event.Username)
}

func TestSignupEmailConflict(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("bob1@gmail.com", "bob1", "b1!cde")
	handler := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	handler.Signup(rec, formRequest("/my/signup", signupForm("bob1@gmail.com", "other1", "o1!xyz")))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgEmailTaken, decodeMessage(t, rec))
}

func TestSignupUsernameConflict(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("bob1@gmail.com", "bob1", "b1!cde")
	handler := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	handler.Signup(rec, formRequest("/my/signup", signupForm("other1@gmail.com", "bob1", "o1!xyz")))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgUsernameTaken, decodeMessage(t, rec))
}

// A colliding record wins over format validation, even when the submitted
// input would also fail every format rule.
func TestSignupConflictBeforeFormatValidation(t *testing.T) {
	repo := &fakeRepo{}
	repo.seed("bob1@yahoo.com", "bob1", "b1!cde")
	handler := newTestHandler(repo, nil)

	rec := httptest.NewRecorder()
	handler.Signup(rec, formRequest("/my/signup", signupForm("bob1@yahoo.com", "Bad", "short")))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgEmailTaken, decodeMessage(t, rec))
}

func TestSignupInvalidFormats(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantMsg  string
	}{
		{"bad email", "bob1@yahoo.com", "bob1", "b1!cde", msgInvalidEmail},
		{"bad username", "bob1@gmail.com", "Bob1", "b1!cde", msgInvalidUsername},
		{"bad password", "bob1@gmail.com", "bob1", "abcdef", msgInvalidPassword},
		// Email is checked first, so a request failing every rule reports
		// the email message.
		{"everything wrong", "bob1@yahoo.com", "Bob", "x", msgInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			handler := newTestHandler(repo, nil)

			rec := httptest.NewRecorder()
			handler.Signup(rec, formRequest("/my/signup", signupForm(tt.email, tt.username, tt.password)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeMessage(t, rec))
			assert.Empty(t, repo.users)
		})
	}
}

func TestSignupStorageFault(t *testing.T) {
	handler := newTestHandler(&fakeRepo{err: errors.New("connection refused")}, nil)

	rec := httptest.NewRecorder()
	handler.Signup(rec, formRequest("/my/signup", signupForm("bob1@gmail.com", "bob1", "b1!cde")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternalError, decodeMessage(t, rec))
}
