package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/useraccounts/apiserver/internal/events"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/internal/store"
	"github.com/useraccounts/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// fakeRepo is an in-memory services.UserRepository.
type fakeRepo struct {
	users  []types.User
	nextID int
	err    error
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeRepo) GetByEmailOrUsername(_ context.Context, email, username string) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, user)
	return user, nil
}

func (f *fakeRepo) seed(email, username, password string) types.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	f.nextID++
	user := types.User{
		ID:           f.nextID,
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
	}
	f.users = append(f.users, user)
	return user
}

// captureBackend records published events in memory.
type captureBackend struct {
	channels []string
	payloads [][]byte
	attrs    []map[string]string
	closed   bool
}

func (c *captureBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	c.channels = append(c.channels, channel)
	c.payloads = append(c.payloads, data)
	c.attrs = append(c.attrs, attrs)
	return "msg-1", nil
}

func (c *captureBackend) Close() error {
	c.closed = true
	return nil
}

func newTestHandler(repo *fakeRepo, backend events.Backend) *AuthHandler {
	var publisher *events.Publisher
	if backend != nil {
		publisher = events.NewPublisher(backend, "")
	}
	return NewAuthHandler(services.NewUserService(repo), publisher, testSecret, time.Minute)
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonDecode(rec *httptest.ResponseRecorder, value any) error {
	return json.NewDecoder(rec.Body).Decode(value)
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp MessageResponse
	if err := jsonDecode(rec, &resp); err != nil {
		t.Fatalf("decode message response: %v", err)
	}
	return resp.Message
}
