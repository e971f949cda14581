package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/useraccounts/apiserver/internal/events"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 10 * time.Minute

// Response messages are part of the API contract.
const (
	msgLoginSuccess   = "User login successful"
	msgUserNotFound   = "User not found"
	msgInternalError  = "Internal server error"
	msgUnauthorized   = "Unauthorized access"
	msgSessionExpired = "Session expired, please login again"
	msgInvalidToken   = "Invalid token"
)

// Claims is the JWT claim set carried by session tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthHandler provides the login, signup, and profile endpoints.
type AuthHandler struct {
	userService *services.UserService
	events      *events.Publisher
	secret      []byte
	tokenTTL    time.Duration
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, publisher *events.Publisher, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthHandler{
		userService: userService,
		events:      publisher,
		secret:      []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// RequireAuth enforces token authentication and injects claims into context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return requireAuth(h.secret)(next)
}

func requireAuth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			claims, err := parseToken(tokenString, secret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeMessage(w, http.StatusUnauthorized, msgSessionExpired)
					return
				}
				writeMessage(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), contextClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoginResponse is the login success payload.
type LoginResponse struct {
	Message  string   `json:"message"`
	Token    string   `json:"token"`
	UserInfo UserInfo `json:"user_info"`
}

// Login verifies credentials and returns the profile view with a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	// A wrong password reports the same way as an unknown user.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		writeMessage(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	token, err := issueToken(user.Username, h.secret, h.tokenTTL)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.publish(r.Context(), events.EventUserLogin, user)

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: msgLoginSuccess,
		Token:   token,
		UserInfo: UserInfo{
			Email:    user.Email,
			Username: user.Username,
		},
	})
}

// ProfileResponse is the payload returned for the authenticated user.
type ProfileResponse struct {
	Message  string   `json:"message"`
	UserInfo UserInfo `json:"user_info"`
}

// Profile returns the profile of the user named by the verified token claims.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Message: "User profile",
		UserInfo: UserInfo{
			Email:    user.Email,
			Username: user.Username,
		},
	})
}

func issueToken(username string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Username) == "" {
		return nil, errors.New("missing username claim")
	}
	return claims, nil
}

// bearerToken reads the Authorization header. The "Bearer" scheme prefix is
// accepted but not required.
func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(auth, " ", 2)
	if strings.EqualFold(parts[0], "Bearer") {
		if len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return auth
}
