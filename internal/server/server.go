package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/useraccounts/apiserver/config"
	"github.com/useraccounts/apiserver/internal/db"
	"github.com/useraccounts/apiserver/internal/events"
	"github.com/useraccounts/apiserver/internal/handlers"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *events.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	userService := services.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(userService, publisher, jwtSecret, cfg.TokenTTL)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/user", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})
	router.Route("/my", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.With(authHandler.RequireAuth).Get("/profile", authHandler.Profile)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     publisher,
	}, nil
}

func newPublisher(ctx context.Context, cfg config.EventsConfig) (*events.Publisher, error) {
	var backend events.Backend
	switch cfg.Backend {
	case "", "none":
		backend = nil
	case "rabbitmq":
		client, err := events.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		backend = client
	case "pubsub":
		client, err := events.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
	return events.NewPublisher(backend, cfg.Channel), nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
