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
	"github.com/profilehub/apiserver/config"
	"github.com/profilehub/apiserver/internal/auth"
	"github.com/profilehub/apiserver/internal/db"
	"github.com/profilehub/apiserver/internal/handlers"
	"github.com/profilehub/apiserver/internal/mailer"
	"github.com/profilehub/apiserver/internal/mq"
	"github.com/profilehub/apiserver/internal/services"
	"github.com/profilehub/apiserver/internal/storage"
	"github.com/profilehub/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
}

// New constructs a Server with all collaborators wired explicitly.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)

	otp, err := auth.NewOTPIssuer(cfg.OTP.Secret, cfg.OTP.Step, cfg.OTP.Skew)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("OTP_SECRET is invalid: %w", err)
	}

	objectStorage, err := NewObjectStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	queue, err := NewQueue(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	mail, err := NewMailer(cfg.Mailer, queue)
	if err != nil {
		_ = dbConn.Close()
		if queue != nil {
			_ = queue.Close()
		}
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	pictureRepo := store.NewProfilePictureRepository(dbConn)

	authService := services.NewAuthService(userRepo, tokens, otp, mail, cfg.Mailer.ResetURL)
	pictureService := services.NewProfilePictureService(userRepo, pictureRepo, objectStorage)

	requireAuth := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, requireAuth)
	})
	router.Route("/profile-picture", func(r chi.Router) {
		handlers.ProfilePictureRouter(r, pictureService, requireAuth)
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
		queue:      queue,
	}, nil
}

// NewObjectStorage selects and constructs the configured storage backend.
func NewObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case "", "minio":
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	case "gcs":
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(backend), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewQueue constructs the configured message queue backend, or nil when
// no backend is configured.
func NewQueue(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(backend), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// NewMailer selects the configured mail delivery mode. Queue mode needs
// a configured message queue; delivery then happens in the mailworker
// process.
func NewMailer(cfg config.MailerConfig, queue *mq.MQ) (mailer.Mailer, error) {
	switch cfg.Mode {
	case "", "log":
		return mailer.NewLogMailer(), nil
	case "smtp":
		return mailer.NewSMTPMailer(cfg)
	case "queue":
		if queue == nil {
			return nil, errors.New("mailer mode \"queue\" requires MQ_BACKEND")
		}
		return mailer.NewQueueMailer(queue), nil
	default:
		return nil, fmt.Errorf("unknown mailer mode %q", cfg.Mode)
	}
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
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	return s.httpServer.Close()
}
