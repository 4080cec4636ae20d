package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/diaglab/apiserver/config"
	"github.com/diaglab/apiserver/internal/auth"
	"github.com/diaglab/apiserver/internal/db"
	"github.com/diaglab/apiserver/internal/handlers"
	"github.com/diaglab/apiserver/internal/metrics"
	"github.com/diaglab/apiserver/internal/middleware"
	"github.com/diaglab/apiserver/internal/mq"
	"github.com/diaglab/apiserver/internal/payments"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/internal/storage"
	"github.com/diaglab/apiserver/internal/store"
)

// Server wraps the HTTP server, its router and the shared resources
// that need closing on shutdown.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New wires the full application: database, repositories, services,
// token auth, the payment gateway and the optional report-storage and
// notification backends selected by config.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	broker, err := openBroker(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	reports, err := openReportStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		closeBroker(broker)
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	bannerRepo := store.NewBannerRepository(dbConn)
	testRepo := store.NewLabTestRepository(dbConn)
	reservationRepo := store.NewReservationRepository(dbConn)
	resultRepo := store.NewResultRepository(dbConn)
	doctorRepo := store.NewDoctorRepository(dbConn)
	recommendationRepo := store.NewRecommendationRepository(dbConn)
	paymentRepo := store.NewPaymentRepository(dbConn)

	var notifier services.Notifier
	if broker != nil {
		notifier = broker
	}

	userService := services.NewUserService(userRepo)
	bannerService := services.NewBannerService(bannerRepo)
	testService := services.NewLabTestService(testRepo)
	reservationService := services.NewReservationService(reservationRepo, notifier)
	resultService := services.NewResultService(resultRepo, reports, notifier)
	doctorService := services.NewDoctorService(doctorRepo)
	recommendationService := services.NewRecommendationService(recommendationRepo)
	paymentService := services.NewPaymentService(paymentRepo)

	tokens := auth.NewTokenService(cfg.JWTSecret)
	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	requireAuth := handlers.RequireAuth(tokens)
	requireAdmin := handlers.RequireAdmin(userService)
	tokenLimiter := middleware.NewRateLimiter(rate.Limit(5), 10)

	authHandler := handlers.NewAuthHandler(tokens)

	router := chi.NewRouter()
	router.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Logger,
		chimiddleware.Timeout(60*time.Second),
		collector.Middleware,
	)

	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))

	router.With(tokenLimiter.Middleware).Post("/jwt", authHandler.IssueToken)

	router.Route("/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, requireAuth, requireAdmin)
	})
	router.Route("/banner", func(r chi.Router) {
		handlers.BannerRouter(r, bannerService, requireAuth, requireAdmin)
	})
	router.Route("/test", func(r chi.Router) {
		handlers.LabTestRouter(r, testService, collector, requireAuth, requireAdmin)
	})
	router.Route("/recommendation", func(r chi.Router) {
		handlers.RecommendationRouter(r, recommendationService)
	})
	router.Route("/reservation", func(r chi.Router) {
		handlers.ReservationRouter(r, reservationService, collector, requireAuth, requireAdmin)
	})
	router.Route("/result", func(r chi.Router) {
		handlers.ResultRouter(r, resultService, requireAuth, requireAdmin)
	})
	router.Route("/doctor", func(r chi.Router) {
		handlers.DoctorRouter(r, doctorService, requireAuth, requireAdmin)
	})
	handlers.PaymentRouter(router, paymentService, gateway, collector)

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
		broker:     broker,
	}, nil
}

// openBroker builds the notification broker named by config, or nil
// when event publishing is disabled.
func openBroker(ctx context.Context, cfg config.MQConfig) (*mq.MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown MQ backend %q", cfg.Backend)
	}
}

// openReportStorage builds the report object store named by config, or
// nil when report uploads are disabled.
func openReportStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, fmt.Errorf("connect minio: %w", err)
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("connect gcs: %w", err)
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	reports := storage.NewStorage(backend)
	if err := reports.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure report bucket: %w", err)
	}
	return reports, nil
}

func closeBroker(broker *mq.MQ) {
	if broker != nil {
		_ = broker.Close()
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
	closeBroker(s.broker)
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
