package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/activity"
	"github.com/aman-churiwal/mailing-lists/internal/config"
	"github.com/aman-churiwal/mailing-lists/internal/events"
	"github.com/aman-churiwal/mailing-lists/internal/form"
	"github.com/aman-churiwal/mailing-lists/internal/handler"
	"github.com/aman-churiwal/mailing-lists/internal/healthcheck"
	"github.com/aman-churiwal/mailing-lists/internal/i18n"
	"github.com/aman-churiwal/mailing-lists/internal/mail"
	"github.com/aman-churiwal/mailing-lists/internal/middleware"
	"github.com/aman-churiwal/mailing-lists/internal/models"
	"github.com/aman-churiwal/mailing-lists/internal/ratelimit"
	"github.com/aman-churiwal/mailing-lists/internal/repository"
	"github.com/aman-churiwal/mailing-lists/internal/security"
	"github.com/aman-churiwal/mailing-lists/internal/service"
	"github.com/aman-churiwal/mailing-lists/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	router       *gin.Engine
	config       *config.Config
	logger       *zap.Logger
	redis        *storage.RedisClient
	postgres     *storage.Postgres
	publisher    *events.KafkaPublisher
	health       *healthcheck.Checker
	authService  *service.AuthService
	floodLimiter ratelimit.Limiter
	formHandler  *handler.FormHandler
	adminHandler *handler.AdminHandler
	authHandler  *handler.AuthHandler
	httpServer   *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres, logger *zap.Logger) (*Server, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:   gin.New(),
		config:   cfg,
		logger:   logger,
		redis:    redis,
		postgres: postgres,
	}

	if err := s.initializeServices(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) initializeServices() error {
	cfg := s.config

	subscriberRepo := repository.NewSubscriberRepository(s.postgres)
	listRepo := repository.NewListRepository(s.postgres)
	userRepo := repository.NewUserRepository(s.postgres)
	logs := activity.NewLogs(repository.NewOptionRepository(s.postgres), cfg.Logs.BulkEmailCap, cfg.Logs.ActivityCap)

	hooks := events.NewHooks(s.logger)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, s.logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		s.publisher = publisher
		hooks.AddListener(publisher)
	}

	transport, err := mail.NewTransport(cfg.Mail, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create mail transport: %w", err)
	}

	s.health = healthcheck.NewChecker(healthcheck.Config{}, s.logger,
		healthcheck.Probe{Name: "redis", Critical: true, Check: s.redis.Ping},
		healthcheck.Probe{Name: "database", Critical: true, Check: s.postgres.Ping},
		healthcheck.Probe{Name: "mail", Check: func(ctx context.Context) error {
			if transport.State() == mail.BreakerOpen {
				return mail.ErrCircuitOpen
			}
			return nil
		}},
	)

	tokens := security.NewTokenIssuer(cfg.Security.NonceSecret, cfg.Security.NonceLifetime)
	attempts := ratelimit.NewAttemptCounter(s.redis, cfg.Security.RateLimit.MaxAttempts, cfg.Security.RateLimit.Window)
	catalogs := i18n.New(cfg.I18n.DefaultLanguage)

	subscriptions := service.NewSubscriptionService(tokens, attempts, subscriberRepo, hooks, logs, s.logger)
	bulk := service.NewBulkEmailService(subscriberRepo, listRepo, transport, logs, cfg.Mail.Pause, s.logger)
	exports := service.NewExportService(subscriberRepo, listRepo, logs, s.logger)
	stats := service.NewStatsService(subscriberRepo, listRepo, logs)
	s.authService = service.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.JWTExpiryHours)

	renderer, err := form.NewRenderer(listRepo, subscriptions)
	if err != nil {
		return err
	}

	s.floodLimiter = ratelimit.NewLimiter(s.redis, cfg.Security.FloodLimit.Algorithm, cfg.Security.FloodLimit.RequestsPerMinute, time.Minute)
	s.formHandler = handler.NewFormHandler(renderer, subscriptions, catalogs, s.logger)
	s.adminHandler = handler.NewAdminHandler(listRepo, bulk, exports, stats, tokens, catalogs, s.logger)
	s.adminHandler.SetDefaultSender(cfg.Mail.FromName, cfg.Mail.FromAddress)
	s.authHandler = handler.NewAuthHandler(s.authService)

	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.CORS(s.config.Server.AllowedOrigins))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	flood := middleware.FloodLimit(s.floodLimiter, s.logger)

	s.router.GET("/subscribe", s.formHandler.ShowMany)
	s.router.GET("/subscribe/:list_id", s.formHandler.Show)
	s.router.POST("/subscribe/:list_id", flood, s.formHandler.Submit)
	s.router.GET("/embed/:list_id", s.formHandler.Embed)
	s.router.POST("/auth/login", flood, s.authHandler.Login)

	admin := s.router.Group("/admin", middleware.RequireAuth(s.authService))
	{
		read := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)
		write := middleware.RequireRole(models.RoleAdmin)

		admin.GET("/lists", read, s.adminHandler.Lists)
		admin.GET("/stats", read, s.adminHandler.Stats)
		admin.GET("/logs/bulk-email", read, s.adminHandler.CampaignLog)
		admin.GET("/logs/activity", read, s.adminHandler.ActivityLog)
		admin.GET("/tokens/:action", write, s.adminHandler.Token)
		admin.POST("/bulk-email", write, s.adminHandler.BulkEmail)
		admin.GET("/export", write, s.adminHandler.Export)
	}
}

// healthCheck reports the cached probe results. Only critical dependencies fail the check.
func (s *Server) healthCheck(c *gin.Context) {
	overall := s.health.OverallHealth()

	statusCode := http.StatusOK
	if overall == healthcheck.Unhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	checks := gin.H{}
	for name, status := range s.health.GetAllStatus() {
		checks[name] = status.IsHealthy
	}

	c.JSON(statusCode, gin.H{
		"status":    overall.String(),
		"service":   "mailing-lists",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.health.Start()

	s.logger.Info("starting mailing lists server",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.health.Stop()

	var errs []error
	if s.httpServer != nil {
		errs = append(errs, s.httpServer.Shutdown(ctx))
	}
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}

	return errors.Join(errs...)
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
