package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-calendar/config"
	"clinic-calendar/internal/converter"
	deliveryHttp "clinic-calendar/internal/delivery/http"
	"clinic-calendar/internal/delivery/http/handler"
	"clinic-calendar/internal/delivery/http/middleware"
	"clinic-calendar/internal/domain/entity"
	"clinic-calendar/internal/infrastructure/cache"
	"clinic-calendar/internal/infrastructure/clinicapi"
	"clinic-calendar/internal/infrastructure/database"
	"clinic-calendar/internal/repository"
	"clinic-calendar/internal/service"
	"clinic-calendar/internal/usecase"
	"clinic-calendar/pkg/jwt"
	"clinic-calendar/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Registry    *service.CalendarSessionRegistry
	Server      *http.Server
}

// LoadConfig reads configuration and builds the logger every command shares.
func LoadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg.App)

	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid calendar timezone %q: %w", cfg.Calendar.Timezone, err)
	}
	converter.SetLocation(loc)

	if !entity.CalendarView(cfg.Calendar.DefaultView).IsValid() {
		return nil, nil, fmt.Errorf("invalid default calendar view %q", cfg.Calendar.DefaultView)
	}

	log.WithFields(logrus.Fields{
		"env":      cfg.App.Env,
		"timezone": loc.String(),
		"backend":  cfg.ClinicAPI.BaseURL,
	}).Info("Configuration loaded successfully")

	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.Server, app.Registry = initializeServer(cfg, log, db, redisClient)

	return app, nil
}

// newLogger configures the logrus logger
func newLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) (*http.Server, *service.CalendarSessionRegistry) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Sessions outlive access tokens; they expire with the refresh token.
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.JWT.RefreshExpiry)

	// Login and refresh run without a session; everything else speaks as the caller.
	publicClient := clinicapi.NewClient(cfg.ClinicAPI, log)
	authRepo := repository.NewAuthRepository(publicClient)
	tokenSource := service.NewSessionTokenSource(sessionRepo, authRepo, log)
	sessionClient := publicClient.WithTokenSource(tokenSource)

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository(sessionClient)
	blockedTimeRepo := repository.NewBlockedTimeRepository(sessionClient)
	doctorRepo := repository.NewDoctorRepository(sessionClient)
	auditLogRepo := repository.NewAuditLogRepository()

	responseCache := cache.NewRedisCache(redisClient, log)
	auditService := service.NewAuditService(db, log, auditLogRepo)

	// Initialize usecases
	appointmentUsecase := usecase.NewAppointmentUsecase(log, appointmentRepo, blockedTimeRepo, doctorRepo, responseCache, auditService, cfg.Calendar)

	registry := service.NewCalendarSessionRegistry(
		usecase.NewCalendarSourceFactory(log, appointmentUsecase),
		entity.CalendarView(cfg.Calendar.DefaultView),
		cfg.Calendar.SessionIdleTimeout,
		log,
	)

	// Role actions also patch the caller's open calendar.
	doctorUsecase := usecase.NewDoctorAppointmentUsecase(log, appointmentUsecase, registry)
	patientUsecase := usecase.NewPatientAppointmentUsecase(log, appointmentUsecase, registry)
	receptionUsecase := usecase.NewReceptionistAppointmentUsecase(log, appointmentUsecase, registry)

	authUsecase := usecase.NewAuthUsecase(log, authRepo, sessionRepo, jwtService, registry, auditService)
	calendarUsecase := usecase.NewCalendarUsecase(log, registry, appointmentUsecase, doctorUsecase, patientUsecase, receptionUsecase, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"redis": handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
		"postgres": handler.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	})
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	calendarHandler := handler.NewCalendarHandler(calendarUsecase, customValidator)
	socketHandler := handler.NewCalendarSocketHandler(log, calendarUsecase, cfg.App.CORSOrigins)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	receptionHandler := handler.NewReceptionHandler(receptionUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessionRepo)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(
		healthHandler,
		authHandler,
		calendarHandler,
		socketHandler,
		doctorHandler,
		patientHandler,
		receptionHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server. No write timeout: calendar sockets stay open.
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, registry
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	return app.waitForShutdown(errCh)
}

// waitForShutdown blocks until an interrupt signal is received or the server fails
func (app *App) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
		app.Log.Info("Shutting down server...")
	case serveErr = <-errCh:
		app.Log.Errorf("Failed to start server: %v", serveErr)
	}

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Sockets end once their stores close.
	app.Registry.Stop()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
	return serveErr
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
