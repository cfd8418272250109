package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/delivery/dto"
	deliveryHttp "go-medical-booking/internal/delivery/http"
	"go-medical-booking/internal/delivery/http/handler"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/infrastructure/cache"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/observability/metrics"
	"go-medical-booking/internal/realtime"
	"go-medical-booking/internal/repository"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/session"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/jwt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	MongoDB     *mongo.Database
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize MongoDB (audit trail)
	mongoDB, err := database.NewMongoConnection(cfg.Mongo)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	app.MongoDB = mongoDB
	logrus.Info("MongoDB connected successfully")

	clock, err := newClock(cfg.App.Timezone)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}

	// Initialize all layers
	app.Server = initializeServer(cfg, db, redisClient, mongoDB, clock)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// newClock returns the wall clock in the zone whose calendar days bookings are made on.
func newClock(timezone string) (func() time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return func() time.Time { return time.Now().In(loc) }, nil
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mongoDB *mongo.Database, clock func() time.Time) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := dto.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Initialize repositories
	accountRepo := repository.NewAccountRepository()
	profileRepo := repository.NewProfileRepository()
	doctorRepo := repository.NewDoctorRepository()
	bookingRepo := repository.NewBookingRepository()
	auditLogRepo := repository.NewAuditLogRepository(mongoDB)

	// Initialize realtime
	broker := realtime.NewRedisBroker(redisClient)
	notifier := realtime.NewNotifier(broker, log)

	// Initialize sessions
	sessionManager := session.NewManager(
		session.NewDeriver(db, log, doctorRepo),
		session.NewRedisStore(redisClient),
		log,
	)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	paymentService := service.NewMockPaymentService(log)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, accountRepo, profileRepo, doctorRepo, jwtService, sessionManager, redisClient, auditService, notifier)
	patientBookingUsecase := usecase.NewPatientBookingUsecase(db, log, bookingRepo, doctorRepo, paymentService, auditService, broker, notifier, bookingMetrics, clock)
	doctorAppointmentUsecase := usecase.NewDoctorAppointmentUsecase(db, log, bookingRepo, auditService, broker, notifier, bookingMetrics)
	doctorDirectoryUsecase := usecase.NewDoctorDirectoryUsecase(db, log, doctorRepo, auditService, broker, notifier)
	profileUsecase := usecase.NewProfileUsecase(db, log, profileRepo, auditService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorDirectoryUsecase, customValidator)
	profileHandler := handler.NewProfileHandler(profileUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(patientBookingUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(doctorAppointmentUsecase, customValidator)
	streamHandler := handler.NewStreamHandler(patientBookingUsecase, doctorAppointmentUsecase, doctorDirectoryUsecase, bookingMetrics, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessionManager, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins...)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		profileHandler,
		bookingHandler,
		appointmentHandler,
		streamHandler,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Handler()

	// Create server. No write timeout: websocket streams stay open.
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, mongo)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Closing the client also ends every open pub/sub listener
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.MongoDB.Client().Disconnect(ctx); err != nil {
			logrus.Warnf("Failed to disconnect MongoDB: %v", err)
		}
	}
}
