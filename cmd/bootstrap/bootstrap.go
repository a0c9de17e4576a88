package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartcare/config"
	"smartcare/internal/delivery/dto"
	deliveryHttp "smartcare/internal/delivery/http"
	"smartcare/internal/delivery/http/handler"
	"smartcare/internal/delivery/http/middleware"
	"smartcare/internal/domain/entity"
	domainRepo "smartcare/internal/domain/repository"
	"smartcare/internal/infrastructure/cache"
	"smartcare/internal/infrastructure/database"
	"smartcare/internal/infrastructure/metrics"
	"smartcare/internal/repository"
	"smartcare/internal/service"
	"smartcare/internal/usecase"
	"smartcare/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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
	Registry    *prometheus.Registry
	Server      *http.Server

	seqRepo          domainRepo.RecordSequenceRepository
	redisNumbers     *service.RedisRecordNumbers
	bedUsecase       usecase.BedUsecase
	importUsecase    usecase.PatientImportUsecase
	patientUsecase   usecase.PatientUsecase
	occupancyUsecase usecase.OccupancyUsecase
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
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Infof("Database connected successfully (%s)", cfg.DB.Driver)

	// Initialize Redis (optional)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis, app.Log)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
	}

	app.initialize()
	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// initialize wires repositories, services, usecases and the HTTP server
func (app *App) initialize() {
	log := app.Log
	db := app.DB

	// Metrics
	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(app.Registry)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	patientRepo := repository.NewPatientRepository()
	bedRepo := repository.NewBedRepository()
	app.seqRepo = repository.NewRecordSequenceRepository()

	// Initialize services
	allocator := service.NewBedAllocator(bedRepo, log, m)
	aggregator := service.NewOccupancyAggregator(db, bedRepo, log)
	app.Registry.MustRegister(metrics.NewOccupancyCollector(aggregator, log))

	var recordNumbers service.RecordNumberGenerator = service.NewSequenceRecordNumbers(app.seqRepo)
	if app.RedisClient != nil {
		app.redisNumbers = service.NewRedisRecordNumbers(db, app.RedisClient, app.seqRepo, log)
		recordNumbers = app.redisNumbers
	}

	// Initialize usecases
	app.patientUsecase = usecase.NewPatientUsecase(db, log, patientRepo, bedRepo, allocator, recordNumbers, customValidator, m)
	app.importUsecase = usecase.NewPatientImportUsecase(db, log, patientRepo, allocator, recordNumbers, m)
	app.bedUsecase = usecase.NewBedUsecase(db, log, bedRepo, allocator, customValidator)
	app.occupancyUsecase = usecase.NewOccupancyUsecase(db, log, patientRepo, aggregator)

	// Initialize handlers
	patientHandler := handler.NewPatientHandler(app.patientUsecase, app.importUsecase)
	bedHandler := handler.NewBedHandler(app.bedUsecase)
	occupancyHandler := handler.NewOccupancyHandler(app.occupancyUsecase)

	// Initialize middleware
	loggerMiddleware := middleware.NewLoggerMiddleware(log)
	corsMiddleware := middleware.NewCORSMiddleware(app.Config.App.CORSOrigin)

	// Initialize router
	router := deliveryHttp.NewRouter(patientHandler, bedHandler, occupancyHandler, loggerMiddleware, corsMiddleware, app.Registry)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Config.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// PrepareStore creates the schema, seeds the record sequence and, with Redis,
// raises the record number counter to the stored floor.
func (app *App) PrepareStore(ctx context.Context) error {
	if err := database.AutoMigrate(app.DB); err != nil {
		return err
	}
	if err := app.seqRepo.Ensure(app.DB.WithContext(ctx), entity.SequenceMRD); err != nil {
		return fmt.Errorf("failed to seed record sequence: %w", err)
	}
	if app.redisNumbers != nil {
		if err := app.redisNumbers.SyncOnStartup(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Migrate prepares the store and provisions the configured departments that
// have no beds yet.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.PrepareStore(ctx); err != nil {
		return err
	}

	hospital := app.Config.Hospital
	created, err := app.bedUsecase.EnsureDepartments(ctx, hospital.Departments, hospital.BedsPerDepartment)
	if err != nil {
		return fmt.Errorf("failed to provision departments: %w", err)
	}
	app.Log.Infof("Migration complete, %d beds provisioned", created)
	return nil
}

// Import bulk-imports a .csv or .xlsx file from disk
func (app *App) Import(ctx context.Context, path string) (*dto.ImportResult, error) {
	if err := app.PrepareStore(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return app.importUsecase.ImportFile(ctx, f, path)
}

// Run prepares the store, starts the HTTP server and handles graceful shutdown
func (app *App) Run(ctx context.Context) error {
	if err := app.PrepareStore(ctx); err != nil {
		return err
	}

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
	return nil
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
