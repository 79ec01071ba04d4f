package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/kahvecikaan/probagno/internal/cache"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"github.com/kahvecikaan/probagno/internal/repository"
	"github.com/kahvecikaan/probagno/internal/service"
	"github.com/kahvecikaan/probagno/internal/store"
	httpTransport "github.com/kahvecikaan/probagno/internal/transport/http"
	websocketTransport "github.com/kahvecikaan/probagno/internal/transport/websocket"
	"github.com/nicholasjackson/env"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":9090", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"debug", "Log output level for the server [debug, info, trace]")
	logFile = env.String("LOG_FILE", false,
		"", "Also write logs to this file, rotated at 50 MB")
	databaseDSN = env.String("DATABASE_DSN", false,
		"", "Postgres connection string, the in-memory repository is used when empty")
	stateFile = env.String("STATE_FILE", false,
		"probagno-state.db", "bbolt file holding carts and the catalog snapshot, kept in memory when empty")
	cacheStaleTime = env.String("CACHE_STALE_TIME", false,
		"0s", "How long cached queries are served without revalidating")
	seedOnStart = env.String("SEED_ON_START", false,
		"false", "Upsert the sample catalog on start")
	corsOrigins = env.String("CORS_ORIGINS", false,
		"http://localhost:3000", "Comma separated list of allowed origins")
)

func main() {
	// a missing .env is fine, the environment and defaults still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		hclog.Default().Warn("Unable to load .env file", "error", err)
	}
	if err := env.Parse(); err != nil {
		hclog.Default().Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var output io.Writer = os.Stderr
	if *logFile != "" {
		output = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	// Initialize the logger
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "probagno-api",
		Level:  hclog.LevelFromString(*logLevel),
		Output: output,
	})

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	staleTime, err := time.ParseDuration(*cacheStaleTime)
	if err != nil {
		logger.Error("Invalid CACHE_STALE_TIME", "value", *cacheStaleTime, "error", err)
		os.Exit(1)
	}

	// Change signals from the repository reach the cache, the catalog store and
	// the websocket clients through this bus
	bus := events.NewEventBus[events.Change]()

	repo, err := newRepository(bus, logger.Named("repository"))
	if err != nil {
		logger.Error("Unable to open repository", "error", err)
		os.Exit(1)
	}

	queryCache := cache.New(cache.Options{
		StaleTime:  staleTime,
		Logger:     logger.Named("query-cache"),
		Registerer: prometheus.DefaultRegisterer,
	})

	catalogService := service.NewCatalogService(
		repo,
		queryCache,
		events.NewBusNotifier(bus),
		logger.Named("catalog-service"),
	)
	settingsService := service.NewSettingsService(repo, queryCache, logger.Named("settings-service"))

	ctx := context.Background()
	if seed, _ := strconv.ParseBool(*seedOnStart); seed {
		if err := catalogService.Seed(ctx); err != nil {
			logger.Error("Seeding finished with errors", "error", err)
		}
	}

	// Local state: carts and the last catalog snapshot
	carts, snapshot, closeState, err := openState(logger.Named("state"))
	if err != nil {
		logger.Error("Unable to open state file", "path", *stateFile, "error", err)
		os.Exit(1)
	}

	catalogStore := store.NewCatalog(catalogService, snapshot, logger.Named("catalog-store"))
	if err := catalogStore.Init(ctx); err != nil {
		logger.Warn("Serving the restored catalog snapshot", "error", err)
	}

	// Initialize the validator
	validator := domain.NewValidation()

	wh := websocketTransport.NewHandler(logger.Named("websocket-handler"), catalogService)

	cors := httpTransport.DefaultCORSConfig()
	cors.AllowedOrigins = strings.Split(*corsOrigins, ",")
	mw := httpTransport.NewMiddleware(logger.Named("http"), validator, cors, prometheus.DefaultRegisterer)

	handlerLogger := logger.Named("http-handler")
	router := httpTransport.NewRouter(httpTransport.Handlers{
		Products:  httpTransport.NewProductHandler(catalogService, catalogStore, handlerLogger),
		Cart:      httpTransport.NewCartHandler(carts, catalogService, settingsService, handlerLogger),
		Settings:  httpTransport.NewSettingsHandler(settingsService, handlerLogger),
		Admin:     httpTransport.NewAdminHandler(catalogService, catalogStore, handlerLogger),
		WebSocket: wh,
	}, mw)

	// Create the HTTP Server
	server := &http.Server{
		Addr:         *bindAddress,
		Handler:      httpTransport.Handler(router, mw),
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start the server in a new goroutine
	go func() {
		logger.Info("Starting server", "bind_address", *bindAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}

	catalogStore.Close()
	if err := catalogService.Close(); err != nil {
		logger.Error("Error closing catalog service", "error", err)
	}
	if err := closeState(); err != nil {
		logger.Error("Error closing state file", "error", err)
	}
}

func newRepository(bus *events.ChangeBus, log hclog.Logger) (repository.Repository, error) {
	if *databaseDSN == "" {
		log.Info("Using the in-memory repository")
		return repository.NewMemoryRepository(bus), nil
	}

	db, err := repository.OpenPostgres(*databaseDSN)
	if err != nil {
		return nil, err
	}
	repo, err := repository.NewPostgresRepository(db, bus, log)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openState(log hclog.Logger) (*store.Carts, store.Persister[store.CatalogSnapshot], func() error, error) {
	if *stateFile == "" {
		log.Info("Keeping carts and the catalog snapshot in memory")
		return store.NewCarts(log), store.NewMemoryPersister(store.CatalogSnapshot{}), func() error { return nil }, nil
	}

	db, err := store.OpenStateFile(*stateFile)
	if err != nil {
		return nil, nil, nil, err
	}

	snapshot := store.NewBoltPersister[store.CatalogSnapshot](db, "catalog", store.CatalogVersion)
	return store.NewBoltCarts(db, log), snapshot, db.Close, nil
}
