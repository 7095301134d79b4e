package main

import (
	"context"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/catalog-admin/internal/backend"
	"github.com/kahvecikaan/catalog-admin/internal/catalog"
	"github.com/kahvecikaan/catalog-admin/internal/config"
	"github.com/kahvecikaan/catalog-admin/internal/events"
	"github.com/kahvecikaan/catalog-admin/internal/notify"
	"github.com/kahvecikaan/catalog-admin/internal/storage"
	httpTransport "github.com/kahvecikaan/catalog-admin/internal/transport/http"
	websocketTransport "github.com/kahvecikaan/catalog-admin/internal/transport/websocket"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize the logger
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "catalog-admin",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	// Initialize the event bus - this will be shared between services
	eventBus := events.NewEventBus[any]()

	var client *backend.Client
	if cfg.Backend == config.BackendREST || cfg.Storage == config.StorageREST {
		client = backend.NewClient(cfg.BackendURL, cfg.BackendKey, logger.Named("backend"))
	}

	// Product collection
	var products backend.Backend
	var closers []io.Closer
	switch cfg.Backend {
	case config.BackendREST:
		products = client.Table(cfg.ProductsTable)
	case config.BackendPostgres, config.BackendSQLite:
		store, err := backend.OpenStore(cfg.Backend, cfg.DatabaseDSN, cfg.ProductsTable)
		if err != nil {
			logger.Error("Unable to open database", "driver", cfg.Backend, "error", err)
			os.Exit(1)
		}
		closers = append(closers, store)
		products = store
	default:
		logger.Warn("Using in-memory products, changes are lost on restart")
		products = backend.NewMemory()
	}

	// Image storage. local is also served under /images.
	var objects backend.ObjectStore
	var localStore httpTransport.ObjectReader
	switch cfg.Storage {
	case config.StorageREST:
		objects = client.Bucket(cfg.StorageBucket)
	default:
		local, err := storage.NewLocal(cfg.StoragePath, cfg.PublicBaseURL, cfg.MaxImageSize)
		if err != nil {
			logger.Error("Unable to create storage", "error", err)
			os.Exit(1)
		}
		objects = local
		localStore = local
	}

	// Forward domain events to the broker when one is configured
	if cfg.AMQPURL != "" {
		fwd, err := events.DialForwarder(cfg.AMQPURL, cfg.AMQPExchange, eventBus, logger.Named("amqp"))
		if err != nil {
			logger.Error("Unable to connect to the broker", "error", err)
			os.Exit(1)
		}
		closers = append(closers, fwd)
	}

	toaster := notify.NewToaster(eventBus)

	workflow := catalog.NewWorkflow(
		products,
		objects,
		toaster,
		logger.Named("catalog"),
		catalog.WithBus(eventBus),
		catalog.WithEditStrategy(cfg.EditStrategy),
		catalog.WithConfirmStrategy(cfg.ConfirmStrategy),
		catalog.WithReconcile(cfg.Reconcile),
		catalog.WithConfirmFunc(notify.ContextConfirm),
	)

	dialogLogger := logger.Named("dialog")
	dialog := catalog.NewDialog(products, func(message string) {
		dialogLogger.Warn("Alert", "message", message)
	}, eventBus, dialogLogger)
	dialog.OnCreated = func(ctx context.Context) {
		if err := workflow.Remount(ctx); err != nil {
			dialogLogger.Error("Unable to reload the catalog", "error", err)
		}
	}

	// Initialize HTTP handlers
	mw := httpTransport.NewMiddleware(logger.Named("http"), httpTransport.CORSConfigFor(cfg.CORSOrigins))
	ch := httpTransport.NewCatalogHandler(workflow, dialog, logger.Named("http-handler"))
	ih := httpTransport.NewImageHandler(logger.Named("image-handler"), workflow, localStore, cfg.MaxImageSize)

	// Initialize the WebSocket handler with the event bus
	wh := websocketTransport.NewHandler(
		logger.Named("websocket-handler"),
		eventBus,
		func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || mw.AllowsOrigin(origin)
		},
	)

	router := httpTransport.NewRouter(ch, ih, wh, mw, logger)

	// First page load
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := workflow.Load(loadCtx); err != nil {
		logger.Error("Initial load failed", "error", err)
	}
	loadCancel()

	// Create the HTTP Server
	server := &http.Server{
		Addr:         cfg.BindAddress,
		Handler:      router,
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start the server in a new goroutine
	go func() {
		logger.Info("Starting server",
			"bind_address", cfg.BindAddress,
			"backend", cfg.Backend,
			"storage", cfg.Storage,
		)
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

	// Context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}

	toaster.Dismiss()
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("Error closing resource", "error", err)
		}
	}
}
