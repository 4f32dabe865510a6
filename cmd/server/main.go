package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"opsboard/internal/api"
	"opsboard/internal/auth"
	"opsboard/internal/config"
	"opsboard/internal/db"
	"opsboard/internal/db/migrate"
	"opsboard/internal/events"
	"opsboard/internal/logging"
	"opsboard/internal/mcp"
	"opsboard/internal/otel"
	"opsboard/internal/repository"
	"opsboard/internal/services"
	"opsboard/internal/tls"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logging
	logger := logging.NewLogger()

	// Parse command line flags
	envFile := flag.String("env", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}
	logger.Info("Configuration loaded",
		"okta_domain", cfg.Auth.OktaDomain,
		"environment", cfg.Environment,
		"config_file", viper.ConfigFileUsed(),
	)

	logger.Info("Starting Operations Board Service")

	// Apply migrations before anything touches the schema
	if err := migrate.Run(cfg.DatabaseURL(), "up"); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Migration failed: %v", err)
	}

	// Initialize database connection
	dbPool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer dbPool.Close()

	logger.Info("Database connected")

	// Initialize repository layer
	store := repository.NewPostgresStore(dbPool)

	// Initialize service layer
	var embedding services.EmbeddingClient
	if cfg.Embedding.URL != "" {
		embedding = services.NewHTTPEmbeddingClient(cfg.Embedding.URL)
	}
	dashboard := services.NewDashboardService(store, embedding)
	mutations := services.NewMutationService(store)

	logger.Info("Service layer initialized")

	// Metrics
	metricsHandler, err := otel.InitMeterProvider(ctx, "opsboard")
	if err != nil {
		logger.Error("Failed to initialize metrics", "error", err)
		log.Fatalf("Metrics initialization failed: %v", err)
	}
	if err := otel.InitMetrics(ctx); err != nil {
		logger.Error("Failed to create meter instruments", "error", err)
		log.Fatalf("Metrics initialization failed: %v", err)
	}

	// Change streaming: hub, optional Kafka relay, LISTEN/NOTIFY loop
	hub := events.NewHub()
	relay := events.NewKafkaRelay(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if relay != nil {
		defer relay.Close()
		logger.Info("Kafka change relay enabled", "topic", cfg.Kafka.Topic)
	}
	listener := events.NewListener(cfg.DSN(), hub, relay, logger)
	go func() {
		if err := listener.Run(ctx); err != nil {
			logger.Error("change listener stopped", "error", err)
		}
	}()

	// Create Echo server
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("opsboard"))

	// Initialize authentication
	authz, err := auth.New(ctx, cfg, store, logger)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		log.Fatalf("auth initialization failed: %v", err)
	}

	// Register auth handlers
	e.GET("/login", echo.WrapHandler(http.HandlerFunc(authz.LoginHandler)))
	e.GET("/auth/callback", echo.WrapHandler(http.HandlerFunc(authz.CallbackHandler)))
	e.GET("/logout", echo.WrapHandler(http.HandlerFunc(authz.LogoutHandler)))

	// Unauthenticated operational endpoints
	e.GET("/healthz", echo.WrapHandler(http.HandlerFunc(api.HandleHealth)))
	e.GET("/metrics", echo.WrapHandler(metricsHandler))

	// Mount REST API handlers behind auth
	apiGroup := e.Group("/api/v1")
	apiGroup.Use(echo.WrapMiddleware(authz.RequireAuth))
	apiServer := api.NewServer(store, dashboard, mutations, hub)
	apiServer.RegisterRoutes(apiGroup)

	logger.Info("REST API handlers mounted")

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(store, dashboard, mutations)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	// Create HTTP server
	addr := cfg.Server.Addr
	if cfg.TLS.Enable {
		// use TLS port 8443
		addr = ":8443"
	}
	// No WriteTimeout: /api/v1/stream and /mcp/sse hold their responses
	// open indefinitely, and a server-wide write deadline would cut every
	// SSE connection off at the timeout. The stream handler arms its own
	// per-write deadlines instead.
	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			// ensure certificate exists if requested
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", "error", err)
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig)

		// Stop the change listener before the HTTP server drains
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}
