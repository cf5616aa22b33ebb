package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"movie-explorer/internal/app"
	"movie-explorer/internal/config"
	"movie-explorer/internal/handlers"
	"movie-explorer/internal/models"
	"movie-explorer/pkg/logging"
	"movie-explorer/pkg/metrics"
)

func main() {
	flags := pflag.NewFlagSet("movie-explorer-server", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a movie-explorer.yaml config file")
	flags.Int("port", 0, "HTTP listen port (default 8080)")
	config.AddDatasetFlags(flags)
	_ = flags.Parse(os.Args[1:])

	// Load configuration: file, then MOVIE_EXPLORER_* env, then flags
	loader := config.NewLoader()
	if err := loader.BindFlags(flags, serverFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loader.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("movie-explorer-api", app.Version, cfg.LogLevel())

	ctx := context.Background()
	logger.Info(ctx, "[STARTUP] Starting movie explorer API server", logging.Fields{
		"version":        app.Version,
		"config_file":    loader.ConfigFileUsed(),
		"server_host":    cfg.Server.Host,
		"server_port":    cfg.Server.Port,
		"dataset_source": cfg.Dataset.Source,
		"strict_bounds":  cfg.Filters.StrictBounds,
	})

	metricsCollector := metrics.NewCollector("movie_explorer", prometheus.DefaultRegisterer)

	// The catalog is loaded once; an unusable dataset halts startup
	explorer, catalog, err := app.NewExplorer(ctx, cfg, logger, metricsCollector)
	if err != nil {
		var cfgErr *models.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Fatal(ctx, "[STARTUP_ERROR] Dataset is not usable", logging.Fields{
				"source": cfgErr.Source,
			}, err)
		}
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load movie catalog", logging.Fields{
			"dataset_source": cfg.Dataset.Source,
		}, err)
	}

	movieHandler := handlers.NewMovieHandler(explorer, catalog, logger, metricsCollector)

	router := mux.NewRouter()
	router.Use(handlers.RequestIDMiddleware)

	movieHandler.RegisterRoutes(router)
	router.HandleFunc("/api/docs", handlers.SwaggerUI).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", handlers.OpenAPISpec).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = router
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.Server.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "OPTIONS"}),
		gorillahandlers.ExposedHeaders([]string{handlers.RequestIDHeader}),
	)(handler)
	handler = gorillahandlers.RecoveryHandler()(handler)
	handler = gorillahandlers.CombinedLoggingHandler(os.Stderr, handler)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info(ctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
			"records": catalog.Dataset.Len(),
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "[SERVER_ERROR] Server failed", logging.Fields{}, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server forced to shutdown", logging.Fields{}, err)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

// serverFlags adds the listener port to the dataset flags shared with the CLI
func serverFlags() map[string]string {
	bindings := map[string]string{"server.port": "port"}
	maps.Copy(bindings, config.DatasetFlags)
	return bindings
}
