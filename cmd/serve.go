package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"image-catalog/internal/events"
	"image-catalog/internal/filesystem"
	"image-catalog/internal/handlers"
	"image-catalog/internal/logging"
	"image-catalog/internal/memory"
	"image-catalog/internal/metrics"
	"image-catalog/internal/middleware"
	"image-catalog/internal/startup"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web server",
		Long: `Starts the catalog HTTP server, the websocket change feed and, when
enabled, the Prometheus metrics server and the media directory watcher.`,
		Example: `  # Start server on default port 3000
  image-catalog serve

  # Start server on custom port with libvips thumbnails
  image-catalog serve --port 8080 --thumbnail-backend vips`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				config.Port = port
			}
			return serve(cmd.Context(), config)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "3000", "Port to listen on (overrides PORT)")

	return cmd
}

func serve(ctx context.Context, config *startup.Config) error {
	startTime := time.Now()

	startup.PrintBanner()
	startup.LogSystemInfo()
	startup.LogConfig(config)
	memory.ConfigureFromEnv()

	if _, err := startup.PrepareMediaDir(config); err != nil {
		return err
	}

	filesystem.SetObserver(metrics.NewFilesystemObserver())
	metrics.InitializeMetrics()

	a, err := newApp(config)
	if err != nil {
		return err
	}
	defer a.Close()
	startup.LogThumbnailBackend(a.thumbs.Codec().Name())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := events.NewHub()
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(runCtx)
	}()

	// A running watcher reports uploads and deletes itself.
	var publisher events.Publisher = hub
	var watcher *events.Watcher
	if config.WatchEnabled {
		watcher = events.NewWatcher(config.MediaDir, hub)
		if err := watcher.Start(runCtx); err != nil {
			logging.Warn("Media watcher unavailable, falling back to request events: %v", err)
			watcher = nil
		} else {
			publisher = nil
		}
	}

	h := handlers.New(a.catalog, handlers.Options{
		CopyURL:        config.CopyURL,
		MaxUploadBytes: config.MaxUploadBytes(),
		Hub:            hub,
		Publisher:      publisher,
	})

	router := handlers.NewRouter(h, config.StaticDir)
	router.Use(mux.MiddlewareFunc(middleware.Metrics(middleware.DefaultMetricsConfig())))
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	serverErr := make(chan error, 2)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	if metricsSrv != nil {
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		WatchEnabled:    watcher != nil,
		StartupDuration: time.Since(startTime),
	})

	var runErr error
	select {
	case <-ctx.Done():
		startup.LogShutdownInitiated(context.Cause(ctx).Error())
	case runErr = <-serverErr:
		startup.LogShutdownInitiated("server error")
		logging.Error("Server error: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	cancel()

	if watcher != nil {
		startup.LogShutdownStep("Stopping media watcher")
		<-watcher.Done()
		startup.LogShutdownStepComplete("Media watcher stopped")
	}

	startup.LogShutdownStep("Closing websocket clients")
	<-hubDone
	startup.LogShutdownStepComplete("Websocket hub stopped")

	startup.LogShutdownComplete()
	return runErr
}
