package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solveit/internal/config"
	"solveit/internal/devserver"
	"solveit/internal/fakeapi"
	"solveit/internal/logger"
	"solveit/internal/metrics"
)

func main() {
	fake := flag.Bool("fake", false, "serve the in-memory API instead of proxying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("server", "info").Fatalf("Failed to load configuration: %v", err)
	}
	if *fake {
		cfg.UseFakeAPI = true
	}

	log := logger.New("server", cfg.LogLevel)

	var opts []devserver.Option
	m := metrics.New("devserver")
	opts = append(opts, devserver.WithMetrics(m))

	if cfg.UseFakeAPI {
		demo, err := fakeapi.NewDemo()
		if err != nil {
			log.Fatalf("Failed to build demo API: %v", err)
		}
		opts = append(opts, devserver.WithAPI(demo))
		log.Component(nil).Infof("Using in-memory API, demo login %s / %s", fakeapi.DemoUsername, fakeapi.DemoPassword)
	}

	srv, err := devserver.New(cfg, log, opts...)
	if err != nil {
		log.Fatalf("Failed to build dev server: %v", err)
	}

	limiter := devserver.NewLimiter(cfg.APIRateLimitRequests, cfg.APIRateLimitWindowMins)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Handler(limiter),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Component(map[string]interface{}{
		"addr":     cfg.Addr(),
		"web_root": cfg.WebRoot,
		"upstream": cfg.APIUpstream,
		"fake":     cfg.UseFakeAPI,
		"gzip":     cfg.EnableGzip,
		"metrics":  cfg.EnableMetrics,
	}).Info("SolveIt dev server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
