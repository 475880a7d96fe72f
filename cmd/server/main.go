package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/config"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/serverapp"
)

func main() {
	configPath := flag.String("config", "todesk_config.yml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app, err := serverapp.New(context.Background(), serverapp.Options{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: app.Handler,
	}
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				logger.Info("shutting down http server")
				// Drain requests before the backend goes away.
				err := srv.Shutdown(ctx)
				return errors.Join(err, app.Close())
			},
		},
	)

	exitCode := <-wait
	logger.Info("server exited", zap.Int("code", exitCode))
	_ = logger.Sync()
	os.Exit(exitCode)
}
