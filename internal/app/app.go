package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamtv/backend/internal/access"
	"github.com/streamtv/backend/internal/config"
	"github.com/streamtv/backend/internal/handlers"
	"github.com/streamtv/backend/internal/httpserver"
	"github.com/streamtv/backend/internal/kv"
	"github.com/streamtv/backend/internal/logging"
	"github.com/streamtv/backend/internal/middleware"
)

// Run bootstraps the StreamTV gateway application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or check-access")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "check-access":
		return checkAccess(ctx)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	db, err := kv.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer db.Close()

	deps, checker := buildDependencies(db, cfg)

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(middleware.MaintenanceGate(checker)(mux))

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// checkAccess queries the maintenance flag once and prints the verdict,
// exiting non-zero when the application is disabled.
func checkAccess(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	status := access.NewClient(cfg.AccessCheckURL, cfg.AccessUUID, nil).Check(ctx)

	encoded, err := json.Marshal(status)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))

	if !status.Active {
		return errors.New("application is disabled")
	}
	return nil
}
