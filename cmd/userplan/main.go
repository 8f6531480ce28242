// Command userplan inspects and changes subscription plans without going through the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"evolve_backend/internal/app/di"
	"evolve_backend/internal/config"
	"evolve_backend/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openBackend).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// openBackend opens the store configured by the same environment as the server.
// Logs go to stderr so that stdout stays machine readable.
func openBackend(ctx context.Context) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.InitWithWriter(os.Stderr, "userplan", cfg.LogLevel, true)

	s, err := di.NewUserStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &backend{store: s.Store, close: s.Close}, nil
}
