// Package main is the entry point for the tick CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tick/internal/backend/googletasks"
	"tick/internal/backend/rest"
	"tick/internal/cli"
	"tick/internal/commands"
	"tick/internal/config"
	"tick/internal/service"
)

// newService builds the backend named in the settings.
func newService(ctx context.Context, cfg *config.Config) (service.Service, error) {
	if !cfg.HasCredentials() {
		return nil, service.ErrUnauthorized
	}
	switch cfg.Settings.Backend {
	case config.BackendGoogle:
		c, err := googletasks.New(ctx, cfg)
		if errors.Is(err, googletasks.ErrNoOAuthClient) {
			return nil, fmt.Errorf("%w: %w", service.ErrUnauthorized, err)
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return rest.New(rest.Options{
			BaseURL:     cfg.Settings.APIURL,
			SessionPath: cfg.SessionPath(),
			Timeout:     cfg.Settings.RequestTimeout,
			Logger:      cfg.Logger,
		}), nil
	}
}

func main() {
	// Cancel on interrupt so long-running commands (focus, watch) stop cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
