package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	wordtex "github.com/wordtex/wordtex"
	"github.com/wordtex/wordtex/internal/api"
	"github.com/wordtex/wordtex/internal/config"
	"github.com/wordtex/wordtex/internal/history"
	"github.com/wordtex/wordtex/internal/pandoc"
)

// shutdownGrace bounds how long in-flight requests may finish after a
// termination signal.
const shutdownGrace = 10 * time.Second

// runServe starts the HTTP API server.
func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "config file (YAML)")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: wordtex serve [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	engine := pandoc.NewEngine(
		pandoc.WithRunner(&pandoc.ExecRunner{Binary: cfg.Engine.Binary}),
		pandoc.WithFragmentTimeout(cfg.Engine.FragmentTimeoutDuration()),
		pandoc.WithDocumentTimeout(cfg.Engine.DocumentTimeoutDuration()),
	)
	conv := wordtex.New(wordtex.WithEngine(engine))
	defer conv.Close()

	var store *history.Store
	if cfg.History.Path != "" {
		store, err = history.Open(cfg.History.Path, cfg.History.MaxItems)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(conv, store, log, cfg.Server.MaxBodyBytes),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
