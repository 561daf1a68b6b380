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

	"adtest/internal/adapter/http"
	"adtest/internal/app"
	"adtest/internal/config"
)

// main is the entry point of the adtest server. It loads configuration,
// opens the configured key-value store (running migrations first for
// postgres when enabled), wires the use cases and starts the HTTP server. On
// receiving a termination signal it gracefully shuts down the server and
// releases every open draft.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	logger := app.NewLogger(cfg.Log, os.Stdout)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup error", slog.Any("error", err))
		return
	}
	defer a.Close()

	handler := httpadapter.NewHandler(httpadapter.Deps{
		Tests:         a.Tests,
		Drafts:        a.Drafts,
		Sessions:      a.Sessions,
		Previews:      a.Previews,
		MaxUploadSize: cfg.HTTP.MaxUploadSize,
	}, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", int(cfg.HTTP.Port)),
			slog.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			logger.Error("server error", slog.Any("error", err))
			return
		}
		exitCode = 0
	case sig := <-quit:
		exitCode = signalExitCode(sig)
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancelShutdown()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped", slog.Int("open_drafts", a.Drafts.Len()))
	}
}

// signalExitCode follows the shell convention of 128 plus the signal number.
func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
