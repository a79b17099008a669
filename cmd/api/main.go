package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nyctonit/feature-flags-service/internal/di"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations()
		return
	}

	application, err := di.InitializeApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	logger := application.Logger

	go func() {
		logger.Info("http server starting",
			"addr", application.Server.Addr,
			"env", application.Config.Env,
			"version", application.Config.ServiceVersion,
		)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}
	if err := application.Runtime.Shutdown(ctx); err != nil {
		logger.Error("observability shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

func runMigrations() {
	runner, err := di.InitializeMigrationRunner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize migration runner: %v\n", err)
		os.Exit(1)
	}
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}
