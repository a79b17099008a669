package app

import (
	"log/slog"
	"net/http"

	"github.com/Nyctonit/feature-flags-service/internal/config"
	"github.com/Nyctonit/feature-flags-service/internal/observability"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Server  *http.Server
	Runtime *observability.Runtime
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Runtime: runtime}
}
