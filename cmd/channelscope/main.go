package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/use-agent/channelscope/config"
	"github.com/use-agent/channelscope/engine"
	"github.com/use-agent/channelscope/scraper"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAnalyzer wires launcher → session manager → analyzer. A missing browser
// binary is not fatal: the service starts, reports itself degraded and fails
// each analysis with ENGINE_UNAVAILABLE.
func newAnalyzer(cfg *config.Config) *scraper.Analyzer {
	launcher := scraper.NewRodLauncher(cfg.Browser, cfg.Scraper)
	if bin, err := scraper.ResolveBrowserBin(cfg.Browser.BrowserBin); err != nil {
		slog.Warn("browser binary not resolved; analyses will fail until one is installed", "error", err)
	} else {
		slog.Info("browser binary resolved", "path", bin)
	}

	sessions := engine.NewManager(launcher, engine.ManagerConfig{
		MaxSessions:  cfg.Session.MaxSessions,
		QueueTimeout: cfg.Session.QueueTimeout,
	})
	return scraper.NewAnalyzer(sessions, scraper.Navigator{Timeout: cfg.Scraper.NavigationTimeout}, nil)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
