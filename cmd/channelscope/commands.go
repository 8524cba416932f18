package main

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
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/channelscope/api"
	"github.com/use-agent/channelscope/config"
	"github.com/use-agent/channelscope/models"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "channelscope",
		Short:        "Analyze YouTube channel pages with a headless browser",
		SilenceUsage: true,
		// Running without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newAnalyzeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "analyze <channel-url>",
		Short: "Analyze one channel and print its record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func runServe(ctx context.Context) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("channelscope starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxSessions", cfg.Session.MaxSessions,
		"navTimeout", cfg.Scraper.NavigationTimeout,
	)

	// ── 3. Wire the analyzer (browsers are launched per request) ────
	analyzer := newAnalyzer(cfg)

	// ── 4. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(analyzer, cfg, time.Now())

	// ── 5. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// ── 6. Graceful shutdown ────────────────────────────────────────
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server: %w", err)
	case <-sigCtx.Done():
		slog.Info("shutdown signal received")
	}

	// In-flight analyses release their browsers as their contexts end.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	stats := analyzer.Stats()
	slog.Info("channelscope stopped", "launched", stats.Launched, "released", stats.Released)
	return nil
}

func runAnalyze(ctx context.Context, channelURL string, pretty bool) error {
	cfg := config.Load()
	initLogger(cfg.Log)

	req := models.AnalyzeRequest{URL: channelURL}
	if err := req.Validate(); err != nil {
		return errors.New(models.AsScrapeError(err).PublicMessage())
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	record, err := newAnalyzer(cfg).Analyze(sigCtx, req.URL)
	if err != nil {
		return errors.New(models.AsScrapeError(err).PublicMessage())
	}

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(record)
}
