// Command dryrun runs the squad pipeline once against local gameweek data
// with the mock model client and prints the resulting selection. Useful for
// checking data loading and the deterministic fallback path without any
// upstream credentials.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	app "pundit/internal/app"
	"pundit/internal/config"
	"pundit/pkg/logger"
)

func main() {
	dataRoot := flag.String("data", "", "root directory of season gameweek CSV files (overrides config)")
	season := flag.String("season", "", "season label, e.g. 2025-26 (overrides config)")
	gameweek := flag.Int("gw", 0, "upcoming gameweek number (overrides config)")
	budget := flag.Float64("budget", 0, "squad budget in millions (overrides config)")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			logger.Error(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Force the mock client so the run never reaches the network. Set before
	// loading: config validation only waives the API key when the mock is on.
	_ = os.Setenv("PUNDIT_LLM_USE_MOCK", "true")

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	cfg.LLMUseMock = true

	if *dataRoot != "" {
		cfg.DataRoot = *dataRoot
	}
	if *season != "" {
		cfg.Season = *season
	}

	svc, err := app.FromConfig(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to build service: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer svc.Stop()

	req := app.Request{
		Season:   cfg.Season,
		Gameweek: *gameweek,
		Budget:   *budget,
	}

	result, err := svc.GenerateSquad(ctx, req)
	if err != nil {
		os.Stderr.WriteString("pipeline failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Team); err != nil {
		os.Stderr.WriteString("failed to encode selection: " + err.Error() + "\n")
		os.Exit(1)
	}
}
