package main

import (
	"context"
	"fmt"
	"os"

	"tractorlog/internal/cli"
	"tractorlog/internal/config"
	applog "tractorlog/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	// Commands print their results on stdout, so logs stay quiet unless asked.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, applog.ComponentApp)

	load := func(ctx context.Context) (*cli.Env, func() error, error) {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
		res, err := cli.OpenStore(ctx, logger, cfg)
		if err != nil {
			return nil, nil, err
		}
		entries, reports := cli.BuildServices(cfg, res, nil)
		return &cli.Env{Store: res.Store, Reports: reports}, entries.Close, nil
	}

	if err := cli.NewRootCommand(load).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
