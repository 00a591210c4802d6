package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ZoeWilliams/donationswap/internal/app/matchapp"
	"github.com/ZoeWilliams/donationswap/internal/config"
	"github.com/ZoeWilliams/donationswap/internal/infra/logger"
)

func main() {
	commit := flag.Bool("commit", false, "apply changes; without this flag the run is a dry run")
	interval := flag.Duration("interval", 0, "pause between runs; 0 runs once and exits")
	flag.Parse()

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	// Flags given on the command line beat file and environment values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "commit":
			cfg.Matchmaker.Commit = *commit
		case "interval":
			cfg.Matchmaker.Interval = *interval
		}
	})

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := matchapp.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("create matchmaker app", zap.Error(err))
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		log.Fatal("matchmaker failed", zap.Error(err))
	}
}
