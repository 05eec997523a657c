package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/cbtrade/coinbase"
	"github.com/betbot/cbtrade/internal/trader"
	"github.com/betbot/cbtrade/pkg/config"
	"github.com/betbot/cbtrade/pkg/logger"
)

func main() {
	granularity := flag.Int("granularity", 0, "candle sampling interval in seconds (default 360)")
	logFile := flag.String("logfile", "", "optional log file path")
	configPath := flag.String("config", "", "optional config file (.yaml)")
	flag.Parse()

	// Credentials may live in a .env file next to the binary.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *granularity > 0 {
		cfg.Granularity = *granularity
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, OutputFile: cfg.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := coinbase.NewClient(cfg.API.BaseURL, coinbase.Credentials{
		Key:        cfg.API.Key,
		Secret:     cfg.API.Secret,
		Passphrase: cfg.API.Passphrase,
	})
	reporter := trader.NewReporter(logrus.WithField("bot", "cbtrade"))
	executor := trader.NewExecutor(client, reporter, trader.ExecutorConfig{
		Product:         cfg.Product,
		SettlementDelay: time.Duration(cfg.SettlementDelay) * time.Second,
		DryRun:          cfg.DryRun,
	})
	loop := trader.NewLoop(client, executor, reporter, trader.LoopConfig{
		Product:      cfg.Product,
		Granularity:  time.Duration(cfg.Granularity) * time.Second,
		DataDelay:    time.Duration(cfg.DataDelay) * time.Second,
		ErrorBackoff: time.Duration(cfg.ErrorBackoff) * time.Second,
		FastPeriod:   cfg.FastPeriod,
		SlowPeriod:   cfg.SlowPeriod,
	})

	logrus.Infof("starting trading loop: product=%s granularity=%ds dry_run=%v",
		cfg.Product, cfg.Granularity, cfg.DryRun)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.Errorf("trading loop stopped: %v", err)
		os.Exit(1)
	}
	logrus.Info("shutdown complete")
}
