package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/api"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/config"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/logger"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/portfolio"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	if cfg.LogFile != "" {
		logCfg.LogFile = cfg.LogFile
	}
	logCfg.Development = cfg.DebugLogging

	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	zl := appLogger.WithComponent("server")
	zl.Info("Starting portfolio service",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("data_api", cfg.DataAPIURL))

	client := polymarket.NewClient(zl.Logger, polymarket.ClientOptions{
		BaseURL:  cfg.DataAPIURL,
		Timeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxActivityPages,
		MaxTries: cfg.Retries,
	})

	service := portfolio.NewService(client, zl.Logger, portfolio.ServiceOptions{
		ClosedLimit: cfg.ClosedPositionsLimit,
	})

	server := api.NewServer(service, api.ServerConfig{
		ListenAddr:      cfg.ListenAddr,
		DefaultWallet:   cfg.DefaultWallet,
		DefaultHorizons: cfg.DefaultHorizons,
	}, zl)

	if err := server.Start(rootCtx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	zl.Info("Server stopped")
	return nil
}
