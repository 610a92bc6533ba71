package main

import (
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/config"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/export"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/logger"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/portfolio"
	"github.com/aymeric-roucher/PolymarketShowcase/internal/ui"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	wallet := flag.String("wallet", "", "Wallet address to display (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Console-only logger; file logging would fight the TUI for the terminal
	appLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	target := cfg.DefaultWallet
	if *wallet != "" {
		target = *wallet
	}
	if target == "" {
		log.Fatal("No wallet address: set default_wallet in config or pass -wallet")
	}

	client := polymarket.NewClient(appLogger, polymarket.ClientOptions{
		BaseURL:  cfg.DataAPIURL,
		Timeout:  time.Duration(cfg.RequestTimeout) * time.Second,
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxActivityPages,
		MaxTries: cfg.Retries,
	})

	service := portfolio.NewService(client, appLogger, portfolio.ServiceOptions{
		ClosedLimit: cfg.ClosedPositionsLimit,
	})

	exporter := export.NewSnapshotExporter(cfg.ExportDir, appLogger)

	dashboard := ui.NewDashboard(service, exporter, target, cfg.DefaultHorizons, appLogger)

	program := tea.NewProgram(dashboard, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		appLogger.Error("TUI application failed", zap.Error(err))
	}
}
