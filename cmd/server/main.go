package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/config"
	"github.com/frontline-tcg/frontline-server/internal/game"
	"github.com/frontline-tcg/frontline-server/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting frontline server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	registry := game.NewSpecialRegistry()
	game.RegisterBuiltins(registry)

	cat, err := catalog.LoadFiles(cfg.Data.CardsPath, cfg.Data.AbilitiesPath, cfg.Data.DecksPath, registry.IDs())
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded",
		zap.Int("cards", len(cat.CardIDs())),
		zap.Strings("decks", cat.DeckIDs()),
	)

	engine := game.NewEngine(cat, registry, game.Rules{
		StartingCredits:  cfg.Balance.StartingCredits,
		CreditIncome:     cfg.Balance.CreditIncome,
		StartingHandSize: cfg.Balance.StartingHandSize,
	}, logger)

	gateway := server.NewGateway(engine, logger)
	gateway.SetMaxMatches(cfg.Server.MaxMatches)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: gateway.Handler(),
	}

	go func() {
		logger.Info("listening", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(serveErr))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	logger.Info("frontline server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
