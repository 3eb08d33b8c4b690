package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetable/internal/frontend/handlers"
	"github.com/cory-johannsen/dicetable/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetable/internal/observability"
	"github.com/cory-johannsen/dicetable/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telnet dice table",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting dice table",
		zap.String("version", version),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Int("default_faces", cfg.Dice.DefaultFaces),
		zap.Int("roll_budget", cfg.Dice.RollBudget),
	)

	table := handlers.NewTable(newExecutor(cfg, logger), logger.Named("table"))
	acceptor := telnet.NewAcceptor(cfg.Telnet, table, logger.Named("telnet"))

	lc := server.NewLifecycle(logger)
	lc.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("dice table initialized", zap.Duration("startup", time.Since(start)))
	return lc.Run(cmd.Context())
}
