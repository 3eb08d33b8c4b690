// Package main provides the dicetable binary: a Telnet dice table server and
// a one-shot roller for the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetable/internal/config"
	"github.com/cory-johannsen/dicetable/internal/game/command"
	"github.com/cory-johannsen/dicetable/internal/game/dice"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dicetable",
		Short:        "Dice expression roller and Telnet dice table",
		Version:      version + " (commit=" + commit + ")",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to configuration file (env DICE_* overrides apply)")
	root.PersistentFlags().Int64("seed", 0, "deterministic dice seed; 0 draws from crypto/rand")
	root.PersistentFlags().Int("faces", 0, "default die size for implicit dice")

	root.AddCommand(newServeCmd(), newRollCmd())
	return root
}

// loadConfig reads the config file named by --config and layers the
// persistent flags over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := config.NewViper()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	if err := bindFlag(v, cmd, "dice.seed", "seed"); err != nil {
		return config.Config{}, err
	}
	if err := bindFlag(v, cmd, "dice.default_faces", "faces"); err != nil {
		return config.Config{}, err
	}
	return config.LoadFromViper(v)
}

// bindFlag overrides key with flag only when the flag was set explicitly.
func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) error {
	f := cmd.Flags().Lookup(flag)
	if f == nil || !f.Changed {
		return nil
	}
	if err := v.BindPFlag(key, f); err != nil {
		return fmt.Errorf("binding --%s: %w", flag, err)
	}
	return nil
}

// newSource picks a deterministic source when a seed is configured.
func newSource(cfg config.DiceConfig, logger *zap.Logger) dice.Source {
	if cfg.Seed != 0 {
		logger.Info("using seeded dice", zap.Int64("seed", cfg.Seed))
		return dice.NewSeededSource(cfg.Seed)
	}
	return dice.NewCryptoSource()
}

// newExecutor wires the engine and command layer from cfg.
func newExecutor(cfg config.Config, logger *zap.Logger) *command.Executor {
	roller := dice.NewLoggedRoller(
		newSource(cfg.Dice, logger),
		logger.Named("dice"),
		dice.WithRollBudget(cfg.Dice.RollBudget),
		dice.WithMaxBonusDice(cfg.Dice.MaxBonusDice),
	)
	return command.NewExecutor(command.DefaultRegistry(), roller, cfg.Dice.DefaultFaces, logger.Named("command"))
}
