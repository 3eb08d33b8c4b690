package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetable/internal/game/command"
	"github.com/cory-johannsen/dicetable/internal/game/dice"
)

var errRejected = errors.New("command rejected")

func newRollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll <command...>",
		Short: "Run one table command and print the result",
		Example: `  dicetable roll 3d6+2
  dicetable roll .rc 60 stealth
  dicetable roll --seed 7 .rb2 45 spot hidden
  dicetable roll d20 + 5 initiative
  dicetable roll "(1+2)*d6"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRoll,
	}
	cmd.Flags().String("name", "Player", "name shown in the result")
	cmd.Flags().Bool("no-color", false, "disable colored output")
	return cmd
}

func runRoll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	exec := newExecutor(cfg, zap.NewNop())
	reply := exec.Execute(&command.Session{ID: "cli", Name: name}, strings.Join(args, " "))
	if reply.Err != nil {
		color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), reply.Text)
		cmd.SilenceErrors = true
		return errRejected
	}
	printReply(cmd.OutOrStdout(), reply)
	return nil
}

func printReply(w io.Writer, reply command.Reply) {
	if reply.Check == nil {
		fmt.Fprintln(w, reply.Text)
		return
	}
	tierColor(reply.Check.Tier).Fprintln(w, reply.Text)
}

// tierColor mirrors the Telnet table's tier palette.
func tierColor(tier dice.Tier) *color.Color {
	switch tier {
	case dice.TierCriticalSuccess:
		return color.New(color.FgHiGreen, color.Bold)
	case dice.TierExtremeSuccess:
		return color.New(color.FgHiGreen)
	case dice.TierHardSuccess, dice.TierSuccess:
		return color.New(color.FgGreen)
	case dice.TierFailure:
		return color.New(color.FgYellow)
	case dice.TierCriticalFailure:
		return color.New(color.FgHiRed, color.Bold)
	}
	return color.New(color.Reset)
}
