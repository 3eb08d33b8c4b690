// Package command provides the command registry, parser, executor, and
// built-in dice table command definitions.
package command

// Categories for organizing commands.
const (
	CategoryDice   = "dice"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to executor handlers.
const (
	HandlerRoll    = "roll"
	HandlerCheck   = "check"
	HandlerBonus   = "bonus"
	HandlerPenalty = "penalty"
	HandlerSet     = "set"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown by help.
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (dice, system).
	Category string
	// Handler maps to the executor handler.
	Handler string
}

// BuiltinCommands returns all built-in dice table commands.
func BuiltinCommands() []Command {
	return []Command{
		// Dice commands
		{Name: "r", Aliases: []string{"roll"}, Usage: "[expression] [reason]", Help: "Roll a dice expression such as 3d6+2 or d%", Category: CategoryDice, Handler: HandlerRoll},
		{Name: "rc", Aliases: []string{"ra", "check"}, Usage: "<target> [skill]", Help: "Roll a percentile check against a target value", Category: CategoryDice, Handler: HandlerCheck},
		{Name: "rb", Aliases: []string{"bonus"}, Usage: "[dice] <target> [skill]", Help: "Percentile check with bonus dice (keep the lowest tens)", Category: CategoryDice, Handler: HandlerBonus},
		{Name: "rp", Aliases: []string{"penalty"}, Usage: "[dice] <target> [skill]", Help: "Percentile check with penalty dice (keep the highest tens)", Category: CategoryDice, Handler: HandlerPenalty},
		{Name: "set", Aliases: nil, Usage: "[faces]", Help: "Set your default die (no argument restores the table default)", Category: CategoryDice, Handler: HandlerSet},

		// System commands
		{Name: "help", Aliases: []string{"h"}, Usage: "", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Usage: "", Help: "Leave the table", Category: CategorySystem, Handler: HandlerQuit},
	}
}
