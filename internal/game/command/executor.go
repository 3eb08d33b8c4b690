package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetable/internal/game/dice"
)

// maxTermsShown bounds how many dice groups a roll reply itemizes.
const maxTermsShown = 10

// Session is the per-player state the executor reads and updates.
type Session struct {
	// ID identifies the session in logs.
	ID string
	// Name is how the player appears in replies.
	Name string
	// DefaultFaces overrides the table default die when > 0.
	DefaultFaces int
}

// Reply is the outcome of executing one line.
type Reply struct {
	// Text is the chat text to show the table.
	Text string
	// Check is set when the command resolved a percentile check.
	Check *dice.CheckResult
	// Err is set when the command was rejected; Text then explains why.
	Err error
	// Public marks results the whole table should see.
	Public bool
	// Quit asks the frontend to end the session.
	Quit bool
}

// Executor maps chat lines to dice engine calls and formats the results.
type Executor struct {
	registry     *Registry
	roller       *dice.Roller
	defaultFaces int
	logger       *zap.Logger
}

// NewExecutor creates an Executor.
//
// Precondition: registry, roller and logger must be non-nil; defaultFaces >= 1.
func NewExecutor(registry *Registry, roller *dice.Roller, defaultFaces int, logger *zap.Logger) *Executor {
	if defaultFaces < 1 {
		panic("command: NewExecutor called with defaultFaces < 1")
	}
	return &Executor{
		registry:     registry,
		roller:       roller,
		defaultFaces: defaultFaces,
		logger:       logger,
	}
}

// Execute runs a single chat line for sess.
//
// Precondition: sess must be non-nil.
// Postcondition: Returns a Reply; rejected input is reported in Reply.Text and
// Reply.Err, never by panicking.
func (e *Executor) Execute(sess *Session, line string) Reply {
	parsed := Parse(line)
	if parsed.Command == "" && parsed.RawArgs == "" {
		return Reply{}
	}

	var cmd *Command
	switch {
	case parsed.Command == "":
		// A bare expression rolls.
		cmd, _ = e.registry.Resolve("r")
	default:
		var ok bool
		cmd, ok = e.registry.Resolve(parsed.Command)
		if !ok && strings.HasPrefix(parsed.Command, "r") {
			// ".rd6" and ".rd" are rolls whose expression starts with a letter.
			cmd, ok = e.registry.Resolve("r")
			parsed.RawArgs = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "./")[1:])
			parsed.Args = strings.Fields(parsed.RawArgs)
		}
		if !ok && parsed.Command == "d" {
			// "d20", "d%" and "d" are bare expressions led by the die operator.
			cmd, ok = e.registry.Resolve("r")
			parsed.RawArgs = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "./"))
			parsed.Args = strings.Fields(parsed.RawArgs)
		}
		if !ok {
			return e.reject(sess, parsed, fmt.Errorf("unknown command %q", parsed.Command),
				fmt.Sprintf("Unknown command %q. Type .help for a list of commands.", parsed.Command))
		}
	}

	e.logger.Debug("executing command",
		zap.String("session", sess.ID),
		zap.String("command", cmd.Name),
		zap.String("args", parsed.RawArgs),
	)

	switch cmd.Handler {
	case HandlerRoll:
		return e.roll(sess, parsed)
	case HandlerCheck:
		return e.check(sess, parsed, 0)
	case HandlerBonus:
		return e.check(sess, parsed, 1)
	case HandlerPenalty:
		return e.check(sess, parsed, -1)
	case HandlerSet:
		return e.set(sess, parsed)
	case HandlerHelp:
		return Reply{Text: e.help()}
	case HandlerQuit:
		return Reply{Text: "Goodbye.", Quit: true}
	default:
		return e.reject(sess, parsed, fmt.Errorf("no handler for %q", cmd.Handler), "That command is not available here.")
	}
}

// Faces returns the die size used for implicit dice in sess.
func (e *Executor) Faces(sess *Session) int {
	if sess.DefaultFaces > 0 {
		return sess.DefaultFaces
	}
	return e.defaultFaces
}

func (e *Executor) roll(sess *Session, p ParseResult) Reply {
	expr, reason := splitExpression(p.RawArgs)
	if expr == "" {
		expr = "d"
	}

	res, err := e.roller.Roll(expr, e.Faces(sess))
	if err != nil {
		return e.reject(sess, p, err, fmt.Sprintf("%s can't roll %q: %s", sess.Name, expr, describe(err)))
	}

	var b strings.Builder
	b.WriteString(sess.Name)
	b.WriteString(" rolls")
	if reason != "" {
		b.WriteString(" for ")
		b.WriteString(reason)
	}
	b.WriteString(": ")
	if len(res.Terms) > maxTermsShown {
		fmt.Fprintf(&b, "%s = %d", res.Expression, res.Value)
	} else {
		b.WriteString(res.String())
	}
	return Reply{Text: b.String(), Public: true}
}

// splitExpression separates a roll's expression from its reason. Words stay
// in the expression while an operator joins them, so "1d6 + 2 to hit" rolls
// "1d6+2" for "to hit".
func splitExpression(raw string) (expr, reason string) {
	rest := strings.TrimSpace(raw)
	var b strings.Builder
	prev := ""
	for rest != "" {
		word, after := rest, ""
		if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
			word, after = rest[:i], rest[i:]
		}
		if prev != "" && !continuesExpression(prev, word) {
			break
		}
		b.WriteString(word)
		prev = word
		rest = strings.TrimLeftFunc(after, unicode.IsSpace)
	}
	return strings.ToLower(b.String()), rest
}

// continuesExpression reports whether next belongs to the same expression as
// the word before it.
func continuesExpression(prev, next string) bool {
	last, first := prev[len(prev)-1], next[0]
	switch {
	case strings.IndexByte("+-*/(", last) >= 0:
		return true
	case strings.IndexByte("+-*/)", first) >= 0:
		return true
	case (last == 'd' || last == 'D') && (isDigit(first) || first == '(' || first == '%'):
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// check resolves .rc, .rb and .rp. sign is 0 for a plain check, 1 for bonus
// dice and -1 for penalty dice.
func (e *Executor) check(sess *Session, p ParseResult, sign int) Reply {
	count, target, skill, err := parseCheckArgs(p.Args, sign != 0)
	if err != nil {
		return e.reject(sess, p, err, fmt.Sprintf("%s: %s", sess.Name, err))
	}

	res, err := e.roller.Check(target, sign*count)
	if err != nil {
		return e.reject(sess, p, err, fmt.Sprintf("%s can't roll that check: %s", sess.Name, describe(err)))
	}

	var b strings.Builder
	b.WriteString(sess.Name)
	b.WriteString(" checks")
	if skill != "" {
		b.WriteString(" ")
		b.WriteString(skill)
	}
	b.WriteString(": ")
	b.WriteString(res.String())
	return Reply{Text: b.String(), Check: &res, Public: true}
}

// parseCheckArgs accepts "<target> [skill]", "<skill> <target>" and, when
// withCount is set, "<count> <target> [skill]".
func parseCheckArgs(args []string, withCount bool) (count, target int, skill string, err error) {
	count = 1
	if withCount && len(args) >= 2 {
		n, errN := strconv.Atoi(args[0])
		t, errT := strconv.Atoi(args[1])
		if errN == nil && errT == nil {
			if n < 1 {
				return 0, 0, "", fmt.Errorf("dice count must be at least 1, got %d", n)
			}
			return n, t, strings.Join(args[2:], " "), nil
		}
	}

	switch {
	case len(args) == 0:
		return 0, 0, "", errors.New("a target value is required")
	case isInt(args[0]):
		target, _ = strconv.Atoi(args[0])
		skill = strings.Join(args[1:], " ")
	case isInt(args[len(args)-1]):
		target, _ = strconv.Atoi(args[len(args)-1])
		skill = strings.Join(args[:len(args)-1], " ")
	default:
		return 0, 0, "", fmt.Errorf("target value must be a number, got %q", strings.Join(args, " "))
	}
	return count, target, skill, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (e *Executor) set(sess *Session, p ParseResult) Reply {
	if len(p.Args) == 0 {
		sess.DefaultFaces = 0
		return Reply{Text: fmt.Sprintf("%s's default die is d%d.", sess.Name, e.defaultFaces)}
	}
	faces, err := strconv.Atoi(p.Args[0])
	if err != nil || faces < 1 {
		return e.reject(sess, p, fmt.Errorf("invalid face count %q", p.Args[0]),
			fmt.Sprintf("Default die must be a whole number of faces of at least 1, got %q.", p.Args[0]))
	}
	sess.DefaultFaces = faces
	return Reply{Text: fmt.Sprintf("%s's default die is d%d.", sess.Name, faces)}
}

func (e *Executor) help() string {
	var b strings.Builder
	category := ""
	for _, cmd := range e.registry.Commands() {
		if cmd.Category != category {
			category = cmd.Category
			fmt.Fprintf(&b, "%s%s commands:", sep(b.Len()), strings.ToUpper(category[:1])+category[1:])
		}
		usage := "." + cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		fmt.Fprintf(&b, "\n  %-28s %s", usage, cmd.Help)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, " (also .%s)", strings.Join(cmd.Aliases, ", ."))
		}
	}
	return b.String()
}

// sep returns the separator placed before a help section.
func sep(written int) string {
	if written == 0 {
		return ""
	}
	return "\n"
}

func (e *Executor) reject(sess *Session, p ParseResult, err error, text string) Reply {
	e.logger.Debug("command rejected",
		zap.String("session", sess.ID),
		zap.String("command", p.Command),
		zap.String("args", p.RawArgs),
		zap.Error(err),
	)
	return Reply{Text: text, Err: err}
}

// describe renders an engine error for players.
func describe(err error) string {
	var evalErr *dice.EvalError
	if errors.As(err, &evalErr) {
		msg := evalErr.Kind.Error()
		if evalErr.Detail != "" {
			msg += ": " + evalErr.Detail
		}
		if evalErr.Top != 0 && evalErr.Incoming != 0 && evalErr.Top != '#' {
			msg += fmt.Sprintf(" near %q", string(evalErr.Top))
		}
		return msg
	}
	switch {
	case errors.Is(err, dice.ErrInvalidTarget), errors.Is(err, dice.ErrTooManyBonusDice):
		return strings.TrimPrefix(err.Error(), "dice: ")
	default:
		return err.Error()
	}
}
