// Package handlers provides the Telnet session handler for the dice table.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetable/internal/frontend/telnet"
	"github.com/cory-johannsen/dicetable/internal/game/command"
	"github.com/cory-johannsen/dicetable/internal/game/dice"
)

// maxNameLength bounds player names.
const maxNameLength = 24

const welcomeBanner = "\r\n" +
	telnet.Bold + telnet.Cyan + "  ~ The Dice Table ~" + telnet.Reset + "\r\n\r\n" +
	"  Roll with " + telnet.Green + ".r 2d6+3" + telnet.Reset +
	", check a skill with " + telnet.Green + ".rc 60 stealth" + telnet.Reset + ".\r\n" +
	"  Type " + telnet.Green + ".help" + telnet.Reset + " for every command.\r\n\r\n"

// Table is a telnet.SessionHandler that seats every connection at one
// shared table. Rolls and checks are announced to every seated player;
// help, settings and errors go only to the player who asked.
type Table struct {
	exec   *command.Executor
	logger *zap.Logger

	mu    sync.RWMutex
	seats map[string]*seat
}

type seat struct {
	sess *command.Session
	conn *telnet.Conn
}

// NewTable creates an empty table.
//
// Precondition: exec and logger must be non-nil.
func NewTable(exec *command.Executor, logger *zap.Logger) *Table {
	return &Table{
		exec:   exec,
		logger: logger,
		seats:  make(map[string]*seat),
	}
}

// HandleSession implements telnet.SessionHandler: it asks for a name, seats
// the player and runs their command loop until they quit or disconnect.
//
// Postcondition: Returns nil on .quit; the player is unseated on return.
func (t *Table) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	sess := &command.Session{ID: uuid.New().String()}
	logger := t.logger.With(
		zap.String("session", sess.ID),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	if err := conn.WritePrompt(welcomeBanner); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	name, err := t.askName(ctx, conn)
	if err != nil {
		return err
	}
	sess.Name = name

	t.sit(sess, conn)
	defer t.leave(sess)
	logger.Info("player seated", zap.String("name", name))
	_ = conn.WriteLine(fmt.Sprintf("Welcome, %s. %s", name, t.whoIsHere(sess.ID)))

	for {
		if ctx.Err() != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The table is closing. Goodbye!"))
			return ctx.Err()
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.White, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if errors.Is(err, telnet.ErrLineTooLong) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That line is too long."))
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading input: %w", err)
		}

		reply := t.exec.Execute(sess, line)
		if reply.Text == "" {
			continue
		}
		text := render(reply)
		if reply.Public {
			t.announce(sess.ID, text)
		}
		if err := conn.WriteLines(strings.Split(text, "\n")...); err != nil {
			return fmt.Errorf("writing reply: %w", err)
		}
		if reply.Quit {
			logger.Info("player left",
				zap.String("name", name),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil
		}
	}
}

// askName prompts until the player gives a usable name.
func (t *Table) askName(ctx context.Context, conn *telnet.Conn) (string, error) {
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err := conn.WritePrompt("What is your name? "); err != nil {
			return "", fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil && !errors.Is(err, telnet.ErrLineTooLong) {
			return "", fmt.Errorf("reading name: %w", err)
		}
		name, problem := cleanName(line)
		if problem != "" {
			_ = conn.WriteLine(problem)
			continue
		}
		return name, nil
	}
}

// cleanName normalizes a player name, or explains why it is unusable.
func cleanName(raw string) (name, problem string) {
	name = strings.Join(strings.Fields(telnet.StripANSI(raw)), " ")
	switch {
	case name == "":
		return "", "Please enter a name."
	case len(name) > maxNameLength:
		return "", fmt.Sprintf("Names are at most %d characters.", maxNameLength)
	case strings.HasPrefix(name, ".") || strings.HasPrefix(name, "/"):
		return "", "Names can't start with a command prefix."
	}
	return name, ""
}

func (t *Table) sit(sess *command.Session, conn *telnet.Conn) {
	t.mu.Lock()
	t.seats[sess.ID] = &seat{sess: sess, conn: conn}
	t.mu.Unlock()
	t.announce(sess.ID, telnet.Colorize(telnet.Dim, sess.Name+" sits down at the table."))
}

func (t *Table) leave(sess *command.Session) {
	t.mu.Lock()
	delete(t.seats, sess.ID)
	t.mu.Unlock()
	t.announce(sess.ID, telnet.Colorize(telnet.Dim, sess.Name+" leaves the table."))
}

// announce writes text to every seated player except the one with id from.
func (t *Table) announce(from, text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, s := range t.seats {
		if id == from {
			continue
		}
		if err := s.conn.WriteLines(strings.Split(text, "\n")...); err != nil {
			t.logger.Debug("announce failed", zap.String("session", id), zap.Error(err))
		}
	}
}

func (t *Table) whoIsHere(self string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var names []string
	for id, s := range t.seats {
		if id != self {
			names = append(names, s.sess.Name)
		}
	}
	if len(names) == 0 {
		return "You have the table to yourself."
	}
	return "Also here: " + strings.Join(names, ", ") + "."
}

// Players returns the number of seated players.
func (t *Table) Players() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.seats)
}

// render colors a reply for the terminal.
func render(r command.Reply) string {
	switch {
	case r.Err != nil:
		return telnet.Colorize(telnet.Red, r.Text)
	case r.Check != nil:
		return telnet.Colorize(TierColor(r.Check.Tier), r.Text)
	case r.Quit:
		return telnet.Colorize(telnet.Cyan, r.Text)
	}
	return r.Text
}

// TierColor returns the ANSI color used for a check outcome.
func TierColor(tier dice.Tier) string {
	switch tier {
	case dice.TierCriticalSuccess:
		return telnet.Bold + telnet.BrightGreen
	case dice.TierExtremeSuccess:
		return telnet.BrightGreen
	case dice.TierHardSuccess, dice.TierSuccess:
		return telnet.Green
	case dice.TierFailure:
		return telnet.Yellow
	case dice.TierCriticalFailure:
		return telnet.Bold + telnet.BrightRed
	}
	return telnet.White
}
