// Package dice implements the dice expression engine for the dice table:
// expression normalization, operator-precedence evaluation of NdM arithmetic,
// and the percentile check mechanics (bonus/penalty dice and success tiers).
package dice

import (
	"errors"
	"fmt"
	"strings"
)

// MaxRollBudget is the hard upper bound on individual dice rolled by a single
// evaluation.
const MaxRollBudget = 100_000_000

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// IntRange returns a uniformly distributed int in [min, max].
	//
	// Precondition: min <= max.
	IntRange(min, max int) int
}

// Sentinel errors reported by Evaluate. Use errors.Is to test for them.
var (
	ErrSyntax             = errors.New("syntax error")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrInvalidDiceFaces   = errors.New("dice must have at least one face")
	ErrRollBudgetExceeded = errors.New("too many dice rolled")
	ErrOverflow           = errors.New("integer overflow")
)

// EvalError describes why an expression could not be evaluated.
//
// Invariant: Kind is one of the package sentinel errors.
type EvalError struct {
	Kind   error
	Detail string
	Expr   string
	// Pos is the byte offset in Expr where evaluation stopped.
	Pos int
	// Top and Incoming are the operator pair involved, or 0 when not applicable.
	Top      byte
	Incoming byte
}

func (e *EvalError) Error() string {
	var b strings.Builder
	b.WriteString("dice: ")
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Top != 0 && e.Incoming != 0 {
		fmt.Fprintf(&b, " (%s then %s)", opName(e.Top), opName(e.Incoming))
	}
	fmt.Fprintf(&b, " at offset %d in %q", e.Pos, e.Expr)
	return b.String()
}

// Unwrap returns the sentinel kind so errors.Is works against it.
func (e *EvalError) Unwrap() error { return e.Kind }

func opName(c byte) string {
	if c == '#' {
		return "end of input"
	}
	return fmt.Sprintf("%q", string(c))
}

// Term records one evaluated dice operation.
type Term struct {
	Count int // dice requested; zero or negative yields a zero sum
	Faces int
	Sum   int
}

func (t Term) String() string {
	return fmt.Sprintf("%dd%d=%d", t.Count, t.Faces, t.Sum)
}

// Result holds the full audit trail for a single expression evaluation.
//
// Postcondition: Rolled == sum of max(Count, 0) over Terms.
type Result struct {
	Expression string // normalized expression that was evaluated
	Value      int
	Rolled     int
	Terms      []Term
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [2d6=7] = 10"
//
// Precondition: r.Expression is non-empty.
func (r Result) String() string {
	if r.Expression == "" {
		panic("dice: Result.String() precondition violated: Expression must be non-empty")
	}
	if len(r.Terms) == 0 {
		return fmt.Sprintf("%s = %d", r.Expression, r.Value)
	}
	terms := make([]string, len(r.Terms))
	for i, t := range r.Terms {
		terms[i] = t.String()
	}
	return fmt.Sprintf("%s → [%s] = %d", r.Expression, strings.Join(terms, " "), r.Value)
}
