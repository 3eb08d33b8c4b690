package dice

import (
	"fmt"
	"math"

	"github.com/edwingeng/deque"
)

// Evaluator evaluates normalized dice expressions with a table-driven
// operator-precedence parser.
//
// An Evaluator holds no per-call state and may be shared by concurrent
// callers provided Source is safe for concurrent use.
type Evaluator struct {
	Source Source
	// RollBudget caps the dice rolled by one evaluation. Zero or values above
	// MaxRollBudget mean MaxRollBudget.
	RollBudget int
}

// Evaluate evaluates a normalized expression (see Preprocess) using src and
// the default roll budget.
//
// Precondition: src must be non-nil.
// Postcondition: Returns the expression value, or an *EvalError wrapping one of
// ErrSyntax, ErrDivisionByZero, ErrInvalidDiceFaces, ErrRollBudgetExceeded or
// ErrOverflow.
func Evaluate(expr string, src Source) (int, error) {
	res, err := Evaluator{Source: src}.Evaluate(expr)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// Evaluate evaluates expr and returns the value with its dice audit trail.
//
// Precondition: e.Source must be non-nil.
// Postcondition: on error the returned Result is the zero value and no state
// survives the call.
func (e Evaluator) Evaluate(expr string) (Result, error) {
	budget := e.RollBudget
	if budget <= 0 || budget > MaxRollBudget {
		budget = MaxRollBudget
	}
	run := &evaluation{
		expr:      expr,
		src:       e.Source,
		budget:    budget,
		operands:  operandStack{d: deque.NewDeque()},
		operators: operatorStack{d: deque.NewDeque()},
	}
	value, err := run.execute()
	if err != nil {
		return Result{}, err
	}
	return Result{
		Expression: expr,
		Value:      value,
		Rolled:     run.rolled,
		Terms:      run.terms,
	}, nil
}

// evaluation is the state of a single Evaluate call.
type evaluation struct {
	expr   string
	src    Source
	budget int
	rolled int
	terms  []Term

	operands  operandStack
	operators operatorStack
}

func (ev *evaluation) execute() (int, error) {
	input := ev.expr + "#"
	ev.operators.push(OpEnd)

	pos := 0
	expectOperand := true
	for {
		for pos < len(input) && isSpace(input[pos]) {
			pos++
		}
		c := byte('#')
		if pos < len(input) {
			c = input[pos]
		}

		if isDigit(c) {
			n, next, err := ev.scanNumber(input, pos)
			if err != nil {
				return 0, err
			}
			ev.operands.push(n)
			pos = next
			expectOperand = false
			continue
		}

		op, ok := operatorOf(c)
		if !ok {
			// Anything else ends the expression.
			if expectOperand {
				return 0, ev.fail(ErrSyntax, pos, fmt.Sprintf("unexpected character %q", string(c)))
			}
			op = OpEnd
		}

		top := ev.operators.peek()
		switch Precedence(top, op) {
		case RelShift:
			ev.operators.push(op)
			pos++
			expectOperand = true
		case RelMatch:
			ev.operators.pop()
			if op == OpEnd {
				if ev.operands.len() != 1 {
					return 0, ev.fail(ErrSyntax, pos, "incomplete expression")
				}
				return ev.operands.pop(), nil
			}
			pos++
			expectOperand = false
		case RelReduce:
			if ev.operands.len() < 2 {
				err := ev.fail(ErrSyntax, pos, "missing operand")
				err.Top, err.Incoming = top.Char(), op.Char()
				return 0, err
			}
			b := ev.operands.pop()
			a := ev.operands.pop()
			apply := ev.operators.pop()
			v, err := ev.calculate(a, b, apply, pos)
			if err != nil {
				return 0, err
			}
			ev.operands.push(v)
		default:
			err := ev.fail(ErrSyntax, pos, "unsupported operator combination")
			err.Top, err.Incoming = top.Char(), op.Char()
			return 0, err
		}
	}
}

func (ev *evaluation) scanNumber(input string, pos int) (int, int, error) {
	n := 0
	start := pos
	for pos < len(input) && isDigit(input[pos]) {
		d := int(input[pos] - '0')
		if n > (math.MaxInt-d)/10 {
			return 0, pos, ev.fail(ErrOverflow, start, fmt.Sprintf("number %s... is too large", input[start:pos]))
		}
		n = n*10 + d
		pos++
	}
	return n, pos, nil
}

// calculate applies op to a and b.
func (ev *evaluation) calculate(a, b int, op Operator, pos int) (int, error) {
	switch op {
	case OpAdd:
		if v, ok := addInt(a, b); ok {
			return v, nil
		}
	case OpSub:
		if b != math.MinInt {
			if v, ok := addInt(a, -b); ok {
				return v, nil
			}
		}
	case OpMul:
		if v, ok := mulInt(a, b); ok {
			return v, nil
		}
	case OpDiv:
		if b == 0 {
			return 0, ev.fail(ErrDivisionByZero, pos, fmt.Sprintf("%d / 0", a))
		}
		if a != math.MinInt || b != -1 {
			return floorDiv(a, b), nil
		}
	case OpDice:
		return ev.roll(a, b, pos)
	default:
		return 0, ev.fail(ErrSyntax, pos, fmt.Sprintf("cannot apply %q", string(op.Char())))
	}
	return 0, ev.fail(ErrOverflow, pos, fmt.Sprintf("%d %c %d", a, op.Char(), b))
}

// roll rolls count dice of the given faces, charging the roll budget.
func (ev *evaluation) roll(count, faces, pos int) (int, error) {
	if faces <= 0 {
		return 0, ev.fail(ErrInvalidDiceFaces, pos, fmt.Sprintf("%dd%d", count, faces))
	}
	if count <= 0 {
		ev.terms = append(ev.terms, Term{Count: count, Faces: faces})
		return 0, nil
	}
	if count > ev.budget-ev.rolled {
		return 0, ev.fail(ErrRollBudgetExceeded, pos,
			fmt.Sprintf("%dd%d would exceed the limit of %d dice", count, faces, ev.budget))
	}

	checked := faces > math.MaxInt/count
	sum := 0
	for i := 0; i < count; i++ {
		v := ev.src.IntRange(1, faces)
		if !checked {
			sum += v
			continue
		}
		var ok bool
		if sum, ok = addInt(sum, v); !ok {
			return 0, ev.fail(ErrOverflow, pos, fmt.Sprintf("%dd%d", count, faces))
		}
	}
	ev.rolled += count
	ev.terms = append(ev.terms, Term{Count: count, Faces: faces, Sum: sum})
	return sum, nil
}

func (ev *evaluation) fail(kind error, pos int, detail string) *EvalError {
	return &EvalError{Kind: kind, Detail: detail, Expr: ev.expr, Pos: min(pos, len(ev.expr))}
}

func addInt(a, b int) (int, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func mulInt(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	return p, true
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// operandStack and operatorStack are typed LIFO views over a deque.
type operandStack struct{ d deque.Deque }

func (s operandStack) push(v int) { s.d.PushBack(v) }
func (s operandStack) pop() int   { return s.d.PopBack().(int) }
func (s operandStack) len() int   { return s.d.Len() }

type operatorStack struct{ d deque.Deque }

func (s operatorStack) push(op Operator) { s.d.PushBack(op) }
func (s operatorStack) pop() Operator    { return s.d.PopBack().(Operator) }
func (s operatorStack) peek() Operator   { return s.d.Back().(Operator) }
