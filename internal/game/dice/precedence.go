package dice

// Operator is an operator token kind, including the end-of-input sentinel.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpDice
	OpLParen
	OpRParen
	OpEnd
	opCount
)

// operatorChars maps each Operator to its source character.
var operatorChars = [opCount]byte{'+', '-', '*', '/', 'd', '(', ')', '#'}

// Char returns the source character of the operator.
func (o Operator) Char() byte { return operatorChars[o] }

// operatorOf returns the Operator for c, or false if c is not an operator
// character.
func operatorOf(c byte) (Operator, bool) {
	switch c {
	case '+':
		return OpAdd, true
	case '-':
		return OpSub, true
	case '*':
		return OpMul, true
	case '/':
		return OpDiv, true
	case 'd':
		return OpDice, true
	case '(':
		return OpLParen, true
	case ')':
		return OpRParen, true
	case '#':
		return OpEnd, true
	default:
		return 0, false
	}
}

// Relation is the action taken for a (stack top, incoming) operator pair.
type Relation int

const (
	// RelError rejects the pair.
	RelError Relation = iota
	// RelShift pushes the incoming operator.
	RelShift
	// RelMatch drops a matching "(" ")" or "#" "#" pair.
	RelMatch
	// RelReduce pops and applies the stack top operator.
	RelReduce
)

func (r Relation) String() string {
	switch r {
	case RelShift:
		return "<"
	case RelMatch:
		return "="
	case RelReduce:
		return ">"
	default:
		return "!"
	}
}

const (
	lt = RelShift
	eq = RelMatch
	gt = RelReduce
	no = RelError
)

// precedence is indexed [stack top][incoming]. Rows and columns follow the
// Operator order: + - * / d ( ) #.
var precedence = [opCount][opCount]Relation{
	OpAdd:    {gt, gt, lt, lt, lt, lt, gt, gt},
	OpSub:    {gt, gt, lt, lt, lt, lt, gt, gt},
	OpMul:    {gt, gt, gt, gt, lt, lt, gt, gt},
	OpDiv:    {gt, gt, gt, gt, lt, lt, gt, gt},
	OpDice:   {gt, gt, gt, gt, gt, lt, gt, gt},
	OpLParen: {lt, lt, lt, lt, lt, lt, eq, no},
	OpRParen: {gt, gt, gt, gt, gt, no, gt, gt},
	OpEnd:    {lt, lt, lt, lt, lt, lt, no, eq},
}

// Precedence returns the relation between the operator on top of the stack
// and the incoming operator.
func Precedence(top, incoming Operator) Relation {
	return precedence[top][incoming]
}
