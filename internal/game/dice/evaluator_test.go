package dice_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicetable/internal/game/dice"
)

func TestEvaluate_Arithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want int
	}{
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"8-3-2", 3},
		{"20/4/2", 2},
		{"7/2", 3},
		{"(1-8)/2", -4},
		{"1-5", -4},
		{"2 * ( 3 + 4 )", 14},
		{"((7))", 7},
		{"42", 42},
		{"10-2*3+1", 5},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := dice.Evaluate(normalize(tc.expr), constSource{v: 1})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_Dice(t *testing.T) {
	src := constSource{v: 4}
	tests := []struct {
		expr string
		want int
	}{
		{"d6", 4},
		{"d", 4},
		{"3d6", 12},
		{"2d6*2", 16},
		{"2*2d6", 16},
		{"1d6d2", 16},
		{"2d(3+3)", 8},
		{"0d6", 0},
		{"d6+d6", 8},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := dice.Evaluate(normalize(tc.expr), src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_NonPositiveCountRollsNothing(t *testing.T) {
	src := &scriptedSource{}
	got, err := dice.Evaluate("(1-3)d6", src)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, src.next)
}

func TestEvaluate_ImplicitCountAfterParenIsRejected(t *testing.T) {
	// "(1-3)d6" normalizes to "(1-3)1d6", two adjacent operands.
	_, err := dice.Evaluate(normalize("(1-3)d6"), constSource{v: 1})
	assert.ErrorIs(t, err, dice.ErrSyntax)
}

func TestEvaluate_DiceBindsTighterThanMultiply(t *testing.T) {
	// With the top of every range returned, 2*3d6 is 2*(3d6) = 36, not (2*3)d6.
	got, err := dice.Evaluate("2*3d6", maxSource{})
	require.NoError(t, err)
	assert.Equal(t, 36, got)
}

func TestEvaluate_DiceIsLeftAssociative(t *testing.T) {
	// (2d3)d10 draws 1,2 then three d10s; 2d(3d10) would roll 3d10 first and
	// total 10.
	src := &scriptedSource{vals: []int{1, 2, 5, 5, 5}}
	got, err := dice.Evaluate("2d3d10", src)
	require.NoError(t, err)
	assert.Equal(t, 15, got)
	assert.Equal(t, 5, src.next)
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		expr   string
		kind   error
		detail string
	}{
		{"5/0", dice.ErrDivisionByZero, ""},
		{"1d0", dice.ErrInvalidDiceFaces, ""},
		{"1d(1-2)", dice.ErrInvalidDiceFaces, ""},
		{"", dice.ErrSyntax, "incomplete expression"},
		{"3 4", dice.ErrSyntax, "incomplete expression"},
		{"3+", dice.ErrSyntax, "missing operand"},
		{"-3", dice.ErrSyntax, "missing operand"},
		{"(3", dice.ErrSyntax, "unsupported operator combination"},
		{"3)", dice.ErrSyntax, "unsupported operator combination"},
		{"x", dice.ErrSyntax, "unexpected character"},
		{"2+x", dice.ErrSyntax, "unexpected character"},
		{"99999999999999999999", dice.ErrOverflow, ""},
		{"9223372036854775807+1", dice.ErrOverflow, ""},
		{"9223372036854775807*2", dice.ErrOverflow, ""},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := dice.Evaluate(tc.expr, constSource{v: 1})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var evalErr *dice.EvalError
			require.True(t, errors.As(err, &evalErr))
			assert.Equal(t, tc.expr, evalErr.Expr)
			if tc.detail != "" {
				assert.Contains(t, evalErr.Detail, tc.detail)
			}
		})
	}
}

func TestEvaluate_UnsupportedCombinationCarriesOperators(t *testing.T) {
	_, err := dice.Evaluate("(1+2", constSource{v: 1})
	var evalErr *dice.EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, byte('('), evalErr.Top)
	assert.Equal(t, byte('#'), evalErr.Incoming)
}

func TestEvaluate_TrailingTextEndsExpression(t *testing.T) {
	got, err := dice.Evaluate("3+4 for damage", constSource{v: 1})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestEvaluate_RollBudget(t *testing.T) {
	_, err := dice.Evaluate(normalize("100000001d1"), constSource{v: 1})
	assert.ErrorIs(t, err, dice.ErrRollBudgetExceeded)

	_, err = dice.Evaluate(normalize("99999999999d1"), constSource{v: 1})
	assert.ErrorIs(t, err, dice.ErrRollBudgetExceeded)
}

func TestEvaluate_RollBudgetBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("rolls 100,000,000 dice")
	}
	got, err := dice.Evaluate(normalize("100000000d1"), constSource{v: 1})
	require.NoError(t, err)
	assert.Equal(t, 100000000, got)
}

func TestEvaluator_BudgetIsCumulative(t *testing.T) {
	ev := dice.Evaluator{Source: constSource{v: 1}, RollBudget: 10}

	res, err := ev.Evaluate("5d6+5d6")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Rolled)

	_, err = ev.Evaluate("5d6+6d6")
	assert.ErrorIs(t, err, dice.ErrRollBudgetExceeded)

	// A failed call leaves nothing behind for the next one.
	res, err = ev.Evaluate("10d6")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Value)
}

func TestEvaluator_NonPositiveCountDoesNotChargeBudget(t *testing.T) {
	ev := dice.Evaluator{Source: constSource{v: 1}, RollBudget: 1}
	res, err := ev.Evaluate("(0-5)d6+0d6+1d6")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Value)
	assert.Equal(t, 1, res.Rolled)
}

func TestEvaluator_ResultTerms(t *testing.T) {
	src := &scriptedSource{vals: []int{3, 5, 2}}
	res, err := dice.Evaluator{Source: src}.Evaluate("2d6+1d4+3")
	require.NoError(t, err)
	assert.Equal(t, 13, res.Value)
	assert.Equal(t, 3, res.Rolled)
	assert.Equal(t, []dice.Term{{Count: 2, Faces: 6, Sum: 8}, {Count: 1, Faces: 4, Sum: 2}}, res.Terms)
	assert.Equal(t, "2d6+1d4+3 → [2d6=8 1d4=2] = 13", res.String())
}

func TestEvaluator_ErrorReturnsZeroResult(t *testing.T) {
	res, err := dice.Evaluator{Source: constSource{v: 1}}.Evaluate("1d6/0")
	require.Error(t, err)
	assert.Equal(t, dice.Result{}, res)
}

// TestEvaluate_MatchesIntegerArithmetic checks precedence and associativity
// against Go's own evaluation of the same expression.
func TestEvaluate_MatchesIntegerArithmetic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, 1000).Draw(rt, "a")
		b := rapid.IntRange(0, 1000).Draw(rt, "b")
		c := rapid.IntRange(1, 1000).Draw(rt, "c")

		cases := map[string]int{
			fmt.Sprintf("%d+%d*%d", a, b, c):   a + b*c,
			fmt.Sprintf("%d-%d-%d", a, b, c):   a - b - c,
			fmt.Sprintf("(%d+%d)*%d", a, b, c): (a + b) * c,
			fmt.Sprintf("%d*%d/%d", a, b, c):   a * b / c,
			fmt.Sprintf("%d-%d/%d", a, b, c):   a - b/c,
		}
		for expr, want := range cases {
			got, err := dice.Evaluate(expr, constSource{v: 1})
			require.NoError(rt, err, expr)
			assert.Equal(rt, want, got, expr)
		}
	})
}

// TestEvaluate_DiceSumBounds verifies NdM always lands in [N, N*M].
func TestEvaluate_DiceSumBounds(t *testing.T) {
	src := dice.NewSeededSource(1234)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(rt, "count")
		m := rapid.IntRange(1, 100).Draw(rt, "faces")
		got, err := dice.Evaluate(fmt.Sprintf("%dd%d", n, m), src)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, got, n)
		assert.LessOrEqual(rt, got, n*m)
	})
}

func TestEvaluate_SeededIsReproducible(t *testing.T) {
	a, err := dice.Evaluate("10d20+3d6*2", dice.NewSeededSource(5))
	require.NoError(t, err)
	b, err := dice.Evaluate("10d20+3d6*2", dice.NewSeededSource(5))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEvaluate_ConcurrentCallsAreIndependent(t *testing.T) {
	src := dice.NewSeededSource(77)
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			expr := "10d6"
			if i%2 == 0 {
				expr = "5/0"
			}
			v, err := dice.Evaluate(expr, src)
			if i%2 == 0 {
				if !errors.Is(err, dice.ErrDivisionByZero) {
					errs <- fmt.Errorf("call %d: got %v", i, err)
				}
				return
			}
			if err != nil || v < 10 || v > 60 {
				errs <- fmt.Errorf("call %d: got %d, %v", i, v, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestPrecedenceTable(t *testing.T) {
	assert.Equal(t, dice.RelShift, dice.Precedence(dice.OpAdd, dice.OpMul))
	assert.Equal(t, dice.RelReduce, dice.Precedence(dice.OpMul, dice.OpAdd))
	assert.Equal(t, dice.RelShift, dice.Precedence(dice.OpMul, dice.OpDice))
	assert.Equal(t, dice.RelReduce, dice.Precedence(dice.OpDice, dice.OpDice))
	assert.Equal(t, dice.RelReduce, dice.Precedence(dice.OpSub, dice.OpSub))
	assert.Equal(t, dice.RelMatch, dice.Precedence(dice.OpLParen, dice.OpRParen))
	assert.Equal(t, dice.RelMatch, dice.Precedence(dice.OpEnd, dice.OpEnd))
	assert.Equal(t, dice.RelError, dice.Precedence(dice.OpLParen, dice.OpEnd))
	assert.Equal(t, dice.RelError, dice.Precedence(dice.OpEnd, dice.OpRParen))
	assert.Equal(t, byte('d'), dice.OpDice.Char())
	assert.Equal(t, ">", dice.RelReduce.String())
}
