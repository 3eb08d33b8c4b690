package dice

import (
	"fmt"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged expression rolls and
// percentile checks. Every roll is logged at debug level.
type Roller struct {
	src      Source
	logger   *zap.Logger
	budget   int
	maxBonus int
}

// RollerOption configures a Roller.
type RollerOption func(*Roller)

// WithRollBudget caps the dice rolled by one expression.
//
// Precondition: 1 <= n <= MaxRollBudget.
func WithRollBudget(n int) RollerOption {
	return func(r *Roller) { r.budget = n }
}

// WithMaxBonusDice caps the bonus/penalty dice accepted by Check.
//
// Precondition: 1 <= n <= MaxBonusDice.
func WithMaxBonusDice(n int) RollerOption {
	return func(r *Roller) { r.maxBonus = n }
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger, opts ...RollerOption) *Roller {
	r := &Roller{src: src, logger: logger, budget: MaxRollBudget, maxBonus: MaxBonusDice}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roll normalizes expr with defaultFaces, evaluates it and logs the result.
//
// Precondition: defaultFaces >= 1.
// Postcondition: Returns a Result or an *EvalError.
func (r *Roller) Roll(expr string, defaultFaces int) (Result, error) {
	normalized := Preprocess(expr, defaultFaces)
	res, err := Evaluator{Source: r.src, RollBudget: r.budget}.Evaluate(normalized)
	if err != nil {
		r.logger.Debug("dice roll rejected",
			zap.String("input", expr),
			zap.String("expression", normalized),
			zap.Error(err),
		)
		return Result{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Int("value", res.Value),
		zap.Int("rolled", res.Rolled),
		zap.Int("terms", len(res.Terms)),
	)
	return res, nil
}

// Check rolls a percentile check against target with bp bonus (bp > 0) or
// penalty (bp < 0) dice and logs the outcome.
//
// Postcondition: Returns a CheckResult or ErrInvalidTarget / ErrTooManyBonusDice.
func (r *Roller) Check(target, bp int) (CheckResult, error) {
	if abs(bp) > r.maxBonus {
		return CheckResult{}, fmt.Errorf("dice: %d dice (max %d): %w", abs(bp), r.maxBonus, ErrTooManyBonusDice)
	}
	res, err := Check(r.src, target, bp)
	if err != nil {
		return CheckResult{}, err
	}
	r.logger.Debug("percentile check",
		zap.Int("target", res.Target),
		zap.Int("bonus", res.Bonus),
		zap.Int("roll", res.Roll),
		zap.Ints("extra_tens", res.ExtraTens),
		zap.Stringer("tier", res.Tier),
	)
	return res, nil
}

// MaxBonusDice returns the configured bonus/penalty dice limit.
func (r *Roller) MaxBonusDice() int { return r.maxBonus }
