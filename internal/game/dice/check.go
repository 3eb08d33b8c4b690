package dice

import (
	"errors"
	"fmt"
)

// MaxBonusDice is the largest number of bonus or penalty dice a check accepts.
const MaxBonusDice = 10

// ErrInvalidTarget indicates a check target below zero.
var ErrInvalidTarget = errors.New("check target must be non-negative")

// ErrTooManyBonusDice indicates a bonus/penalty count beyond the allowed limit.
var ErrTooManyBonusDice = errors.New("too many bonus or penalty dice")

// Tier is the outcome of a percentile check.
type Tier int

const (
	TierCriticalSuccess Tier = iota
	TierExtremeSuccess
	TierHardSuccess
	TierSuccess
	TierFailure
	TierCriticalFailure
)

func (t Tier) String() string {
	switch t {
	case TierCriticalSuccess:
		return "Critical success"
	case TierExtremeSuccess:
		return "Extreme success"
	case TierHardSuccess:
		return "Hard success"
	case TierSuccess:
		return "Success"
	case TierFailure:
		return "Failure"
	case TierCriticalFailure:
		return "Critical failure"
	default:
		return "Unknown"
	}
}

// IsSuccess reports whether the tier passes the check.
func (t Tier) IsSuccess() bool {
	return t >= TierCriticalSuccess && t <= TierSuccess
}

// Combine joins a tens digit and a ones digit into a d100 result.
// A roll of 0 and 0 reads as 100.
//
// Precondition: tens and ones are in [0, 9].
// Postcondition: result is in [1, 100].
func Combine(tens, ones int) int {
	if tens == 0 && ones == 0 {
		return 100
	}
	return tens*10 + ones
}

// RollPercentile rolls a d100 with bp bonus dice (bp > 0) or -bp penalty
// dice (bp < 0). Every die is drawn from src as a digit in [0, 9]: the ones
// digit first, then the base tens digit, then one extra tens digit per
// bonus/penalty die. A bonus keeps the lowest combined result and a penalty
// keeps the highest.
//
// Precondition: |bp| <= MaxBonusDice.
// Postcondition: returns [result, extraTens_1, ..., extraTens_|bp|] with
// result in [1, 100].
func RollPercentile(src Source, bp int) []int {
	if bp > MaxBonusDice || bp < -MaxBonusDice {
		panic("dice: RollPercentile called with |bp| > MaxBonusDice")
	}
	extra := bp
	if extra < 0 {
		extra = -extra
	}

	ones := src.IntRange(0, 9)
	best := src.IntRange(0, 9)
	out := make([]int, 1, extra+1)
	for i := 0; i < extra; i++ {
		tens := src.IntRange(0, 9)
		out = append(out, tens)
		candidate, current := Combine(tens, ones), Combine(best, ones)
		if (bp > 0 && candidate < current) || (bp < 0 && candidate > current) {
			best = tens
		}
	}
	out[0] = Combine(best, ones)
	return out
}

// Classify maps a d100 roll against a target value to a success tier.
// Rolls of 5 or less are always critical successes and rolls of 96 or more
// that would not be critical successes are critical failures.
//
// Precondition: roll in [1, 100]; target >= 0.
func Classify(roll, target int) Tier {
	switch {
	case roll <= 5:
		return TierCriticalSuccess
	case roll >= 96:
		return TierCriticalFailure
	case roll > target:
		return TierFailure
	case roll <= target/5:
		return TierExtremeSuccess
	case roll <= target/2:
		return TierHardSuccess
	default:
		return TierSuccess
	}
}

// CheckResult captures a resolved percentile check.
type CheckResult struct {
	Target int
	// Bonus is positive for bonus dice and negative for penalty dice.
	Bonus     int
	Roll      int
	ExtraTens []int
	Tier      Tier
}

func (c CheckResult) String() string {
	s := fmt.Sprintf("D100=%d/%d", c.Roll, c.Target)
	if len(c.ExtraTens) > 0 {
		kind := "bonus"
		if c.Bonus < 0 {
			kind = "penalty"
		}
		s += fmt.Sprintf(" (%s tens %v)", kind, c.ExtraTens)
	}
	return s + " " + c.Tier.String()
}

// Check rolls a percentile check against target with bp bonus/penalty dice.
//
// Precondition: src must be non-nil.
// Postcondition: returns ErrInvalidTarget if target < 0 and
// ErrTooManyBonusDice if |bp| > MaxBonusDice.
func Check(src Source, target, bp int) (CheckResult, error) {
	if target < 0 {
		return CheckResult{}, fmt.Errorf("dice: target %d: %w", target, ErrInvalidTarget)
	}
	if bp > MaxBonusDice || bp < -MaxBonusDice {
		return CheckResult{}, fmt.Errorf("dice: %d dice (max %d): %w", abs(bp), MaxBonusDice, ErrTooManyBonusDice)
	}
	rolls := RollPercentile(src, bp)
	return CheckResult{
		Target:    target,
		Bonus:     bp,
		Roll:      rolls[0],
		ExtraTens: rolls[1:],
		Tier:      Classify(rolls[0], target),
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
