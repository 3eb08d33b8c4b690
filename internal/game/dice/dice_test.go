package dice_test

import (
	"strings"
	"sync"

	"github.com/cory-johannsen/dicetable/internal/game/dice"
)

// constSource returns the same value for every draw regardless of range.
type constSource struct{ v int }

func (c constSource) IntRange(_, _ int) int { return c.v }

// scriptedSource replays a fixed sequence of draws.
type scriptedSource struct {
	mu   sync.Mutex
	vals []int
	next int
}

func (s *scriptedSource) IntRange(_, _ int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.next]
	s.next++
	return v
}

// maxSource always returns the top of the range.
type maxSource struct{}

func (maxSource) IntRange(_, max int) int { return max }

var _ dice.Source = constSource{}

func normalize(expr string) string {
	return dice.Preprocess(expr, 100)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
