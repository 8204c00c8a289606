package iteration

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is returned for settings the controller cannot run
// with, such as an unknown strategy or a negative budget.
var ErrInvalidConfiguration = errors.New("invalid iteration configuration")

// Strategy selects when the loop stops.
type Strategy string

const (
	// StrategyBestOf spends the budget unless the target is reached.
	StrategyBestOf Strategy = "best_of"
	// StrategyFirstHit stops on the first improvement that reaches the target.
	StrategyFirstHit Strategy = "first_hit"
	// StrategyPatience also stops after a streak of non-improving iterations.
	StrategyPatience Strategy = "patience"
)

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyBestOf, StrategyFirstHit, StrategyPatience}
}

// ParseStrategy parses a strategy name, ignoring case and surrounding spaces.
func ParseStrategy(s string) (Strategy, error) {
	candidate := Strategy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Strategies() {
		if candidate == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfiguration, s)
}

func (s Strategy) String() string { return string(s) }
