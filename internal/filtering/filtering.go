// Package filtering narrows scored job postings down with ordered steps.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/postings"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, p *postings.Postings) (*postings.Postings, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int `json:"initial" toml:"initial"`
	Dropped int `json:"dropped" toml:"dropped"`
	Left    int `json:"left" toml:"left"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// rejectionCollector is implemented by filters that drop postings on merit,
// as opposed to postings excluded up front.
type rejectionCollector interface {
	Rejected() []*postings.Posting
}

// Result is the outcome of Run.
type Result struct {
	Kept     *postings.Postings
	Rejected *postings.Postings
	Steps    map[string]Step
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled filter, then applies them in order.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, p *postings.Postings) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	result := &Result{
		Rejected: &postings.Postings{},
		Steps:    make(map[string]Step, len(steps)),
	}
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, info, err := step.Apply(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		result.Steps[step.Name()] = info
		if collector, ok := step.(rejectionCollector); ok {
			result.Rejected.Items = append(result.Rejected.Items, collector.Rejected()...)
		}
		p = next
	}

	result.Kept = p
	return result, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
