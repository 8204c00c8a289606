// Package iteration drives repeated revision of a resume toward a target score.
package iteration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/logger"
	"github.com/spigell/ats-checker/internal/scoring"
)

// Reviser produces an improved document from the current best one.
type Reviser interface {
	Revise(ctx context.Context, doc document.Value, feedback scoring.Feedback) (document.Value, error)
}

// Scorer scores candidates. *scoring.Scorer and *scoring.CachedScorer satisfy it.
type Scorer interface {
	Resume(resume document.Value) scoring.Report
	Match(resume, job document.Value) scoring.Report
}

// Validator rejects malformed candidates before they are scored.
type Validator interface {
	Validate(doc document.Value) error
}

// StopReason tells why the loop ended.
type StopReason string

const (
	StopCanceled           StopReason = "canceled"
	StopTargetReachedEarly StopReason = "target_reached_early"
	StopNoImprovement      StopReason = "no_improvement"
	StopTargetReached      StopReason = "target_reached"
	StopBudgetExhausted    StopReason = "budget_exhausted"
)

// Config tunes the loop.
type Config struct {
	Strategy         Strategy
	TargetScore      float64
	MaxIterations    int
	MaxNoImprovement int
	// MinScoreDelta is the margin a candidate must beat the best by.
	MinScoreDelta float64
	// FailureCountsAsNoImprovement makes failed or rejected revisions extend
	// the no-improvement streak.
	FailureCountsAsNoImprovement bool
	// ReviseTimeout bounds a single Revise call. Zero means no bound.
	ReviseTimeout time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Strategy:                     StrategyBestOf,
		TargetScore:                  80,
		MaxIterations:                5,
		MaxNoImprovement:             2,
		FailureCountsAsNoImprovement: true,
	}
}

// Deps aggregates the collaborators of a Controller.
type Deps struct {
	Reviser   Reviser
	Scorer    Scorer
	Validator Validator
	Overall   scoring.Weights
	Logger    *zap.Logger
}

// Input is the starting point of a run. Missing reports are computed. A null
// Job runs the loop on resume quality alone.
type Input struct {
	Resume       document.Value
	ResumeReport *scoring.Report
	Job          document.Value
	MatchReport  *scoring.Report
}

// HistoryEntry describes one iteration.
type HistoryEntry struct {
	Iteration int     `json:"iteration" toml:"iteration"`
	Combined  float64 `json:"combined" toml:"combined"`
	Accepted  bool    `json:"accepted" toml:"accepted"`
	Err       error   `json:"-" toml:"-"`
	Failure   string  `json:"failure,omitempty" toml:"failure,omitempty"`
}

// Result is the outcome of a run.
type Result struct {
	RunID           string          `json:"run_id"`
	Document        document.Value  `json:"document"`
	Resume          scoring.Report  `json:"resume"`
	Match           *scoring.Report `json:"match,omitempty"`
	InitialCombined float64         `json:"initial_combined"`
	Combined        float64         `json:"combined"`
	StopReason      StopReason      `json:"stop_reason"`
	Iterations      int             `json:"iterations"`
	History         []HistoryEntry  `json:"history"`
}

// Controller runs the revise and re-score loop. It is sequential; a single
// Controller may serve several runs one after another.
type Controller struct {
	cfg  Config
	deps Deps
}

// New validates cfg and deps and returns a Controller.
func New(cfg Config, deps Deps) (*Controller, error) {
	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	cfg.Strategy = strategy

	switch {
	case cfg.TargetScore < 0 || cfg.TargetScore > 100:
		return nil, fmt.Errorf("%w: target score %.2f is outside [0, 100]", ErrInvalidConfiguration, cfg.TargetScore)
	case cfg.MaxIterations < 0:
		return nil, fmt.Errorf("%w: max iterations must not be negative", ErrInvalidConfiguration)
	case cfg.MaxNoImprovement < 0:
		return nil, fmt.Errorf("%w: max no-improvement streak must not be negative", ErrInvalidConfiguration)
	case cfg.Strategy == StrategyPatience && cfg.MaxNoImprovement == 0:
		return nil, fmt.Errorf("%w: patience requires a positive no-improvement streak", ErrInvalidConfiguration)
	case cfg.MinScoreDelta < 0:
		return nil, fmt.Errorf("%w: min score delta must not be negative", ErrInvalidConfiguration)
	case cfg.ReviseTimeout < 0:
		return nil, fmt.Errorf("%w: revise timeout must not be negative", ErrInvalidConfiguration)
	}

	if deps.Reviser == nil {
		return nil, fmt.Errorf("%w: reviser is required", ErrInvalidConfiguration)
	}
	if deps.Scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", ErrInvalidConfiguration)
	}
	if deps.Overall == nil {
		deps.Overall = scoring.DefaultOverallWeights()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Controller{cfg: cfg, deps: deps}, nil
}

// Config returns the validated configuration.
func (c *Controller) Config() Config { return c.cfg }

type state struct {
	document document.Value
	resume   scoring.Report
	match    *scoring.Report
	combined float64
	streak   int
	hasJob   bool
	job      document.Value
}

// Run improves in.Resume until a stop condition holds. The returned document
// never scores below the initial one. Cancellation of ctx ends the run with
// StopCanceled and the best state so far; it is not reported as an error.
func (c *Controller) Run(ctx context.Context, in Input) (*Result, error) {
	st := c.initialState(in)

	result := &Result{
		RunID:           uuid.NewString(),
		InitialCombined: st.combined,
	}
	log := logger.WithRun(c.deps.Logger, result.RunID, c.cfg.Strategy.String())

	log.Info("iteration started",
		zap.Float64("combined", st.combined),
		zap.Float64("target", c.cfg.TargetScore),
		zap.Int("max_iterations", c.cfg.MaxIterations),
		zap.Bool("with_job", st.hasJob),
	)

	reason := c.loop(ctx, log, st, result)

	result.Document = st.document
	result.Resume = st.resume
	result.Match = st.match
	result.Combined = st.combined
	result.StopReason = reason

	log.Info("iteration finished",
		zap.String("stop_reason", string(reason)),
		zap.Int("iterations", result.Iterations),
		zap.Float64("initial_combined", result.InitialCombined),
		zap.Float64("best_combined", result.Combined),
	)

	return result, nil
}

func (c *Controller) initialState(in Input) *state {
	st := &state{
		document: in.Resume.Clone(),
		hasJob:   !in.Job.IsNull(),
		job:      in.Job,
	}

	if in.ResumeReport != nil {
		st.resume = *in.ResumeReport
	} else {
		st.resume = c.deps.Scorer.Resume(st.document)
	}

	if st.hasJob {
		if in.MatchReport != nil {
			report := *in.MatchReport
			st.match = &report
		} else {
			report := c.deps.Scorer.Match(st.document, st.job)
			st.match = &report
		}
	}

	st.combined = scoring.Blend(&st.resume, st.match, c.deps.Overall)
	return st
}

func (c *Controller) loop(ctx context.Context, log *zap.Logger, st *state, result *Result) StopReason {
	if st.combined >= c.cfg.TargetScore {
		return StopTargetReached
	}

	for i := 1; i <= c.cfg.MaxIterations; i++ {
		if ctx.Err() != nil {
			return StopCanceled
		}
		result.Iterations = i

		entry := c.step(ctx, i, st)
		result.History = append(result.History, entry)

		fields := []zap.Field{
			zap.Int(logger.FieldIteration, i),
			zap.Float64("combined", entry.Combined),
			zap.Float64("best_combined", st.combined),
			zap.Int("streak", st.streak),
			zap.Bool("accepted", entry.Accepted),
		}
		if entry.Err != nil {
			log.Warn("iteration failed", append(fields, zap.Error(entry.Err))...)
		} else {
			log.Info("iteration step", fields...)
		}

		if entry.Accepted && c.cfg.Strategy == StrategyFirstHit && st.combined >= c.cfg.TargetScore {
			return StopTargetReachedEarly
		}
		if !entry.Accepted && c.cfg.Strategy == StrategyPatience && st.streak >= c.cfg.MaxNoImprovement {
			return StopNoImprovement
		}
		if st.combined >= c.cfg.TargetScore {
			return StopTargetReached
		}
	}

	return StopBudgetExhausted
}

// step performs one revision. The best state changes only after Revise has
// returned a valid, better candidate.
func (c *Controller) step(ctx context.Context, i int, st *state) HistoryEntry {
	entry := HistoryEntry{Iteration: i}

	feedback := scoring.NewFeedback(&st.resume, st.match, c.deps.Overall)
	candidate, err := c.revise(ctx, st.document.Clone(), feedback)
	if err == nil && c.deps.Validator != nil {
		if verr := c.deps.Validator.Validate(candidate); verr != nil {
			err = fmt.Errorf("%w: %w", ErrCandidateRejected, verr)
		}
	}

	if err != nil {
		entry.Err = &ReviseError{Iteration: i, Err: err}
		entry.Failure = entry.Err.Error()
		if c.cfg.FailureCountsAsNoImprovement {
			st.streak++
		}
		return entry
	}

	resume := c.deps.Scorer.Resume(candidate)
	var match *scoring.Report
	if st.hasJob {
		report := c.deps.Scorer.Match(candidate, st.job)
		match = &report
	}
	entry.Combined = scoring.Blend(&resume, match, c.deps.Overall)

	if entry.Combined > st.combined+c.cfg.MinScoreDelta {
		st.document = candidate
		st.resume = resume
		st.match = match
		st.combined = entry.Combined
		st.streak = 0
		entry.Accepted = true
		return entry
	}

	st.streak++
	return entry
}

func (c *Controller) revise(ctx context.Context, doc document.Value, feedback scoring.Feedback) (document.Value, error) {
	if c.cfg.ReviseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ReviseTimeout)
		defer cancel()
	}

	candidate, err := c.deps.Reviser.Revise(ctx, doc, feedback)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && c.cfg.ReviseTimeout > 0 {
			return document.Null, fmt.Errorf("timed out after %s: %w", c.cfg.ReviseTimeout, err)
		}
		return document.Null, err
	}
	if candidate.Kind() != document.KindObject {
		return document.Null, fmt.Errorf("reviser returned %s instead of an object", candidate.Kind())
	}
	return candidate, nil
}
