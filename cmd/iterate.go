package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/iteration"
	"github.com/spigell/ats-checker/internal/scoring"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

type iterateOutput struct {
	RunID           string                   `json:"run_id" toml:"run_id"`
	StopReason      string                   `json:"stop_reason" toml:"stop_reason"`
	Iterations      int                      `json:"iterations" toml:"iterations"`
	InitialCombined float64                  `json:"initial_combined" toml:"initial_combined"`
	Combined        float64                  `json:"combined" toml:"combined"`
	Resume          scoring.Report           `json:"resume" toml:"resume"`
	Match           *scoring.Report          `json:"match,omitempty" toml:"match,omitempty"`
	History         []iteration.HistoryEntry `json:"history" toml:"history"`
	Document        any                      `json:"document" toml:"document"`
}

var iterateCmd = &cobra.Command{
	Use:   "iterate <resume>",
	Short: "Revise a resume with the configured AI provider until it scores well enough",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return iterate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(iterateCmd)

	iterateCmd.Flags().String("job", "", "job posting to tailor the resume to")
	iterateCmd.Flags().String("output", "", "file to write the best resume to")
	iterateCmd.Flags().StringP("format", "o", formatJSON, "output format of the run summary: json or toml")
	iterateCmd.Flags().StringP("strategy", "s", "", "override iteration.strategy")
	iterateCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before writing --output")
}

func iterate(cmd *cobra.Command, resumePath string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resume, err := document.Load(resumePath)
	if err != nil {
		return err
	}

	in := iteration.Input{Resume: resume, Job: document.Null}
	if jobPath, _ := cmd.Flags().GetString("job"); jobPath != "" {
		if in.Job, err = document.Load(jobPath); err != nil {
			return err
		}
	}

	cfg := iterationConfig(s.config.Iteration)
	if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
		cfg.Strategy = iteration.Strategy(strategy)
	}

	controller, err := s.newController(ctx, cfg, in.Job)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := controller.Run(ctx, in)
	if err != nil {
		return err
	}
	s.logger.Info("iteration completed", zap.String("run_id", result.RunID), elapsed(start))

	format, _ := cmd.Flags().GetString("format")
	if err := writeOutput(cmd.OutOrStdout(), format, summarize(result)); err != nil {
		return fmt.Errorf("printing result: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if strings.TrimSpace(output) == "" {
		return nil
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Write the resume (%.1f -> %.1f) to %s?", result.InitialCombined, result.Combined, output),
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("confirmation prompt: %w", err)
		}
		if action != PromptYes {
			s.logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return nil
		}
	}

	if err := writeDocument(output, result.Document); err != nil {
		return err
	}
	s.logger.Info("resume written", zap.String("path", output))
	return nil
}

func (s *session) newController(ctx context.Context, cfg iteration.Config, job document.Value) (*iteration.Controller, error) {
	assistant, err := s.newAssistant(ctx)
	if err != nil {
		return nil, fmt.Errorf("building ai assistant: %w", err)
	}
	if !job.IsNull() {
		assistant = assistant.WithJob(job)
	}

	deps := iteration.Deps{
		Reviser: assistant,
		Scorer:  s.scorer,
		Overall: s.overall,
		Logger:  s.logger,
	}
	if s.config.Iteration.ValidateCandidates {
		validator, err := s.resumeValidator()
		if err != nil {
			return nil, err
		}
		deps.Validator = validator
	}

	return iteration.New(cfg, deps)
}

func iterationConfig(c IterationConfig) iteration.Config {
	return iteration.Config{
		Strategy:                     iteration.Strategy(c.Strategy),
		TargetScore:                  c.TargetScore,
		MaxIterations:                c.MaxIterations,
		MaxNoImprovement:             c.MaxNoImprovement,
		MinScoreDelta:                c.MinScoreDelta,
		FailureCountsAsNoImprovement: c.FailureCountsAsNoImprovement,
		ReviseTimeout:                c.ReviseTimeout,
	}
}

func summarize(result *iteration.Result) iterateOutput {
	history := result.History
	if history == nil {
		history = []iteration.HistoryEntry{}
	}
	return iterateOutput{
		RunID:           result.RunID,
		StopReason:      string(result.StopReason),
		Iterations:      result.Iterations,
		InitialCombined: result.InitialCombined,
		Combined:        result.Combined,
		Resume:          result.Resume,
		Match:           result.Match,
		History:         history,
		Document:        result.Document.Interface(),
	}
}
