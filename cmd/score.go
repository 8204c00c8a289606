package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/scoring"
)

type scoreOutput struct {
	Report          scoring.Report           `json:"report" toml:"report"`
	Recommendations []scoring.Recommendation `json:"recommendations,omitempty" toml:"recommendations,omitempty"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume, a job posting or how well they match",
}

var scoreResumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Score resume quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, func(s *session) (scoring.Report, error) {
			resume, err := document.Load(args[0])
			if err != nil {
				return scoring.Report{}, err
			}
			return s.scorer.Resume(resume), nil
		})
	},
}

var scoreJobCmd = &cobra.Command{
	Use:   "job <file>",
	Short: "Score job posting quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, func(s *session) (scoring.Report, error) {
			job, err := document.Load(args[0])
			if err != nil {
				return scoring.Report{}, err
			}
			return s.scorer.Job(job), nil
		})
	},
}

var scoreMatchCmd = &cobra.Command{
	Use:   "match <resume> <job>",
	Short: "Score how well a resume matches a job posting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, func(s *session) (scoring.Report, error) {
			resume, err := document.Load(args[0])
			if err != nil {
				return scoring.Report{}, err
			}
			job, err := document.Load(args[1])
			if err != nil {
				return scoring.Report{}, err
			}
			return s.scorer.Match(resume, job), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreResumeCmd, scoreJobCmd, scoreMatchCmd)

	scoreCmd.PersistentFlags().StringP("format", "o", formatJSON, "output format: json or toml")
	scoreCmd.PersistentFlags().Bool("no-recommendations", false, "print the report only")
}

func runScore(cmd *cobra.Command, score func(*session) (scoring.Report, error)) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	report, err := score(s)
	if err != nil {
		return err
	}

	s.logger.Info("scored",
		zap.String("kind", string(report.Kind)),
		zap.Float64("total", report.Total),
	)

	out := scoreOutput{Report: report}
	if skip, _ := cmd.Flags().GetBool("no-recommendations"); !skip {
		out.Recommendations = scoring.Recommend(&report, s.config.Recommendations.MaxItems)
	}

	format, _ := cmd.Flags().GetString("format")
	if err := writeOutput(cmd.OutOrStdout(), format, out); err != nil {
		return fmt.Errorf("printing report: %w", err)
	}
	return nil
}
