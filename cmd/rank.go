package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/filtering"
	"github.com/spigell/ats-checker/internal/postings"
)

type rankEntry struct {
	ID         string  `json:"id" toml:"id"`
	Title      string  `json:"title,omitempty" toml:"title,omitempty"`
	Company    string  `json:"company,omitempty" toml:"company,omitempty"`
	URL        string  `json:"url,omitempty" toml:"url,omitempty"`
	JobScore   float64 `json:"job_score" toml:"job_score"`
	MatchScore float64 `json:"match_score" toml:"match_score"`
}

type rankOutput struct {
	Postings []rankEntry               `json:"postings" toml:"postings"`
	Steps    map[string]filtering.Step `json:"steps" toml:"steps"`
	Rejected []string                  `json:"rejected,omitempty" toml:"rejected,omitempty"`
}

var rankCmd = &cobra.Command{
	Use:   "rank <resume> <jobs-dir>",
	Short: "Score job postings against a resume and list the best matches",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rank(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("format", "o", formatJSON, "output format: json or toml")
	rankCmd.Flags().Bool("by-company", false, "group postings by company")
	rankCmd.Flags().Bool("exclude-rejected", false, "append postings rejected by score to rank.exclude-file")
}

func rank(cmd *cobra.Command, resumePath, dir string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	resume, err := document.Load(resumePath)
	if err != nil {
		return err
	}

	found, err := postings.Load(dir)
	if err != nil {
		return err
	}
	s.logger.Info("postings loaded", zap.String("dir", dir), zap.Int("count", found.Len()))

	if found.Len() == 0 {
		s.logger.Info("exiting", zap.String("reason", "no postings found"))
		return nil
	}

	start := time.Now()
	if err := found.Score(cmd.Context(), s.scorer, resume, s.config.Rank.Workers); err != nil {
		return fmt.Errorf("scoring postings: %w", err)
	}
	s.logger.Info("postings scored", elapsed(start))

	steps := rankFilters(s.config.Rank, s.logger)
	for _, status := range filtering.Describe(steps) {
		s.logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.Any("details", status.Details),
		)
	}

	result, err := filtering.Run(cmd.Context(), s.logger, steps, found)
	if err != nil {
		return fmt.Errorf("filtering failed: %w", err)
	}
	result.Kept.Rank()

	if exclude, _ := cmd.Flags().GetBool("exclude-rejected"); exclude && result.Rejected.Len() > 0 {
		if err := appendRejected(s.config.Rank.ExcludeFile, result.Rejected); err != nil {
			return err
		}
		s.logger.Info("rejected postings appended to exclude file",
			zap.String("path", s.config.Rank.ExcludeFile),
			zap.Int("count", result.Rejected.Len()),
		)
	}

	format, _ := cmd.Flags().GetString("format")
	if byCompany, _ := cmd.Flags().GetBool("by-company"); byCompany {
		return writeOutput(cmd.OutOrStdout(), format, result.Kept.ReportByCompany())
	}
	return writeOutput(cmd.OutOrStdout(), format, newRankOutput(result))
}

func rankFilters(cfg RankConfig, log *zap.Logger) []filtering.Filter {
	steps := []filtering.Filter{
		filtering.NewExcludeFile(cfg.ExcludeFile, log),
		filtering.NewCompanies(cfg.ExcludeCompanies, log),
		filtering.NewJobQuality(cfg.MinJobScore, log),
		filtering.NewMatch(cfg.MinMatchScore, log),
	}
	if cfg.MinJobScore == 0 {
		filtering.DisableByName(steps, filtering.JobQualityName, "rank.min-job-score is 0")
	}
	if cfg.MinMatchScore == 0 {
		filtering.DisableByName(steps, filtering.MatchName, "rank.min-match-score is 0")
	}
	return steps
}

func appendRejected(path string, rejected *postings.Postings) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("--exclude-rejected requires rank.exclude-file")
	}

	excluded, err := postings.ExcludedFromFile(path)
	if err != nil {
		return fmt.Errorf("load excluded postings: %w", err)
	}
	excluded.Append(rejected.ToExcluded(postings.ExcludeActorRank, "score below threshold"))

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded postings: %w", err)
	}
	return nil
}

func newRankOutput(result *filtering.Result) rankOutput {
	out := rankOutput{
		Postings: make([]rankEntry, 0, result.Kept.Len()),
		Steps:    result.Steps,
	}
	for _, p := range result.Kept.Items {
		entry := rankEntry{ID: p.ID, Title: p.Title(), Company: p.Company(), URL: p.URL()}
		if p.Score != nil {
			entry.JobScore = p.Score.Total
		}
		if p.Match != nil {
			entry.MatchScore = p.Match.Total
		}
		out.Postings = append(out.Postings, entry)
	}
	for _, p := range result.Rejected.Items {
		out.Rejected = append(out.Rejected, p.ID)
	}
	return out
}
