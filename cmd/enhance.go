package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/schema"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance <text-file>",
	Short: "Turn a plain text resume into a structured JSON resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return enhance(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(enhanceCmd)

	enhanceCmd.Flags().String("output", "", "file to write the structured resume to instead of stdout")
	enhanceCmd.Flags().Bool("skip-validation", false, "do not validate the result against the resume schema")
}

func enhance(cmd *cobra.Command, path string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read resume text: %w", err)
	}
	if strings.TrimSpace(string(text)) == "" {
		return fmt.Errorf("resume text %s is empty", path)
	}

	assistant, err := s.newAssistant(cmd.Context())
	if err != nil {
		return fmt.Errorf("building ai assistant: %w", err)
	}

	doc, err := assistant.Enhance(cmd.Context(), string(text))
	if err != nil {
		return err
	}

	if skip, _ := cmd.Flags().GetBool("skip-validation"); !skip {
		validator, err := s.resumeValidator()
		if err != nil {
			return err
		}
		if err := validator.Validate(doc); err != nil {
			var validationErr *schema.ValidationError
			if errors.As(err, &validationErr) {
				s.logger.Warn("enhanced resume does not match the schema",
					zap.String("schema", validator.Source()),
					zap.Int("violations", len(validationErr.Errors)),
				)
			}
			return err
		}
	}

	report := s.scorer.Resume(doc)
	s.logger.Info("resume enhanced", zap.Float64("resume_score", report.Total))

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := writeDocument(output, doc); err != nil {
			return err
		}
		s.logger.Info("resume written", zap.String("path", output))
		return nil
	}

	return writeOutput(cmd.OutOrStdout(), formatJSON, doc)
}
