// Package ai turns text generation models into resume revisers and
// enhancers.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/logger"
	"github.com/spigell/ats-checker/internal/scoring"
)

// Generator sends a prompt to a model and returns its text answer.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyResponse is returned by providers when the model answered with no
// text.
var ErrEmptyResponse = errors.New("model returned empty response")

const defaultMaxLogLength = 200

// Options tunes an Assistant.
type Options struct {
	// Provider and Model only label log entries.
	Provider string
	Model    string
	// Instructions are free-form user hints appended to every prompt.
	Instructions string
	MaxLogLength int
	Logger       *zap.Logger
}

// Assistant revises structured resumes and structures raw ones with a
// Generator. It is safe for concurrent use when the Generator is.
type Assistant struct {
	generator    Generator
	logger       *zap.Logger
	maxLogLen    int
	instructions string
	job          document.Value
}

// NewAssistant returns an Assistant over generator.
func NewAssistant(generator Generator, opts Options) (*Assistant, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &Assistant{
		generator:    generator,
		logger:       logger.WithCommonFields(opts.Logger, opts.Provider, opts.Model),
		maxLogLen:    maxLogLen,
		instructions: opts.Instructions,
	}, nil
}

// WithJob returns a copy of the assistant that tailors revisions to job.
func (a *Assistant) WithJob(job document.Value) *Assistant {
	clone := *a
	clone.job = job
	return &clone
}

// Revise asks the model for an improved version of doc.
func (a *Assistant) Revise(ctx context.Context, doc document.Value, feedback scoring.Feedback) (document.Value, error) {
	resumeJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return document.Null, fmt.Errorf("marshal resume: %w", err)
	}

	jobText := "none"
	if !a.job.IsNull() {
		jobJSON, err := json.MarshalIndent(a.job, "", "  ")
		if err != nil {
			return document.Null, fmt.Errorf("marshal job: %w", err)
		}
		jobText = string(jobJSON)
	}

	prompt := buildRevisePrompt(string(resumeJSON), feedback.String(), jobText, a.instructions)
	return a.generate(ctx, "revise", prompt)
}

// Enhance asks the model to turn raw resume text into a structured document.
func (a *Assistant) Enhance(ctx context.Context, text string) (document.Value, error) {
	if len(text) == 0 {
		return document.Null, errors.New("resume text must not be empty")
	}
	return a.generate(ctx, "enhance", buildEnhancePrompt(text, a.instructions))
}

func (a *Assistant) generate(ctx context.Context, operation, prompt string) (document.Value, error) {
	log := a.logger.With(zap.String("operation", operation))

	log.Debug("generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return document.Null, fmt.Errorf("%s: %w", operation, err)
	}

	log.Debug("generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	doc, err := ParseObject(raw)
	if err != nil {
		return document.Null, fmt.Errorf("%s: %w", operation, err)
	}
	return doc, nil
}
