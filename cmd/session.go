package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-checker/internal/ai"
	"github.com/spigell/ats-checker/internal/ai/anthropic"
	"github.com/spigell/ats-checker/internal/ai/gemini"
	"github.com/spigell/ats-checker/internal/ai/openai"
	"github.com/spigell/ats-checker/internal/document"
	"github.com/spigell/ats-checker/internal/logger"
	"github.com/spigell/ats-checker/internal/schema"
	"github.com/spigell/ats-checker/internal/scoring"
	"github.com/spigell/ats-checker/internal/secrets"
)

const (
	formatJSON = "json"
	formatTOML = "toml"
)

// reportScorer is satisfied by *scoring.Scorer and *scoring.CachedScorer.
type reportScorer interface {
	Resume(resume document.Value) scoring.Report
	Job(job document.Value) scoring.Report
	Match(resume, job document.Value) scoring.Report
}

// session holds what every command builds from the configuration.
type session struct {
	config  *Config
	logger  *zap.Logger
	scorer  reportScorer
	overall scoring.Weights
}

func newSession() (*session, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	scorer, overall, err := newScorer(config, log)
	if err != nil {
		return nil, err
	}

	return &session{
		config:  config,
		logger:  log,
		scorer:  scorer,
		overall: overall,
	}, nil
}

func newScorer(config *Config, log *zap.Logger) (reportScorer, scoring.Weights, error) {
	path := strings.TrimSpace(config.WeightsFile)

	base := scoring.NewScorerFromFile(path)
	overall := scoring.LoadOverallWeights(path)
	if path != "" {
		log.Info("weights loaded", zap.String("path", path))
	}

	if !config.Cache.Enabled {
		return base, overall, nil
	}

	cached, err := scoring.NewCachedScorer(base, config.Cache.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("creating score cache: %w", err)
	}
	return cached, overall, nil
}

func (s *session) resumeValidator() (*schema.Validator, error) {
	if path := strings.TrimSpace(s.config.SchemaFile); path != "" {
		return schema.NewFromFile(path)
	}
	return schema.NewResumeValidator()
}

// newAssistant builds the configured provider and wraps it in an Assistant.
func (s *session) newAssistant(ctx context.Context) (*ai.Assistant, error) {
	cfg := s.config.AI

	policy := ai.DefaultRetryPolicy()
	policy.MaxRetries = uint64(cfg.MaxRetries) // #nosec G115 -- validated to [0, 10]

	var (
		generator ai.Generator
		model     string
	)

	switch cfg.Provider {
	case gemini.ProviderName:
		apiKey, err := loadAPIKey(cfg, "gemini api key", "GEMINI_API_KEY", "GOOGLE_API_KEY")
		if err != nil {
			return nil, err
		}
		g, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, policy, s.logger)
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()
	case openai.ProviderName:
		apiKey, err := loadAPIKey(cfg, "openai api key", "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		g, err := openai.NewGenerator(apiKey, cfg.Model, cfg.BaseURL, policy, s.logger)
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()
	case anthropic.ProviderName:
		apiKey, err := loadAPIKey(cfg, "anthropic api key", "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		g, err := anthropic.NewGenerator(apiKey, cfg.Model, cfg.BaseURL, policy, s.logger)
		if err != nil {
			return nil, err
		}
		generator, model = g, g.Model()
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	return ai.NewAssistant(generator, ai.Options{
		Provider:     cfg.Provider,
		Model:        model,
		Instructions: cfg.Instructions,
		MaxLogLength: cfg.MaxLogLength,
		Logger:       s.logger,
	})
}

func loadAPIKey(cfg AIConfig, name string, env ...string) (string, error) {
	key, err := secrets.Load(secrets.Source{
		Name: name,
		File: cfg.APIKeyFile,
		Env:  env,
	})
	if err != nil {
		return "", fmt.Errorf("%w (set ai.api-key-file or ATS_API_KEY_FILE)", err)
	}
	return key, nil
}

// writeOutput encodes v to w as indented JSON or TOML.
func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatTOML:
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unsupported format %q (use %s or %s)", format, formatJSON, formatTOML)
	}
}

// writeDocument stores doc at path as indented JSON.
func writeDocument(path string, doc document.Value) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func elapsed(start time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(start))
}
