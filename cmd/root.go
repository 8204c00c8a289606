package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "ats-checker"
)

type Config struct {
	WeightsFile     string                `mapstructure:"weights-file"`
	SchemaFile      string                `mapstructure:"schema-file"`
	AI              AIConfig              `mapstructure:"ai"`
	Iteration       IterationConfig       `mapstructure:"iteration"`
	Cache           CacheConfig           `mapstructure:"cache"`
	Recommendations RecommendationsConfig `mapstructure:"recommendations"`
	Rank            RankConfig            `mapstructure:"rank"`
}

type AIConfig struct {
	Provider     string `mapstructure:"provider" validate:"oneof=gemini openai anthropic"`
	Model        string `mapstructure:"model"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	BaseURL      string `mapstructure:"base-url" validate:"omitempty,url"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
	Instructions string `mapstructure:"instructions"`
}

type IterationConfig struct {
	Strategy                     string        `mapstructure:"strategy" validate:"oneof=best_of first_hit patience"`
	TargetScore                  float64       `mapstructure:"target-score" validate:"gte=0,lte=100"`
	MaxIterations                int           `mapstructure:"max-iterations" validate:"gte=0"`
	MaxNoImprovement             int           `mapstructure:"max-no-improvement" validate:"gte=0"`
	MinScoreDelta                float64       `mapstructure:"min-score-delta" validate:"gte=0"`
	FailureCountsAsNoImprovement bool          `mapstructure:"failure-counts-as-no-improvement"`
	ReviseTimeout                time.Duration `mapstructure:"revise-timeout" validate:"gte=0"`
	ValidateCandidates           bool          `mapstructure:"validate-candidates"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Size    int  `mapstructure:"size" validate:"required_if=Enabled true,gte=0"`
}

type RecommendationsConfig struct {
	MaxItems int `mapstructure:"max-items" validate:"gte=0"`
}

type RankConfig struct {
	MinJobScore      float64  `mapstructure:"min-job-score" validate:"gte=0,lte=100"`
	MinMatchScore    float64  `mapstructure:"min-match-score" validate:"gte=0,lte=100"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	Workers          int      `mapstructure:"workers" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "ats-checker scores resumes and job postings and improves resumes with AI",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ats-checker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("weights-file", "")
	v.SetDefault("schema-file", "")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api-key-file", "")
	v.SetDefault("ai.base-url", "")
	v.SetDefault("ai.max-retries", 3)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.instructions", "")

	v.SetDefault("iteration.strategy", "best_of")
	v.SetDefault("iteration.target-score", 80.0)
	v.SetDefault("iteration.max-iterations", 5)
	v.SetDefault("iteration.max-no-improvement", 2)
	v.SetDefault("iteration.min-score-delta", 0.0)
	v.SetDefault("iteration.failure-counts-as-no-improvement", true)
	v.SetDefault("iteration.revise-timeout", "2m")
	v.SetDefault("iteration.validate-candidates", false)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 256)

	v.SetDefault("recommendations.max-items", 5)

	v.SetDefault("rank.min-job-score", 0.0)
	v.SetDefault("rank.min-match-score", 0.0)
	v.SetDefault("rank.exclude-companies", []string{})
	v.SetDefault("rank.exclude-file", "")
	v.SetDefault("rank.workers", 0)
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix("ATS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("weights-file", "ATS_WEIGHTS_FILE"); err != nil {
		return fmt.Errorf("binding ATS_WEIGHTS_FILE environment variable: %w", err)
	}
	if err := v.BindEnv("ai.api-key-file", "ATS_API_KEY_FILE"); err != nil {
		return fmt.Errorf("binding ATS_API_KEY_FILE environment variable: %w", err)
	}
	return nil
}

func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := bindEnv(viper.GetViper()); err != nil {
		cobra.CheckErr(err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		cobra.CheckErr(err)
	}
}

// readConfig reads path, or ats-checker.yaml from the working directory when
// path is empty. Only an explicitly named file is required to exist.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Iteration.Strategy = strings.ToLower(strings.TrimSpace(config.Iteration.Strategy))

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
