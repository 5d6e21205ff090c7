// Package config centralizes runtime configuration, loaded from environment
// variables with an optional .env file for local development.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	apperrors "github.com/pathlight-labs/pathlight/internal/errors"
)

// Config holds every tunable of the service and CLI.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// QuestionBudget caps adaptive sessions; full-bank mode ignores it.
	QuestionBudget int `env:"QUESTION_BUDGET" envDefault:"16"`
	// StageBudgets are the per-stage question counts of the staged variant.
	StageBudgets []int `env:"STAGE_BUDGETS" envSeparator:"," envDefault:"6,5,5"`

	NarrativeEnabled bool          `env:"NARRATIVE_ENABLED" envDefault:"true"`
	NarrativeURL     string        `env:"NARRATIVE_URL" envDefault:"http://localhost:11434"`
	NarrativeModel   string        `env:"NARRATIVE_MODEL" envDefault:"llama3"`
	NarrativeTimeout time.Duration `env:"NARRATIVE_TIMEOUT" envDefault:"2m"`

	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	IPLimitPerMin int           `env:"IP_LIMIT_PER_MIN" envDefault:"60"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse environment", err)
	}
	if cfg.QuestionBudget <= 0 {
		return nil, apperrors.NewConfigError("QUESTION_BUDGET must be positive", nil)
	}
	for _, b := range cfg.StageBudgets {
		if b <= 0 {
			return nil, apperrors.NewConfigError("STAGE_BUDGETS entries must be positive", nil)
		}
	}
	return &cfg, nil
}
