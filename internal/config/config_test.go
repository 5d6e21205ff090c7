package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 16, cfg.QuestionBudget)
	assert.Equal(t, []int{6, 5, 5}, cfg.StageBudgets)
	assert.True(t, cfg.NarrativeEnabled)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 60, cfg.IPLimitPerMin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("QUESTION_BUDGET", "24")
	t.Setenv("STAGE_BUDGETS", "4,4,4")
	t.Setenv("NARRATIVE_ENABLED", "false")
	t.Setenv("NARRATIVE_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24, cfg.QuestionBudget)
	assert.Equal(t, []int{4, 4, 4}, cfg.StageBudgets)
	assert.False(t, cfg.NarrativeEnabled)
	assert.Equal(t, 45*time.Second, cfg.NarrativeTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero question budget", key: "QUESTION_BUDGET", value: "0"},
		{name: "negative question budget", key: "QUESTION_BUDGET", value: "-3"},
		{name: "zero stage budget", key: "STAGE_BUDGETS", value: "6,0,5"},
		{name: "unparseable budget", key: "QUESTION_BUDGET", value: "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
