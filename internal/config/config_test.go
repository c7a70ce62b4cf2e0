package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, "https://www.alloia.io/api/v1", cfg.AlloiaBaseURL)
	assert.Equal(t, "allow", cfg.LLMTraining)
	assert.True(t, cfg.RedirectEnabled)
	assert.Equal(t, 50, cfg.ExportBatchSize)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadNormalizesBaseURL(t *testing.T) {
	t.Setenv("ALLOIA_BASE_URL", "https://staging.alloia.io/api/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://staging.alloia.io/api/v1", cfg.AlloiaBaseURL)

	t.Setenv("ALLOIA_BASE_URL", "https://staging.alloia.io/api/v1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://staging.alloia.io/api/v1", cfg.AlloiaBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_TRAINING", "block")
	t.Setenv("AI_REDIRECT_ENABLED", "false")
	t.Setenv("EXPORT_BATCH_SIZE", "200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "block", cfg.LLMTraining)
	assert.False(t, cfg.RedirectEnabled)
	assert.Equal(t, 200, cfg.ExportBatchSize)
}
