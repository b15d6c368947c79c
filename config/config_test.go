package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/netflix_titles.csv", cfg.InputPath)
	assert.Equal(t, "data/netflix_processed.csv", cfg.ProcessedPath)
	assert.Equal(t, "outputs/figures", cfg.FiguresDir)
	assert.Equal(t, "outputs/results", cfg.ResultsDir)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.False(t, cfg.Email.Enabled())
	assert.Empty(t, cfg.DBDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("INPUT_PATH", "/tmp/in.csv")
	t.Setenv("DB_DIR", "/tmp/db")
	t.Setenv("EMAIL_SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_SMTP_PORT", "2525")
	t.Setenv("EMAIL_RECIPIENT", "analyst@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/in.csv", cfg.InputPath)
	assert.Equal(t, "/tmp/db", cfg.DBDir)
	assert.Equal(t, 2525, cfg.Email.SMTPPort)
	assert.True(t, cfg.Email.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadRecipient(t *testing.T) {
	t.Setenv("EMAIL_RECIPIENT", "not-an-address")
	_, err := Load()
	assert.Error(t, err)
}
