package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("TG_BOT_TOKEN", "123456:test-token")
	t.Setenv("OC_BASE_URL", "https://shop.example.com")
	t.Setenv("OC_API_TOKEN", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "123456:test-token", cfg.Telegram.BotToken)
	assert.Equal(t, "https://shop.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 40*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 60*time.Minute, cfg.Redis.SessionTTL)
	assert.Equal(t, "8080", cfg.Ops.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.Telegram.AdminIDs)
}

func TestLoad_MissingBotToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TG_BOT_TOKEN", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram config")
}

func TestLoad_MissingBackendCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OC_API_TOKEN", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend config")
}

func TestLoad_MalformedBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OC_BASE_URL", "shop.example.com")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_TrimsBaseURLSlash(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OC_BASE_URL", "https://shop.example.com/")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.Backend.BaseURL)
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int64
	}{
		{"empty", "", nil},
		{"single", "100", []int64{100}},
		{"multiple with spaces", " 100, 200 ,300", []int64{100, 200, 300}},
		{"skips garbage entries", "100,abc,-5,0,200", []int64{100, 200}},
		{"trailing comma", "100,", []int64{100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseIDList(tt.raw))
		})
	}
}

func TestLoad_AdminIDs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TG_ADMIN_IDS", "100,200")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AdminIDs)
}

func TestLoad_TimeoutOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OC_TIMEOUT_SECONDS", "10")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
}
