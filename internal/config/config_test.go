package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "carmarket", cfg.MongoDatabase)
	assert.Equal(t, RunModeAll, cfg.RunMode)
	assert.Equal(t, DispatchAsync, cfg.Alerts.DispatchMode)
	assert.Equal(t, 5*time.Second, cfg.Alerts.NotifyTimeout)
	assert.Equal(t, "openai", cfg.NLU.Provider)
	assert.Equal(t, 8*time.Second, cfg.NLU.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Twilio.Enabled())
	assert.Equal(t, 60*24*time.Hour, cfg.Listings.MaxAge)
	assert.Equal(t, "@hourly", cfg.Listings.ExpirySchedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017/market")
	t.Setenv("ALLOWED_ORIGINS", "https://a.ie, https://b.ie ,")
	t.Setenv("RUN_MODE", "worker")
	t.Setenv("ALERT_DISPATCH_MODE", "inline")
	t.Setenv("NLU_PROVIDER", "gemini")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC1")
	t.Setenv("TWILIO_AUTH_TOKEN", "tok")
	t.Setenv("TWILIO_FROM", "+14155238886")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.ie", "https://b.ie"}, cfg.AllowedOrigins)
	assert.Equal(t, RunModeWorker, cfg.RunMode)
	assert.Equal(t, DispatchInline, cfg.Alerts.DispatchMode)
	assert.Equal(t, "gemini", cfg.NLU.Provider)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.True(t, cfg.Twilio.Enabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	for key, value := range map[string]string{
		"RUN_MODE":            "batch",
		"ALERT_DISPATCH_MODE": "carrier-pigeon",
		"NLU_PROVIDER":        "eliza",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresMongoURI(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	os.Unsetenv("MONGO_URI")

	_, err := Load()
	assert.Error(t, err)
}
