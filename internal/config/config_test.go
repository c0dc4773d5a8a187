package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/mytrackly")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"ENV", "HTTP_ADDR", "DEFAULT_TIMEZONE", "CALENDAR_SYNC_INTERVAL", "GOOGLE_CREDENTIALS_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "Europe/Paris", cfg.DefaultTimezone)
	assert.Equal(t, 5*time.Minute, cfg.CalendarSyncInterval)
	assert.False(t, cfg.CalendarEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DEFAULT_TIMEZONE", "America/Montreal")
	t.Setenv("CALENDAR_SYNC_INTERVAL", "90s")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/mytrackly/google.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 90*time.Second, cfg.CalendarSyncInterval)
	assert.True(t, cfg.CalendarEnabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Montreal", loc.String())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing dsn", env: map[string]string{"DB_DSN": ""}},
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "bad interval", env: map[string]string{"CALENDAR_SYNC_INTERVAL": "often"}},
		{name: "negative interval", env: map[string]string{"CALENDAR_SYNC_INTERVAL": "-1m"}},
		{name: "unknown timezone", env: map[string]string{"DEFAULT_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("CALENDAR_SYNC_INTERVAL", "")
			t.Setenv("DEFAULT_TIMEZONE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
