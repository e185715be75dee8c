package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	base := map[string]string{
		"WCL_CLIENT_ID":     "client-id",
		"WCL_CLIENT_SECRET": "client-secret",
		"WCL_TOKEN_URL":     "https://www.warcraftlogs.com/oauth/token",
		"WCL_API_URL":       "https://www.warcraftlogs.com/api/v2/client",
		"UPSTREAM_TIMEOUT":  "10s",
		"CACHE_MAX_AGE":     "6h",
		"DB_PATH":           "test.db",
		"SERVER_PORT":       "9090",
		"LOG_LEVEL":         "debug",
	}
	for k, v := range overrides {
		base[k] = v
	}
	for k, v := range base {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	setEnv(t, map[string]string{"CACHE_MAX_AGE": "2h"})

	cfg, err := Load(zerolog.Nop())
	require.NoError(t, err)

	assert.True(t, cfg.UpstreamConfigured())
	assert.Equal(t, 2*time.Hour, cfg.CacheMaxAge)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "test.db", cfg.DBPath)
}

func TestLoad_RejectsNonPositiveDurations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero max age", map[string]string{"CACHE_MAX_AGE": "0s"}, "CACHE_MAX_AGE"},
		{"negative max age", map[string]string{"CACHE_MAX_AGE": "-1h"}, "CACHE_MAX_AGE"},
		{"zero timeout", map[string]string{"UPSTREAM_TIMEOUT": "0s"}, "UPSTREAM_TIMEOUT"},
		{"negative timeout", map[string]string{"UPSTREAM_TIMEOUT": "-5s"}, "UPSTREAM_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)

			_, err := Load(zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	setEnv(t, map[string]string{"UPSTREAM_TIMEOUT": "soon"})

	_, err := Load(zerolog.Nop())
	require.Error(t, err)
}

func TestLoad_MissingCredentialsWarns(t *testing.T) {
	setEnv(t, map[string]string{"WCL_CLIENT_SECRET": ""})

	var buf bytes.Buffer
	cfg, err := Load(zerolog.New(&buf))
	require.NoError(t, err)

	assert.False(t, cfg.UpstreamConfigured())
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "serving cached data only")
	assert.Contains(t, buf.String(), `"upstream_configured":false`)
}
