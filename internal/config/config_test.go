package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"APP_ENV":                    "",
		"PORT":                       "",
		"REDIS_URL":                  "",
		"QUOTE_CACHE_TTL":            "",
		"STORE_ROSTER":               "",
		"UNAVAILABLE_PENALTY":        "",
		"AVAILABILITY_CEILING":       "",
		"RATE_LIMIT_MAX":             "",
		"SECURE_HEADERS":             "",
		"OBS_ENABLE_TRACING":         "",
		"OBS_TRACING_SAMPLING_RATIO": "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Len(t, cfg.Roster, 5)
	require.Equal(t, "999999", cfg.UnavailablePenalty.String())
	require.Equal(t, "500000", cfg.AvailabilityCeiling.String())
	require.Equal(t, 10*time.Minute, cfg.QuoteCacheTTL)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.True(t, cfg.SecureHeaders)
	require.False(t, cfg.TracingEnabled)
	require.False(t, cfg.CacheEnabled())
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = ":9090"
	env["REDIS_URL"] = "redis://localhost:6379/0"
	env["QUOTE_CACHE_TTL"] = "30s"
	env["STORE_ROSTER"] = "dia:DIA, coto:COTO"
	env["UNAVAILABLE_PENALTY"] = "1000000"
	env["SECURE_HEADERS"] = "off"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 30*time.Second, cfg.QuoteCacheTTL)
	require.Equal(t, []string{"dia", "coto"}, cfg.Roster.Keys())
	require.Equal(t, "1000000", cfg.UnavailablePenalty.String())
	require.False(t, cfg.SecureHeaders)
	require.True(t, cfg.CacheEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"duplicate roster":  {"STORE_ROSTER": "dia,dia"},
		"bad penalty":       {"UNAVAILABLE_PENALTY": "lots"},
		"negative ceiling":  {"AVAILABILITY_CEILING": "-1"},
		"sampling too high": {"OBS_TRACING_SAMPLING_RATIO": "2"},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			env := baseEnv()
			for k, v := range overrides {
				env[k] = v
			}
			_, err := LoadForTests(env)
			require.Error(t, err)
		})
	}
}

func TestLoadForTestsRestoresEnvironment(t *testing.T) {
	t.Setenv("PORT", "7000")
	cfg, err := LoadForTests(map[string]string{"PORT": "7100"})
	require.NoError(t, err)
	require.Equal(t, ":7100", cfg.HTTPAddr())

	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTPAddr())
}
