package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	vars := map[string]string{
		"PROFILEAPI_PRIMARY.ENV":                     "local",
		"PROFILEAPI_SERVER.PORT":                     "8080",
		"PROFILEAPI_SERVER.READ_TIMEOUT":             "30",
		"PROFILEAPI_SERVER.WRITE_TIMEOUT":            "30",
		"PROFILEAPI_SERVER.IDLE_TIMEOUT":             "60",
		"PROFILEAPI_SERVER.CORS_ALLOWED_ORIGINS":     "http://localhost:3000",
		"PROFILEAPI_DATABASE.HOST":                   "localhost",
		"PROFILEAPI_DATABASE.PORT":                   "5432",
		"PROFILEAPI_DATABASE.USER":                   "postgres",
		"PROFILEAPI_DATABASE.PASSWORD":               "postgres",
		"PROFILEAPI_DATABASE.NAME":                   "profile",
		"PROFILEAPI_DATABASE.SSL_MODE":               "disable",
		"PROFILEAPI_DATABASE.MAX_OPEN_CONNS":         "10",
		"PROFILEAPI_DATABASE.MAX_IDLE_CONNS":         "5",
		"PROFILEAPI_DATABASE.CONN_MAX_LIFETIME":      "300",
		"PROFILEAPI_DATABASE.CONN_MAX_IDLE_TIME":     "60",
		"PROFILEAPI_REDIS.ADDRESS":                   "localhost:6379",
		"PROFILEAPI_AUTH.SECRET_KEY":                 "secret",
		"PROFILEAPI_INTEGRATION.RESEND_API_KEY":      "re_test",
		"PROFILEAPI_INTEGRATION.IMGUR_CLIENT_ID":     "client",
		"PROFILEAPI_SERVER.BASE_PATH":                "api/v1/",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api/v1", cfg.Server.BasePath)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "https://api.imgur.com", cfg.Integration.ImgurBaseURL)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)

	require.NotNil(t, cfg.Seed)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.Equal(t, "位高權上者", cfg.Seed.AdminName)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROFILEAPI_AUTH.SECRET_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadConfig_TokenTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROFILEAPI_AUTH.TOKEN_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"/":        "",
		"api":      "/api",
		"/api/v1":  "/api/v1",
		"api/v1/":  "/api/v1",
		" /api/ ":  "/api",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeBasePath(in), "input %q", in)
	}
}

func TestObservabilityValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	assert.Error(t, cfg.Validate())
}
