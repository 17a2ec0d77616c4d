package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults tests defaults with only the required secret set
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "myflix-api", cfg.JWT.Issuer)
	assert.Equal(t, "myflix-clients", cfg.JWT.Audience)
	assert.Equal(t, "myflix-users", cfg.DynamoDB.UsersTableName)
	assert.Equal(t, "myflix-movies", cfg.DynamoDB.MoviesTableName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "/metrics", cfg.Observability.MetricsPath)
	assert.False(t, cfg.Observability.TracingEnabled)
	assert.Equal(t, "json", cfg.Log.Format)
}

// TestLoad_RequiresSecret tests that a missing JWT secret fails startup
func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

// TestLoad_Overrides tests environment overrides
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DYNAMODB_USERS_TABLE_NAME", "staging-users")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "staging-users", cfg.DynamoDB.UsersTableName)
}

// TestValidateConfig tests the startup validation rules
func TestValidateConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	for _, tc := range []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero ttl", key: "JWT_TTL", value: "0s"},
		{name: "negative ttl", key: "JWT_TTL", value: "-1h"},
		{name: "bad port", key: "SERVER_PORT", value: "not-a-port"},
		{name: "port out of range", key: "SERVER_PORT", value: "70000"},
		{name: "bad sample rate", key: "OBSERVABILITY_SAMPLE_RATE", value: "1.5"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
