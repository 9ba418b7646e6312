package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "healthcare")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "en", cfg.DefaultDoctorLang)
	assert.Equal(t, 0.3, cfg.LLMTemperature)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "app",
		DBPassword: "pw",
		DBName:     "healthcare",
		DBSSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=app password=pw dbname=healthcare sslmode=require",
		cfg.GetDSN())
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache.internal", RedisPort: "6380"}
	assert.Equal(t, "cache.internal:6380", cfg.GetRedisAddr())
}

func TestS3Configured(t *testing.T) {
	cfg := &Config{S3Bucket: "audio", S3AccessKey: "key", S3SecretKey: "secret"}
	assert.True(t, cfg.S3Configured())

	cfg.S3Bucket = ""
	assert.False(t, cfg.S3Configured())
}

func TestLoadConfig_InvalidFloatFallsBackToDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LLM_TEMPERATURE", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.LLMTemperature)
}
