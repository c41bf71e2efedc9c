package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")
	t.Setenv("LOCAL_DB_HOST", "127.0.0.1")
	t.Setenv("LOCAL_DB_USER", "noticeboard")
	t.Setenv("LOCAL_DB_NAME", "noticeboard")
	t.Setenv("AUTH_SECRET", "a-very-long-session-secret")
	t.Setenv("S3_BUCKET", "notices-bucket")
	t.Setenv("S3_REGION", "ap-southeast-2")
	t.Setenv("SEARCH_APP_ID", "APPID")
	t.Setenv("SEARCH_API_KEY", "search-key")
	t.Setenv("EMAIL_API_KEY", "email-key")
	t.Setenv("EMAIL_FROM", "notices@example.com")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "LOCAL", cfg.EnvType)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "auto", cfg.DBMigrationMode)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 3600*time.Second, cfg.DownloadURLExpiry)
	assert.Equal(t, 60*time.Second, cfg.UploadURLExpiry)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadSizeBytes)
	assert.Equal(t, "https://APPID.algolia.net", cfg.SearchBaseURL)
	assert.False(t, cfg.RedisEnabled())
	assert.True(t, cfg.IsLocal())
}

func TestLoadConfig_ServerPrefix(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV_TYPE", "server")
	t.Setenv("SERVER_DB_HOST", "db.internal")
	t.Setenv("SERVER_DB_USER", "svc")
	t.Setenv("SERVER_DB_NAME", "noticeboard_prod")
	t.Setenv("SERVER_SERVER_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "SERVER", cfg.EnvType)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Contains(t, cfg.GetDSN(), "@tcp(db.internal:3306)/noticeboard_prod")
}

func TestLoadConfig_ReportsAllMissingValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_BUCKET", "")
	t.Setenv("EMAIL_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")
	assert.Contains(t, err.Error(), "EMAIL_API_KEY")
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOCAL_DB_MIGRATION_MODE", "truncate")
	t.Setenv("AUTH_SECRET", "short")
	t.Setenv("MQTT_QOS", "3")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MIGRATION_MODE")
	assert.Contains(t, err.Error(), "AUTH_SECRET")
	assert.Contains(t, err.Error(), "MQTT_QOS")
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("SOME_EXPIRY", "90")
	assert.Equal(t, 90*time.Second, getEnvAsDuration("SOME_EXPIRY", time.Minute))

	t.Setenv("SOME_EXPIRY", "2m")
	assert.Equal(t, 2*time.Minute, getEnvAsDuration("SOME_EXPIRY", time.Minute))

	t.Setenv("SOME_EXPIRY", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_EXPIRY", time.Minute))
}
