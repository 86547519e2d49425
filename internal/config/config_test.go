package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/speaker-registry/internal/service/registration"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

database:
  url: "postgres://localhost/speakers?sslmode=disable"

redis:
  addr: "localhost:6379"
  db: 2

storage:
  type: "Postgres"
  s3_bucket: "speaker-archive"
  aws_region: "eu-west-1"

notifications:
  enabled: true
  from_email: "talks@conf.dev"
  from_name: "Conf"

logging:
  level: debug
  redact_pii: false

rules:
  trusted_employers: ["Acme"]
  fee_tiers:
    - {high: 4, fee: 300}
    - {low: 5, fee: 0}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "postgres://localhost/speakers?sslmode=disable", cfg.Database.URL)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, "speaker-archive", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.Notifications.Region)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Logging.RedactEnabled())
	require.NoError(t, cfg.Validate())

	rules, err := cfg.Rules.ToRules()
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, rules.TrustedEmployers)
	assert.Equal(t, registration.DefaultRules().OffTopics, rules.OffTopics)
	assert.Equal(t, []registration.FeeTier{
		{Low: math.MinInt, High: 4, Fee: 300},
		{Low: 5, High: math.MaxInt, Fee: 0},
	}, rules.FeeTiers)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "logging: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, "us-east-1", cfg.Storage.AWSRegion)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.RedactEnabled())
	assert.False(t, cfg.Redis.Enabled())
	require.NoError(t, cfg.Validate())

	rules, err := cfg.Rules.ToRules()
	require.NoError(t, err)
	assert.Equal(t, registration.DefaultRules(), rules)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: memory
`)
	t.Setenv("STORAGE_TYPE", "DynamoDB")
	t.Setenv("DYNAMODB_TABLE", "speakers")
	t.Setenv("AWS_REGION", "ap-southeast-2")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("AWS_SES_ACCESS_KEY", "AKID")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, StorageDynamoDB, cfg.Storage.Type)
	assert.Equal(t, "speakers", cfg.Storage.DynamoDBTable)
	assert.Equal(t, "ap-southeast-2", cfg.Storage.AWSRegion)
	assert.Equal(t, "ap-southeast-2", cfg.Notifications.Region)
	assert.Equal(t, "postgres://env", cfg.Database.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "AKID", cfg.Notifications.AccessKey)
	assert.Equal(t, "warn", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	cfg, err := LoadFromEnv("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown storage", Config{Storage: StorageConfig{Type: "cassandra"}}},
		{"postgres without url", Config{Storage: StorageConfig{Type: StoragePostgres}}},
		{"redis without addr", Config{Storage: StorageConfig{Type: StorageRedis}}},
		{"dynamodb without table", Config{Storage: StorageConfig{Type: StorageDynamoDB}}},
		{"notifications without sender", Config{
			Storage:       StorageConfig{Type: StorageMemory},
			Notifications: NotificationConfig{Enabled: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestToRules_InvalidTiers(t *testing.T) {
	low := 3
	_, err := RulesConfig{FeeTiers: []FeeTierConfig{{Low: &low, Fee: 1}}}.ToRules()
	assert.ErrorIs(t, err, registration.ErrInvalidFeeTiers)
}

func TestServerAddr(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("SERVER_HOST", "")
	assert.Equal(t, "localhost:8080", ServerConfig{Host: "localhost", Port: 8080}.Addr())
}

func TestGetAWSProfile(t *testing.T) {
	t.Setenv("ECS_CONTAINER_METADATA_URI", "")
	t.Setenv("AWS_EXECUTION_ENV", "")
	t.Setenv("AWS_PROFILE_OVERRIDE", "")
	assert.Equal(t, "dev", StorageConfig{AWSProfile: "dev"}.GetAWSProfile())

	t.Setenv("AWS_PROFILE_OVERRIDE", "iam")
	assert.Equal(t, "", StorageConfig{AWSProfile: "dev"}.GetAWSProfile())
}
