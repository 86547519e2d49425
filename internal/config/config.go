package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/speaker-registry/internal/service/registration"
)

// Storage backends selectable with storage.type.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageDynamoDB = "dynamodb"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Storage       StorageConfig      `yaml:"storage"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	Rules         RulesConfig        `yaml:"rules"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr is host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RedisConfig is used by the redis store and the migration lock.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// StorageConfig selects the speaker store and the optional S3 archive.
type StorageConfig struct {
	Type          string `yaml:"type"`
	S3Bucket      string `yaml:"s3_bucket"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, honouring AWS_PROFILE_OVERRIDE and
// falling back to the IAM role when running on ECS or Lambda.
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// NotificationConfig controls the SES confirmation email.
type NotificationConfig struct {
	Enabled         bool   `yaml:"enabled"`
	FromEmail       string `yaml:"from_email"`
	FromName        string `yaml:"from_name"`
	Region          string `yaml:"region"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	SubjectTemplate string `yaml:"subject_template"`
	BodyTemplate    string `yaml:"body_template"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// RedactEnabled defaults to true when redact_pii is not set.
func (c LoggingConfig) RedactEnabled() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// RulesConfig overrides the registration reference data. Empty lists keep
// the defaults.
type RulesConfig struct {
	OffTopics        []string        `yaml:"off_topics"`
	BlockedDomains   []string        `yaml:"blocked_domains"`
	TrustedEmployers []string        `yaml:"trusted_employers"`
	FeeTiers         []FeeTierConfig `yaml:"fee_tiers"`
}

// FeeTierConfig is one fee tier. An omitted bound is unbounded.
type FeeTierConfig struct {
	Low  *int `yaml:"low"`
	High *int `yaml:"high"`
	Fee  int  `yaml:"fee"`
}

// ToRules merges the overrides onto registration.DefaultRules and validates
// the result.
func (c RulesConfig) ToRules() (registration.Rules, error) {
	rules := registration.DefaultRules()
	if len(c.OffTopics) > 0 {
		rules.OffTopics = c.OffTopics
	}
	if len(c.BlockedDomains) > 0 {
		rules.BlockedDomains = c.BlockedDomains
	}
	if len(c.TrustedEmployers) > 0 {
		rules.TrustedEmployers = c.TrustedEmployers
	}
	if len(c.FeeTiers) > 0 {
		rules.FeeTiers = make([]registration.FeeTier, len(c.FeeTiers))
		for i, t := range c.FeeTiers {
			tier := registration.FeeTier{Low: math.MinInt, High: math.MaxInt, Fee: t.Fee}
			if t.Low != nil {
				tier.Low = *t.Low
			}
			if t.High != nil {
				tier.High = *t.High
			}
			rules.FeeTiers[i] = tier
		}
	}
	if err := rules.Validate(); err != nil {
		return registration.Rules{}, fmt.Errorf("rules: %w", err)
	}
	return rules, nil
}

// Load reads the YAML file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with only defaults, for running without a
// config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = StorageMemory
	}
	cfg.Storage.Type = strings.ToLower(cfg.Storage.Type)
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
	if cfg.Notifications.Region == "" {
		cfg.Notifications.Region = cfg.Storage.AWSRegion
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks that the selected storage backend has what it needs.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Type {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Database.URL == "" {
			return fmt.Errorf("storage type %q requires database.url", cfg.Storage.Type)
		}
	case StorageRedis:
		if !cfg.Redis.Enabled() {
			return fmt.Errorf("storage type %q requires redis.addr", cfg.Storage.Type)
		}
	case StorageDynamoDB:
		if cfg.Storage.DynamoDBTable == "" {
			return fmt.Errorf("storage type %q requires storage.dynamodb_table", cfg.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.FromEmail == "" {
		return fmt.Errorf("notifications.enabled requires notifications.from_email")
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides. An
// empty path skips the file and starts from defaults.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	// Override with environment variables if present
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = strings.ToLower(storageType)
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Storage.S3Bucket = bucket
	}
	if table := os.Getenv("DYNAMODB_TABLE"); table != "" {
		cfg.Storage.DynamoDBTable = table
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.Storage.AWSRegion = region
		cfg.Notifications.Region = region
	}
	if accessKey := os.Getenv("AWS_SES_ACCESS_KEY"); accessKey != "" {
		cfg.Notifications.AccessKey = accessKey
	}
	if secretKey := os.Getenv("AWS_SES_SECRET_KEY"); secretKey != "" {
		cfg.Notifications.SecretKey = secretKey
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
