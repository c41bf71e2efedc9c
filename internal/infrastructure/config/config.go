package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configErr  error
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // auto (default), alter, drop

	// Server
	ServerPort    string
	PublicBaseURL string

	// Redis response cache; disabled when RedisHost is empty
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Sessions
	JWTSecretKey string
	SessionTTL   time.Duration

	// Object storage
	S3Bucket            string
	S3Region            string
	S3Endpoint          string // LocalStack / MinIO override
	S3AccessKeyID       string
	S3SecretAccessKey   string
	UploadURLExpiry     time.Duration
	DownloadURLExpiry   time.Duration
	MaxUploadSizeBytes  int64
	AllowedUploadFormat string

	// Hosted search
	SearchAppID        string
	SearchAPIKey       string
	SearchIndex        string
	SearchBaseURL      string
	SearchSyncInterval time.Duration

	// Outbound email
	EmailAPIKey  string
	EmailFrom    string
	EmailBaseURL string

	// MQTT display events; disabled when MQTTBrokerURL is empty
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTQoS         int
	MQTTTopicPrefix string

	// Logging
	LogLevel  string
	LogFormat string
	LogDir    string
}

// LoadConfig loads config from environment variables based on ENV_TYPE and validates it.
func LoadConfig() (*Config, error) {
	envType := strings.ToUpper(getEnv("ENV_TYPE", "LOCAL"))
	prefix := ""

	switch envType {
	case "LOCAL":
		prefix = "LOCAL_"
	case "SERVER":
		prefix = "SERVER_"
	default:
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	cfg := &Config{
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:          getEnv(prefix+"DB_HOST", getEnv("DB_HOST", "")),
		DBUser:          getEnv(prefix+"DB_USER", getEnv("DB_USER", "")),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", getEnv("DB_PASSWORD", "")),
		DBName:          getEnv(prefix+"DB_NAME", getEnv("DB_NAME", "")),
		DBPort:          getEnv(prefix+"DB_PORT", getEnv("DB_PORT", "3306")),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", getEnv("DB_MIGRATION_MODE", "auto")),

		ServerPort:    getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		RedisHost:     getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "")),
		RedisPort:     getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecretKey: getEnv("AUTH_SECRET", ""),
		SessionTTL:   getEnvAsDuration("AUTH_SESSION_TTL", 30*24*time.Hour),

		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Region:            getEnv("S3_REGION", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		UploadURLExpiry:     getEnvAsDuration("S3_UPLOAD_URL_EXPIRY", 60*time.Second),
		DownloadURLExpiry:   getEnvAsDuration("S3_DOWNLOAD_URL_EXPIRY", 3600*time.Second),
		MaxUploadSizeBytes:  int64(getEnvAsInt("MAX_UPLOAD_SIZE_BYTES", 1<<20)),
		AllowedUploadFormat: getEnv("ALLOWED_UPLOAD_FORMAT", "application/pdf"),

		SearchAppID:        getEnv("SEARCH_APP_ID", ""),
		SearchAPIKey:       getEnv("SEARCH_API_KEY", ""),
		SearchIndex:        getEnv("SEARCH_INDEX", "notices"),
		SearchBaseURL:      getEnv("SEARCH_BASE_URL", ""),
		SearchSyncInterval: getEnvAsDuration("SEARCH_SYNC_INTERVAL", 30*time.Second),

		EmailAPIKey:  getEnv("EMAIL_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", ""),
		EmailBaseURL: getEnv("EMAIL_BASE_URL", "https://api.resend.com"),

		MQTTBrokerURL:   getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "noticeboard_server"),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:         getEnvAsInt("MQTT_QOS", 1),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "noticeboard"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogDir:    getEnv("LOG_DIR", ""),
	}

	if cfg.SearchBaseURL == "" && cfg.SearchAppID != "" {
		cfg.SearchBaseURL = "https://" + cfg.SearchAppID + ".algolia.net"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or malformed value at once.
func (c *Config) Validate() error {
	var errs []error

	required := map[string]string{
		"DB_HOST":        c.DBHost,
		"DB_USER":        c.DBUser,
		"DB_NAME":        c.DBName,
		"AUTH_SECRET":    c.JWTSecretKey,
		"S3_BUCKET":      c.S3Bucket,
		"S3_REGION":      c.S3Region,
		"SEARCH_APP_ID":  c.SearchAppID,
		"SEARCH_API_KEY": c.SearchAPIKey,
		"EMAIL_API_KEY":  c.EmailAPIKey,
		"EMAIL_FROM":     c.EmailFrom,
	}
	for _, key := range sortedKeys(required) {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("required environment variable %s is not set", key))
		}
	}

	switch c.DBMigrationMode {
	case "auto", "alter", "drop":
	default:
		errs = append(errs, fmt.Errorf("DB_MIGRATION_MODE must be auto, alter or drop, got %q", c.DBMigrationMode))
	}

	if _, err := strconv.Atoi(c.DBPort); err != nil {
		errs = append(errs, fmt.Errorf("DB_PORT must be numeric, got %q", c.DBPort))
	}
	if len(c.JWTSecretKey) > 0 && len(c.JWTSecretKey) < 16 {
		errs = append(errs, errors.New("AUTH_SECRET must be at least 16 characters"))
	}
	if c.EmailFrom != "" && !strings.Contains(c.EmailFrom, "@") {
		errs = append(errs, fmt.Errorf("EMAIL_FROM must be an email address, got %q", c.EmailFrom))
	}
	if c.UploadURLExpiry <= 0 || c.DownloadURLExpiry <= 0 {
		errs = append(errs, errors.New("signed URL expiries must be positive"))
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		errs = append(errs, fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", c.MQTTQoS))
	}

	return errors.Join(errs...)
}

// GetConfig returns the application configuration as a singleton
func GetConfig() (*Config, error) {
	configOnce.Do(func() {
		config, configErr = LoadConfig()
	})
	return config, configErr
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=UTC"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// RedisEnabled reports whether a shared response cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// IsLocal reports whether the service runs with the LOCAL profile.
func (c *Config) IsLocal() bool {
	return c.EnvType == "LOCAL"
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("3600").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
