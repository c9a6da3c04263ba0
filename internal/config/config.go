// Package config provides configuration structures and validation for the resale
// operations services. Settings come from an optional env file, then the process
// environment, then the defaults registered in setDefaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AI routing modes accepted by AI_ROUTING_MODE.
const (
	AIModeDynamic    = "dynamic"
	AIModeOpenAI     = "openai"
	AIModePerplexity = "perplexity"
)

// Config holds the complete application configuration. Every binary loads the
// same structure and uses the sections it needs.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Storage     StorageConfig
	AI          AIConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Inventory   InventoryConfig
	Import      ImportConfig
	Jobs        JobsConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// IsProduction reports whether the application runs with APP_ENV=production.
func (a ApplicationConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int           // Port to listen on
	ShutdownTimeout    time.Duration // Grace period for server shutdown
	ReadTimeout        time.Duration // Maximum duration for reading entire request
	WriteTimeout       time.Duration // Maximum duration for writing response
	IdleTimeout        time.Duration // Maximum duration to wait for next request
	CORSAllowedOrigins []string      // Empty means all origins outside production
	MaxUploadBytes     int64         // Upper bound for supplier import uploads
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	ImportTopic       string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// BrokerList splits the comma separated KAFKA_BROKERS value.
func (k KafkaConfig) BrokerList() []string {
	return splitList(k.Brokers)
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RedisConfig contains the Redis connection used for distributed import locks.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// StorageConfig contains Google Cloud Storage settings for uploaded import files.
type StorageConfig struct {
	Bucket          string
	CredentialsFile string
	ObjectPrefix    string
}

// AIConfig contains the AI provider credentials and routing mode.
type AIConfig struct {
	RoutingMode       string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIModel       string
	OpenAISearchModel string
	PerplexityAPIKey  string
	PerplexityBaseURL string
	PerplexityModel   string
	RequestTimeout    time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// InventoryConfig holds the inventory business rules.
type InventoryConfig struct {
	DefaultMarkup         decimal.Decimal
	LowStockThreshold     int
	DefaultOrganisationID string
}

// ImportConfig holds defaults for supplier imports.
type ImportConfig struct {
	DefaultExchangeRate decimal.Decimal // USD to EUR
}

// JobsConfig holds system job limits.
type JobsConfig struct {
	MaxRetries int
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// validate performs validation of all configuration values, collecting every
// violation into a single error.
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if c.Server.MaxUploadBytes <= 0 {
		validationErrors = append(validationErrors, "SERVER_MAX_UPLOAD_BYTES must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.BrokerList()) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.ImportTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_IMPORT_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}

	// Validate Redis config, an empty address falls back to process local locks
	if c.Redis.LockTTL <= 0 {
		validationErrors = append(validationErrors, "REDIS_LOCK_TTL must be greater than 0")
	}

	// Validate AI config
	switch c.AI.RoutingMode {
	case AIModeDynamic, AIModeOpenAI, AIModePerplexity:
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("AI_ROUTING_MODE must be one of %s, %s, %s", AIModeDynamic, AIModeOpenAI, AIModePerplexity))
	}
	if c.AI.RequestTimeout <= 0 {
		validationErrors = append(validationErrors, "AI_REQUEST_TIMEOUT must be greater than 0")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate business rules
	if !c.Inventory.DefaultMarkup.IsPositive() {
		validationErrors = append(validationErrors, "INVENTORY_DEFAULT_MARKUP must be greater than 0")
	}
	if c.Inventory.LowStockThreshold < 0 {
		validationErrors = append(validationErrors, "INVENTORY_LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.Inventory.DefaultOrganisationID == "" {
		validationErrors = append(validationErrors, "INVENTORY_DEFAULT_ORGANISATION_ID is required")
	}
	if !c.Import.DefaultExchangeRate.IsPositive() {
		validationErrors = append(validationErrors, "IMPORT_DEFAULT_EXCHANGE_RATE must be greater than 0")
	}
	if c.Jobs.MaxRetries < 0 {
		validationErrors = append(validationErrors, "JOBS_MAX_RETRIES must not be negative")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
