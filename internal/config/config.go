package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers understood by the composition root.
const (
	DriverDynamoDB = "dynamodb"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds application level configuration loaded from environment variables
// and an optional .env file. It is built once in main and passed down explicitly.
type Config struct {
	App       AppConfig
	Store     StoreConfig
	Processor ProcessorConfig
	Webhook   WebhookConfig
	Kafka     KafkaConfig
}

type AppConfig struct {
	Name        string
	ServerPort  string
	Debug       bool
	LogPath     string
	SwaggerHost string
}

type StoreConfig struct {
	Driver    string
	TableName string
	// Local points the DynamoDB client at DDB_ENDPOINT with dummy credentials
	// and lets the service create the table on startup.
	Local         bool
	Endpoint      string
	Region        string
	MySQLDSN      string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Timeout       time.Duration
}

type ProcessorConfig struct {
	Enabled     bool
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
	Currency    string
	SuccessURL  string
	FailureURL  string
	PendingURL  string
}

type WebhookConfig struct {
	// SimulationEnabled allows the direct {external_reference, status} payload.
	// It is an unauthenticated status override unless SimulationSecret is set
	// and must stay off in production.
	SimulationEnabled bool
	SimulationSecret  string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// StoreMode reports "local" for DynamoDB Local or the in-memory store and "remote" otherwise.
func (c StoreConfig) StoreMode() string {
	if c.Local || c.Driver == DriverMemory {
		return "local"
	}
	return "remote"
}

// Load builds Config from the environment with sensible defaults. A missing
// .env file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "payment-links")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("STORE_DRIVER", DriverDynamoDB)
	v.SetDefault("TABLE_NAME", "payment-links-local")
	v.SetDefault("DDB_LOCAL", false)
	v.SetDefault("DDB_ENDPOINT", "http://localhost:8000")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true")
	v.SetDefault("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=app sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("PROCESSOR_ENABLED", true)
	v.SetDefault("MP_BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("PROCESSOR_TIMEOUT", "10s")
	v.SetDefault("CURRENCY", "MXN")
	v.SetDefault("BACK_URL_SUCCESS", "https://example.com/success")
	v.SetDefault("BACK_URL_FAILURE", "https://example.com/failure")
	v.SetDefault("BACK_URL_PENDING", "https://example.com/pending")
	v.SetDefault("WEBHOOK_SIMULATION_ENABLED", false)
	v.SetDefault("KAFKA_TOPIC", "payment-link-events")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v.AutomaticEnv()

	return &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			ServerPort:  v.GetString("SERVER_PORT"),
			Debug:       v.GetBool("DEBUG"),
			LogPath:     v.GetString("LOG_PATH"),
			SwaggerHost: v.GetString("SWAGGER_HOST"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(v.GetString("STORE_DRIVER")),
			TableName:     v.GetString("TABLE_NAME"),
			Local:         v.GetBool("DDB_LOCAL"),
			Endpoint:      v.GetString("DDB_ENDPOINT"),
			Region:        v.GetString("AWS_REGION"),
			MySQLDSN:      v.GetString("MYSQL_DSN"),
			PostgresDSN:   v.GetString("POSTGRES_DSN"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			Timeout:       v.GetDuration("STORE_TIMEOUT"),
		},
		Processor: ProcessorConfig{
			Enabled:     v.GetBool("PROCESSOR_ENABLED"),
			AccessToken: v.GetString("MP_ACCESS_TOKEN"),
			BaseURL:     strings.TrimRight(v.GetString("MP_BASE_URL"), "/"),
			Timeout:     v.GetDuration("PROCESSOR_TIMEOUT"),
			Currency:    v.GetString("CURRENCY"),
			SuccessURL:  v.GetString("BACK_URL_SUCCESS"),
			FailureURL:  v.GetString("BACK_URL_FAILURE"),
			PendingURL:  v.GetString("BACK_URL_PENDING"),
		},
		Webhook: WebhookConfig{
			SimulationEnabled: v.GetBool("WEBHOOK_SIMULATION_ENABLED"),
			SimulationSecret:  v.GetString("WEBHOOK_SIMULATION_SECRET"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
