package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ListingsSource string

const (
	ListingsFromMemory   ListingsSource = "memory"
	ListingsFromPostgres ListingsSource = "postgres"
)

type TokenStoreKind string

const (
	TokenStoreMemory TokenStoreKind = "memory"
	TokenStoreRedis  TokenStoreKind = "redis"
)

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

type ListingsConfig struct {
	Source   ListingsSource
	SeedPath string
	// Latency is the artificial delay of the in-memory source.
	Latency time.Duration
}

type DBConfig struct {
	URL      string
	MaxConns int32
}

// AIConfig points at the remote text generator. An empty URL means only the
// built-in fallback answers.
type AIConfig struct {
	ServiceURL string
	APIKey     string
	Timeout    time.Duration
}

type MapConfig struct {
	EnvToken  string
	DemoToken string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type RESTConfig struct {
	Port           string
	AllowedOrigins []string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	AppName      string
	Rest         RESTConfig
	StdoutLogger StdoutLogConfig
	FluentBit    FluentBitConfig
	Listings     ListingsConfig
	Database     DBConfig
	AI           AIConfig
	Map          MapConfig
	TokenStore   TokenStoreKind
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
}

// LoadConfig reads a .env file when present, then the environment.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using environment variables.\n", envPath, err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables and defaults.
func FromEnv() *AppConfig {
	cfg := &AppConfig{
		AppName: getEnvAsString("APP_NAME", "vantage-service"),
		Rest: RESTConfig{
			Port:           getEnvAsString("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		StdoutLogger: StdoutLogConfig{
			Level: getEnvAsString("STDOUT_LOG_LEVEL", "debug"),
		},
		Listings: ListingsConfig{
			Source:   ListingsSource(strings.ToLower(getEnvAsString("LISTINGS_SOURCE", string(ListingsFromMemory)))),
			SeedPath: getEnvAsString("LISTINGS_SEED_PATH", ""),
			Latency:  time.Duration(getEnvAsInt("LISTINGS_LATENCY_MS", 0)) * time.Millisecond,
		},
		Database: DBConfig{
			URL:      os.Getenv("DATABASE_URL"),
			MaxConns: int32(getEnvAsInt("DATABASE_MAX_CONNS", 0)),
		},
		AI: AIConfig{
			ServiceURL: getEnvAsString("AI_SERVICE_URL", ""),
			APIKey:     getEnvAsString("AI_API_KEY", ""),
			Timeout:    time.Duration(getEnvAsInt("AI_TIMEOUT_MS", 15000)) * time.Millisecond,
		},
		Map: MapConfig{
			EnvToken:  getEnvAsString("MAPBOX_TOKEN", ""),
			DemoToken: getEnvAsString("DEMO_MAPBOX_TOKEN", ""),
		},
		TokenStore: TokenStoreKind(strings.ToLower(getEnvAsString("TOKEN_STORE", string(TokenStoreMemory)))),
		Redis: RedisConfig{
			Addr:     getEnvAsString("REDIS_ADDR", ""),
			Password: getEnvAsString("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			Enabled: getEnvAsBool("RABBITMQ_ENABLED", false),
			URL:     getEnvAsString("RABBITMQ_URL", ""),
		},
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	return cfg
}

// Validate checks that every enabled backend has what it needs to connect.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.Listings.Source {
	case ListingsFromMemory:
		if c.Listings.Latency < 0 {
			errs = append(errs, errors.New("LISTINGS_LATENCY_MS must not be negative"))
		}
	case ListingsFromPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is required when LISTINGS_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LISTINGS_SOURCE %q (want memory or postgres)", c.Listings.Source))
	}

	switch c.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR environment variable is required when TOKEN_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TOKEN_STORE %q (want memory or redis)", c.TokenStore))
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		errs = append(errs, errors.New("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED=true"))
	}
	if c.AI.ServiceURL != "" && c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT_MS must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(strings.TrimSpace(valStr))
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
