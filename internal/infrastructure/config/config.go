package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the wallet service.
type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Oracle      OracleConfig    `mapstructure:"oracle"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Name         string `mapstructure:"name"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// OracleConfig points at the currency oracle that validates client
// currencies.
type OracleConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Timeout     int    `mapstructure:"timeout"`
	CacheTTL    int    `mapstructure:"cache_ttl"`
	MaxRetries  int    `mapstructure:"max_retries"`
	BreakerName string `mapstructure:"breaker_name"`
}

type TelemetryConfig struct {
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPURL        string  `mapstructure:"otlp_url"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from an optional config.yaml plus environment
// variables, with environment taking precedence.
func Load() (*Config, error) {
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.name", "wallet-server")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "wallet")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	viper.SetDefault("oracle.base_url", "http://localhost:8081")
	viper.SetDefault("oracle.timeout", 5)
	viper.SetDefault("oracle.cache_ttl", 60)
	viper.SetDefault("oracle.max_retries", 3)
	viper.SetDefault("oracle.breaker_name", "currency-oracle")

	viper.SetDefault("telemetry.tracing_enabled", false)
	viper.SetDefault("telemetry.otlp_url", "localhost:4317")
	viper.SetDefault("telemetry.sample_rate", 1.0)
}

func overrideFromEnv() {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		viper.Set("environment", v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		viper.Set("log_level", v)
	}
	if v := os.Getenv("SERVICE_NAME"); v != "" {
		viper.Set("server.name", v)
	}
	if v := os.Getenv("SERVICE_HOST"); v != "" {
		viper.Set("server.host", v)
	}
	if v := os.Getenv("SERVICE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			viper.Set("server.port", port)
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		viper.Set("database.url", v)
	}
	if v := os.Getenv("WALLET_DB_HOST"); v != "" {
		viper.Set("database.host", v)
	}
	if v := os.Getenv("WALLET_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			viper.Set("database.port", port)
		}
	}
	if v := os.Getenv("WALLET_DB_USER"); v != "" {
		viper.Set("database.user", v)
	}
	if v := os.Getenv("WALLET_DB_PASSWORD"); v != "" {
		viper.Set("database.password", v)
	}
	if v := os.Getenv("WALLET_DB_NAME"); v != "" {
		viper.Set("database.name", v)
	}
	if v := os.Getenv("WALLET_DB_MAX_CONNECTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			viper.Set("database.max_open_conns", n)
		}
	}
	if v := os.Getenv("WALLET_DB_MIN_CONNECTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			viper.Set("database.max_idle_conns", n)
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		viper.Set("redis.host", v)
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			viper.Set("redis.port", port)
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		viper.Set("redis.password", v)
	}
	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		viper.Set("oracle.base_url", v)
	}
	if v := os.Getenv("OTLP_URL"); v != "" {
		viper.Set("telemetry.otlp_url", v)
		viper.Set("telemetry.tracing_enabled", true)
	}
}

func validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if config.Oracle.BaseURL == "" {
		return fmt.Errorf("oracle base url is required")
	}
	return nil
}

// RedisAddr returns host:port for the redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
