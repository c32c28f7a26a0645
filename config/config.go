package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит все настройки приложения
type Config struct {
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Community  CommunityConfig  `mapstructure:"community"`
	Pet        PetConfig        `mapstructure:"pet"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
}

// PostgresConfig содержит настройки для PostgreSQL
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig содержит настройки для Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GRPCConfig содержит настройки для gRPC сервера
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

// MetricsConfig содержит настройки HTTP сервера метрик и проверок здоровья
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig настройки проверки токенов. Пустой секрет отключает проверку.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Enabled сообщает, включена ли проверка токенов
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// LogConfig настройки логирования
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// CommunityConfig настройки ленты сообщества
type CommunityConfig struct {
	// HideThreshold количество жалоб, после которого публикация скрывается
	HideThreshold int `mapstructure:"hide_threshold"`
	FeedLimit     int `mapstructure:"feed_limit"`
}

// PetConfig настройки питомца
type PetConfig struct {
	DefaultName string `mapstructure:"default_name"`
}

// LoadConfig загружает настройки из .env, файла конфигурации и переменных окружения
func LoadConfig() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loadFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Community.HideThreshold < 1 {
		return errors.New("community.hide_threshold must be positive")
	}
	if c.Community.FeedLimit < 1 {
		return errors.New("community.feed_limit must be positive")
	}
	if c.Resilience.CircuitBreaker.FailureThreshold < 1 {
		return errors.New("resilience.circuit_breaker.failure_threshold must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// PostgreSQL
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.username", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.dbname", "nico")
	v.SetDefault("postgres.sslmode", "disable")

	// Redis
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("grpc.port", 50051)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("community.hide_threshold", 3)
	v.SetDefault("community.feed_limit", 50)
	v.SetDefault("pet.default_name", "Nico")

	setResilienceDefaults(v)
}

func loadFromEnv(v *viper.Viper) {
	// PostgreSQL
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		v.Set("postgres.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			v.Set("postgres.port", port)
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		v.Set("postgres.username", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		v.Set("postgres.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		v.Set("postgres.dbname", dbName)
	}

	// Redis
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisPort := "6379"
		if port := os.Getenv("REDIS_PORT"); port != "" {
			redisPort = port
		}
		v.Set("redis.addr", redisHost+":"+redisPort)
	}

	if grpcPort := os.Getenv("GRPC_PORT"); grpcPort != "" {
		if port, err := strconv.Atoi(grpcPort); err == nil {
			v.Set("grpc.port", port)
		}
	}
	if metricsPort := os.Getenv("METRICS_PORT"); metricsPort != "" {
		if port, err := strconv.Atoi(metricsPort); err == nil {
			v.Set("metrics.port", port)
		}
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		v.Set("auth.jwt_secret", secret)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		v.Set("log.level", level)
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		v.Set("log.file", file)
	}
}
