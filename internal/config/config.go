package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Bot      BotConfig      `yaml:"bot"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	GinMode       string `yaml:"gin_mode"`
	SessionSecret string `yaml:"-"` // env-only
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql, postgres or sqlite
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // env-only
	Name     string `yaml:"name"`
	Path     string `yaml:"path"` // sqlite only
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"-"` // env-only
	DB       int    `yaml:"db"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type BotConfig struct {
	Token          string   `yaml:"-"` // env-only
	APIURL         string   `yaml:"api_url"`
	PollTimeout    Duration `yaml:"poll_timeout"`
	SessionTTL     Duration `yaml:"session_ttl"`
	SessionBackend string   `yaml:"session_backend"` // memory or redis
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type OpenAIConfig struct {
	APIKey string `yaml:"-"` // env-only
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load builds the configuration with precedence: defaults → YAML file → .env → environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := newDefaults()

	if err := loadYAMLFile(cfg, getEnv("CONFIG_PATH", "config/config.yaml")); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			GinMode:       "debug",
			SessionSecret: "default-secret-key-change-me",
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			User:     "goaluser",
			Password: "goalpassword",
			Name:     "goal_boards",
			Path:     "goal_boards.db",
			LogLevel: "warn",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Bot: BotConfig{
			APIURL:         "https://api.telegram.org",
			PollTimeout:    Duration(30 * time.Second),
			SessionTTL:     Duration(30 * time.Minute),
			SessionBackend: "redis",
		},
		AMQP: AMQPConfig{
			Exchange: "goal_events",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	cfg.Server.SessionSecret = getEnv("SESSION_SECRET", cfg.Server.SessionSecret)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.LogLevel = getEnv("DB_LOG_LEVEL", cfg.Database.LogLevel)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Bot.Token = getEnv("BOT_TOKEN", cfg.Bot.Token)
	cfg.Bot.APIURL = getEnv("BOT_API_URL", cfg.Bot.APIURL)
	cfg.Bot.SessionBackend = getEnv("BOT_SESSION_BACKEND", cfg.Bot.SessionBackend)
	cfg.Bot.PollTimeout = getEnvDuration("BOT_POLL_TIMEOUT", cfg.Bot.PollTimeout)
	cfg.Bot.SessionTTL = getEnvDuration("BOT_SESSION_TTL", cfg.Bot.SessionTTL)

	cfg.AMQP.URL = getEnv("AMQP_URL", cfg.AMQP.URL)
	cfg.AMQP.Exchange = getEnv("AMQP_EXCHANGE", cfg.AMQP.Exchange)

	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Bot.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported bot session backend %q", c.Bot.SessionBackend)
	}
	if time.Duration(c.Bot.SessionTTL) <= 0 {
		return errors.New("bot session_ttl must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue Duration) Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return Duration(parsed)
}
