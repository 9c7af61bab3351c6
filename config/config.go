package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Email     EmailConfig     `mapstructure:"email"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"ssl_mode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL builds the postgres URL form used by golang-migrate
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether enough is configured to attempt a connection
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Host != ""
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LLMConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver     string        `mapstructure:"driver"`
	Bucket     string        `mapstructure:"bucket"`
	Region     string        `mapstructure:"region"`
	Endpoint   string        `mapstructure:"endpoint"`
	AccessKey  string        `mapstructure:"access_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	UseSSL     bool          `mapstructure:"use_ssl"`
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	From         string `mapstructure:"from"`
	FromName     string `mapstructure:"from_name"`
	FeedbackTo   string `mapstructure:"feedback_to"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type RateLimitConfig struct {
	Window            time.Duration `mapstructure:"window"`
	AuthLimit         int           `mapstructure:"auth_limit"`
	ChatLimit         int           `mapstructure:"chat_limit"`
	RecipeCreateLimit int           `mapstructure:"recipe_create_limit"`
}

// envBindings maps config keys to the environment variables that set them
var envBindings = map[string]string{
	"server.host":                    "SERVER_HOST",
	"server.port":                    "SERVER_PORT",
	"server.read_timeout":            "SERVER_READ_TIMEOUT",
	"server.write_timeout":           "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout":        "SERVER_SHUTDOWN_TIMEOUT",
	"server.cors_origins":            "CORS_ORIGINS",
	"database.driver":                "DB_DRIVER",
	"database.host":                  "DB_HOST",
	"database.port":                  "DB_PORT",
	"database.user":                  "DB_USER",
	"database.password":              "DB_PASSWORD",
	"database.name":                  "DB_NAME",
	"database.ssl_mode":              "DB_SSL_MODE",
	"database.sqlite_path":           "DB_SQLITE_PATH",
	"redis.url":                      "REDIS_URL",
	"redis.host":                     "REDIS_HOST",
	"redis.port":                     "REDIS_PORT",
	"redis.password":                 "REDIS_PASSWORD",
	"redis.db":                       "REDIS_DB",
	"jwt.secret":                     "JWT_SECRET",
	"jwt.ttl":                        "JWT_TTL",
	"llm.enabled":                    "LLM_ENABLED",
	"llm.base_url":                   "LLM_BASE_URL",
	"llm.api_key":                    "LLM_API_KEY",
	"llm.model":                      "LLM_MODEL",
	"llm.timeout":                    "LLM_TIMEOUT",
	"storage.driver":                 "STORAGE_DRIVER",
	"storage.bucket":                 "STORAGE_BUCKET",
	"storage.region":                 "AWS_REGION",
	"storage.endpoint":               "STORAGE_ENDPOINT",
	"storage.access_key":             "STORAGE_ACCESS_KEY",
	"storage.secret_key":             "STORAGE_SECRET_KEY",
	"storage.use_ssl":                "STORAGE_USE_SSL",
	"storage.presign_ttl":            "STORAGE_PRESIGN_TTL",
	"email.smtp_host":                "SMTP_HOST",
	"email.smtp_port":                "SMTP_PORT",
	"email.smtp_username":            "SMTP_USERNAME",
	"email.smtp_password":            "SMTP_PASSWORD",
	"email.from":                     "EMAIL_FROM",
	"email.from_name":                "EMAIL_FROM_NAME",
	"email.feedback_to":              "ADMIN_EMAIL",
	"log.level":                      "LOG_LEVEL",
	"log.format":                     "LOG_FORMAT",
	"metrics.enabled":                "METRICS_ENABLED",
	"metrics.path":                   "METRICS_PATH",
	"rate_limit.window":              "RATE_LIMIT_WINDOW",
	"rate_limit.auth_limit":          "RATE_LIMIT_AUTH",
	"rate_limit.chat_limit":          "RATE_LIMIT_CHAT",
	"rate_limit.recipe_create_limit": "RATE_LIMIT_RECIPE_CREATE",
}

// secretBindings maps Docker secret file names to config keys.
// A secret file wins over the environment variable for the same key.
var secretBindings = map[string]string{
	"db_user":            "database.user",
	"db_password":        "database.password",
	"jwt_secret":         "jwt.secret",
	"redis_password":     "redis.password",
	"redis_url":          "redis.url",
	"llm_api_key":        "llm.api_key",
	"storage_access_key": "storage.access_key",
	"storage_secret_key": "storage.secret_key",
	"smtp_password":      "email.smtp_password",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "recipebox.db")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.base_url", "https://api.deepseek.com/v1/chat/completions")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "deepseek-chat")
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.presign_ttl", 24*time.Hour)

	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", "587")
	v.SetDefault("email.smtp_username", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from", "noreply@recipebox.local")
	v.SetDefault("email.from_name", "Recipebox")
	v.SetDefault("email.feedback_to", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.window", time.Hour)
	v.SetDefault("rate_limit.auth_limit", 20)
	v.SetDefault("rate_limit.chat_limit", 60)
	v.SetDefault("rate_limit.recipe_create_limit", 50)
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	// A .env file is a development convenience only
	if env == Development {
		if _, err := os.Stat(".env"); err == nil {
			if err := godotenv.Load(); err != nil {
				return nil, fmt.Errorf("failed to load .env: %w", err)
			}
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, name := range envBindings {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}
	if env != CI {
		loadSecrets(v, secretsDir())
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Environment = env
	if env == Development && os.Getenv("LOG_FORMAT") == "" {
		cfg.Log.Format = "console"
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadSecrets overrides keys with the contents of any Docker secret files present
func loadSecrets(v *viper.Viper, dir string) {
	for name, key := range secretBindings {
		if value := readSecret(dir, name); value != "" {
			v.Set(key, value)
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
