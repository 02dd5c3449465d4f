package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Mail     MailConfig     `yaml:"mail"`
	Logs     LogsConfig     `yaml:"logs"`
	I18n     I18nConfig     `yaml:"i18n"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Environment    string        `yaml:"environment"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type SecurityConfig struct {
	JWTSecret      string          `yaml:"jwt_secret"`
	JWTExpiryHours int             `yaml:"jwt_expiry_hours"`
	NonceSecret    string          `yaml:"nonce_secret"`
	NonceLifetime  time.Duration   `yaml:"nonce_lifetime"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	FloodLimit     FloodConfig     `yaml:"flood_limit"`
}

// RateLimitConfig bounds accepted subscriptions per submitter IP.
type RateLimitConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Window      time.Duration `yaml:"window"`
}

// FloodConfig bounds raw POST traffic per IP on the public routes.
type FloodConfig struct {
	Algorithm         string `yaml:"algorithm"` // "fixed_window" "sliding_window"
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type MailConfig struct {
	Provider    string        `yaml:"provider"` // "smtp" "resend"
	FromName    string        `yaml:"from_name"`
	FromAddress string        `yaml:"from_address"`
	Pause       time.Duration `yaml:"pause"`
	SMTP        SMTPConfig    `yaml:"smtp"`
	Resend      ResendConfig  `yaml:"resend"`
	Breaker     BreakerConfig `yaml:"breaker"`
}

type SMTPConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

type ResendConfig struct {
	APIKey string `yaml:"api_key"`
}

type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LogsConfig struct {
	BulkEmailCap int `yaml:"bulk_email_cap"`
	ActivityCap  int `yaml:"activity_cap"`
}

type I18nConfig struct {
	DefaultLanguage string `yaml:"default_language"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func Load(path string) (*Config, error) {
	var config Config

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Env-only deployments are allowed
	default:
		return nil, err
	}

	config.applyEnv()
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ML_ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}
	if v := os.Getenv("ML_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ML_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("ML_REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("ML_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("ML_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ML_JWT_SECRET"); v != "" {
		c.Security.JWTSecret = v
	}
	if v := os.Getenv("ML_NONCE_SECRET"); v != "" {
		c.Security.NonceSecret = v
	}
	if v := os.Getenv("ML_SMTP_PASSWORD"); v != "" {
		c.Mail.SMTP.Password = v
	}
	if v := os.Getenv("ML_RESEND_API_KEY"); v != "" {
		c.Mail.Resend.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "production"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	// Bulk sends block the request for the whole loop
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 30 * time.Minute
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Security.JWTExpiryHours <= 0 {
		c.Security.JWTExpiryHours = 24
	}
	if c.Security.NonceLifetime <= 0 {
		c.Security.NonceLifetime = 24 * time.Hour
	}
	if c.Security.RateLimit.MaxAttempts <= 0 {
		c.Security.RateLimit.MaxAttempts = 3
	}
	if c.Security.RateLimit.Window <= 0 {
		c.Security.RateLimit.Window = time.Hour
	}
	if c.Security.FloodLimit.Algorithm == "" {
		c.Security.FloodLimit.Algorithm = "fixed_window"
	}
	if c.Security.FloodLimit.RequestsPerMinute <= 0 {
		c.Security.FloodLimit.RequestsPerMinute = 30
	}
	if c.Mail.Provider == "" {
		c.Mail.Provider = "smtp"
	}
	if c.Mail.FromName == "" {
		c.Mail.FromName = "Mailing Lists"
	}
	if c.Mail.Pause <= 0 {
		c.Mail.Pause = 100 * time.Millisecond
	}
	if c.Mail.SMTP.Port == 0 {
		c.Mail.SMTP.Port = 587
	}
	if c.Mail.Breaker.MaxFailures <= 0 {
		c.Mail.Breaker.MaxFailures = 5
	}
	if c.Mail.Breaker.Timeout <= 0 {
		c.Mail.Breaker.Timeout = 30 * time.Second
	}
	if c.Logs.BulkEmailCap <= 0 {
		c.Logs.BulkEmailCap = 100
	}
	if c.Logs.ActivityCap <= 0 {
		c.Logs.ActivityCap = 500
	}
	if c.I18n.DefaultLanguage == "" {
		c.I18n.DefaultLanguage = "gl"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "mailinglists.subscriptions"
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	}
	if c.Security.NonceSecret == "" {
		errs = append(errs, errors.New("security.nonce_secret is required"))
	}

	switch c.Mail.Provider {
	case "smtp":
		if c.Mail.SMTP.Host == "" {
			errs = append(errs, errors.New("mail.smtp.host is required for the smtp provider"))
		}
	case "resend":
		if c.Mail.Resend.APIKey == "" {
			errs = append(errs, errors.New("mail.resend.api_key is required for the resend provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail provider %q", c.Mail.Provider))
	}

	if c.Mail.FromAddress == "" {
		errs = append(errs, errors.New("mail.from_address is required"))
	}

	return errors.Join(errs...)
}
