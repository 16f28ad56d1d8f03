package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Identity      IdentityConfig      `mapstructure:"identity"`
	Billing       BillingConfig       `mapstructure:"billing"`
	Email         EmailConfig         `mapstructure:"email"`
	Invitation    InvitationConfig    `mapstructure:"invitation"`
	Worker        WorkerConfig        `mapstructure:"worker"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	AccessTokenSecret    string        `mapstructure:"access_token_secret" validate:"required,min=32"`
	RefreshTokenSecret   string        `mapstructure:"refresh_token_secret" validate:"required,min=32"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=1h"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" validate:"required,min=1h"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
}

// IdentityConfig selects the account store behind signup and invitation
// acceptance. "local" keeps bcrypt accounts in Postgres, "firebase" uses
// Firebase Authentication.
type IdentityConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=local firebase"`
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type BillingConfig struct {
	StripeSecretKey     string `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
}

type EmailConfig struct {
	SendGridAPIKey  string `mapstructure:"sendgrid_api_key"`
	FromEmail       string `mapstructure:"from_email"`
	FromName        string `mapstructure:"from_name"`
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

type InvitationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type WorkerConfig struct {
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
	BatchSize         int    `mapstructure:"batch_size"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name" validate:"required_if=Enabled true"`
	SamplingRate float64 `mapstructure:"sampling_rate" validate:"min=0,max=1"`
	Endpoint     string  `mapstructure:"endpoint" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	DefaultInvitationTTL     = 7 * 24 * time.Hour
	DefaultReconcileSchedule = "@every 15m"
	DefaultReconcileBatch    = 100
)

// LoadConfigFromEnv builds the configuration for container deployments where
// no config.yml is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			AccessTokenSecret:    getEnv("ACCESS_TOKEN_SECRET", ""),
			RefreshTokenSecret:   getEnv("REFRESH_TOKEN_SECRET", ""),
			AccessTokenDuration:  getEnvAsDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
			RefreshTokenDuration: getEnvAsDuration("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			BCryptCost:           getEnvAsInt("BCRYPT_COST", 12),
		},
		Identity: IdentityConfig{
			Driver:          getEnv("IDENTITY_DRIVER", "local"),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Billing: BillingConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Email: EmailConfig{
			SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
			FromEmail:       getEnv("EMAIL_FROM", ""),
			FromName:        getEnv("EMAIL_FROM_NAME", "Beacon"),
			FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
		Invitation: InvitationConfig{
			TTL: getEnvAsDuration("INVITATION_TTL", DefaultInvitationTTL),
		},
		Worker: WorkerConfig{
			ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", DefaultReconcileSchedule),
			BatchSize:         getEnvAsInt("RECONCILE_BATCH_SIZE", DefaultReconcileBatch),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled:  getEnvAsBool("METRICS_ENABLED", false),
				Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			},
			Tracing: TracingConfig{
				Enabled:      getEnvAsBool("TRACING_ENABLED", false),
				ServiceName:  getEnv("OTEL_SERVICE_NAME", "beacon"),
				SamplingRate: 1,
				Endpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Identity.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("identity config: %v", err))
	}

	if err := c.Email.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("email config: %v", err))
	}

	if err := c.Worker.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("worker config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.AccessTokenSecret) < 32 {
		return errors.New("access token secret must be at least 32 characters")
	}
	if len(c.RefreshTokenSecret) < 32 {
		return errors.New("refresh token secret must be at least 32 characters")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	if c.BCryptCost != 0 && (c.BCryptCost < 10 || c.BCryptCost > 15) {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	return nil
}

func (c *IdentityConfig) Validate() error {
	switch c.Driver {
	case "", "local":
		return nil
	case "firebase":
		if c.ProjectID == "" && c.CredentialsFile == "" {
			return errors.New("firebase driver needs project_id or credentials_file")
		}
		return nil
	default:
		return fmt.Errorf("unknown identity driver %q", c.Driver)
	}
}

func (c *EmailConfig) Validate() error {
	if c.FrontendBaseURL == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(c.FrontendBaseURL); err != nil {
		return fmt.Errorf("invalid frontend_base_url: %w", err)
	}
	return nil
}

func (c *WorkerConfig) Validate() error {
	if c.BatchSize < 0 {
		return errors.New("batch_size cannot be negative")
	}
	return nil
}

func (c *InvitationConfig) GetTTL() time.Duration {
	if c.TTL <= 0 {
		return DefaultInvitationTTL
	}
	return c.TTL
}

func (c *WorkerConfig) GetSchedule() string {
	if c.ReconcileSchedule == "" {
		return DefaultReconcileSchedule
	}
	return c.ReconcileSchedule
}

func (c *WorkerConfig) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultReconcileBatch
	}
	return c.BatchSize
}
