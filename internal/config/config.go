package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DeploymentMode string

const (
	ModeLocal  DeploymentMode = "local"
	ModeAPI    DeploymentMode = "api"
	ModeLambda DeploymentMode = "lambda"
)

const (
	EnvPrefix       = "DEVICEDESK"
	LogLevelDebug   = "debug"
	defaultTimezone = "UTC"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Email      EmailConfig      `mapstructure:"email"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Profiling  ProfilingConfig  `mapstructure:"profiling"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Import     ImportConfig     `mapstructure:"import"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
}

type DeploymentConfig struct {
	Mode     DeploymentMode `mapstructure:"mode"`
	Timezone string         `mapstructure:"timezone"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimitPerSecond is the sustained request rate allowed per tenant; 0 disables limiting.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst"`
	MetricsEnabled     bool    `mapstructure:"metrics_enabled"`
}

type LoggingConfig struct {
	Level          string `mapstructure:"level"`
	DBLevel        string `mapstructure:"db_level"`
	FluentdEnabled bool   `mapstructure:"fluentd_enabled"`
	FluentdHost    string `mapstructure:"fluentd_host"`
	FluentdPort    int    `mapstructure:"fluentd_port"`
}

type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	// ConnectRetryMax bounds how long startup keeps retrying an unreachable database.
	ConnectRetryMax time.Duration `mapstructure:"connect_retry_max"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    string        `mapstructure:"type"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	UseTLS   bool          `mapstructure:"use_tls"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	ResendAPIKey string        `mapstructure:"resend_api_key"`
	FromAddress  string        `mapstructure:"from_address"`
	ReplyTo      string        `mapstructure:"reply_to"`
	RetryMax     int           `mapstructure:"retry_max"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// ProfilingConfig enables continuous profiling through Pyroscope.
type ProfilingConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ServerAddress string `mapstructure:"server_address"`
	AuthToken     string `mapstructure:"auth_token"`
}

type AlertsConfig struct {
	RenewalWindowDays int      `mapstructure:"renewal_window_days"`
	EndingSoonDays    int      `mapstructure:"ending_soon_days"`
	MaintenanceDays   int      `mapstructure:"maintenance_days"`
	DigestRecipients  []string `mapstructure:"digest_recipients"`
	DigestMaxItems    int      `mapstructure:"digest_max_items"`
}

// Thresholds converts the config section into the query parameters.
func (a AlertsConfig) Thresholds() types.AlertThresholds {
	return types.AlertThresholds{
		RenewalWindowDays: a.RenewalWindowDays,
		EndingSoonDays:    a.EndingSoonDays,
		MaintenanceDays:   a.MaintenanceDays,
	}
}

type ImportConfig struct {
	MaxRows     int   `mapstructure:"max_rows"`
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

type DashboardConfig struct {
	TopN int `mapstructure:"top_n"`
}

// NewConfig loads configuration from config.yaml (if present), the process
// environment and a local .env file.
func NewConfig() (*Configuration, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetDefaultConfig returns the defaults without reading files or environment.
func GetDefaultConfig() *Configuration {
	v := viper.New()
	setDefaults(v)
	var cfg Configuration
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(ModeLocal))
	v.SetDefault("deployment.timezone", defaultTimezone)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit_per_second", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.metrics_enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.db_level", "info")
	v.SetDefault("logging.fluentd_enabled", false)
	v.SetDefault("logging.fluentd_port", 24224)

	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("postgres.connect_timeout", 5*time.Second)
	v.SetDefault("postgres.connect_retry_max", 30*time.Second)

	v.SetDefault("auth.enabled", true)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("cache.ttl", time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", 5*time.Second)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.retry_max", 3)
	v.SetDefault("email.timeout", 10*time.Second)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("profiling.enabled", false)

	v.SetDefault("alerts.renewal_window_days", 7)
	v.SetDefault("alerts.ending_soon_days", 30)
	v.SetDefault("alerts.maintenance_days", 14)
	v.SetDefault("alerts.digest_max_items", 50)

	v.SetDefault("import.max_rows", 5000)
	v.SetDefault("import.max_file_size", int64(5<<20))

	v.SetDefault("dashboard.top_n", types.DefaultDashboardTopN)
}

// Validate checks the fields the server cannot start without.
func (c *Configuration) Validate() error {
	if c.Deployment.Mode == ModeAPI && c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required in api mode")
	}
	if c.Auth.Enabled && c.Deployment.Mode == ModeAPI && c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required when auth is enabled")
	}
	if c.Email.Enabled && (c.Email.ResendAPIKey == "" || c.Email.FromAddress == "") {
		return fmt.Errorf("email.resend_api_key and email.from_address are required when email is enabled")
	}
	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}
	if err := types.ValidateTimezone(c.Deployment.Timezone); err != nil {
		return fmt.Errorf("invalid deployment.timezone %q: %w", c.Deployment.Timezone, err)
	}
	if c.Alerts.RenewalWindowDays < 0 || c.Alerts.EndingSoonDays < 0 || c.Alerts.MaintenanceDays < 0 {
		return fmt.Errorf("alert thresholds must be >= 0")
	}
	return nil
}
