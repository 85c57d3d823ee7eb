package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig configures the fixed-window limiters per route group.
type RateLimitConfig struct {
	AuthRequests int           `mapstructure:"auth_requests"`
	APIRequests  int           `mapstructure:"api_requests"`
	Window       time.Duration `mapstructure:"window"`
}

type WalletConfig struct {
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type MatchingConfig struct {
	// MaxConcurrency bounds the per-request fan-out when scoring runners.
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// AnalyticsConfig drives the periodic threshold monitor.
type AnalyticsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Interval      time.Duration `mapstructure:"interval"`
	AlertCooldown time.Duration `mapstructure:"alert_cooldown"` // 0 disables de-duplication
	AdminEmail    string        `mapstructure:"admin_email"`
	Thresholds    Thresholds    `mapstructure:"thresholds"`
}

type Thresholds struct {
	WeeklyTasks    int64   `mapstructure:"weekly_tasks"`
	DailyTasks     int64   `mapstructure:"daily_tasks"`
	MonthlyRevenue float64 `mapstructure:"monthly_revenue"`
	WeeklyRevenue  float64 `mapstructure:"weekly_revenue"`
}

// GatewayConfig holds the hosted payment page credentials.
type GatewayConfig struct {
	MerchantID string `mapstructure:"merchant_id"`
	Secret     string `mapstructure:"secret"`
	ProcessURL string `mapstructure:"process_url"`
	ReturnURL  string `mapstructure:"return_url"`
	Currency   string `mapstructure:"currency"`
	Country    string `mapstructure:"country"`
	Locale     string `mapstructure:"locale"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"` // empty disables email
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: RH_.
// Nested keys use underscore: RH_DATABASE_HOST, RH_ANALYTICS_ADMIN_EMAIL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("RH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "runnerhub")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "runnerhub")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("ratelimit.auth_requests", 20)
	v.SetDefault("ratelimit.api_requests", 300)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("wallet.idempotency_ttl", "24h")

	v.SetDefault("matching.max_concurrency", 8)

	v.SetDefault("analytics.enabled", true)
	v.SetDefault("analytics.interval", "1h")
	v.SetDefault("analytics.alert_cooldown", "0s")
	v.SetDefault("analytics.admin_email", "")
	v.SetDefault("analytics.thresholds.weekly_tasks", 10)
	v.SetDefault("analytics.thresholds.daily_tasks", 5)
	v.SetDefault("analytics.thresholds.monthly_revenue", 5000)
	v.SetDefault("analytics.thresholds.weekly_revenue", 10000)

	v.SetDefault("gateway.merchant_id", "10011072130")
	v.SetDefault("gateway.secret", "secret")
	v.SetDefault("gateway.process_url", "https://secure.paygate.co.za/payweb3/process.trans")
	v.SetDefault("gateway.return_url", "http://localhost:8080/api/v1/payments/verify")
	v.SetDefault("gateway.currency", "ZAR")
	v.SetDefault("gateway.country", "ZAF")
	v.SetDefault("gateway.locale", "en-za")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@runnerhub.local")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required in release mode")
	}
	if c.Analytics.Enabled && c.Analytics.Interval <= 0 {
		return errors.New("analytics.interval must be positive")
	}
	if c.Analytics.AlertCooldown < 0 {
		return errors.New("analytics.alert_cooldown must not be negative")
	}
	if c.Matching.MaxConcurrency < 1 {
		return errors.New("matching.max_concurrency must be at least 1")
	}
	return nil
}
