package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	AWS     AWSConfig     `mapstructure:"aws"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Events  EventsConfig  `mapstructure:"events"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // dev, staging, production
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, file
	File   string `mapstructure:"file"`
}

type ServerConfig struct {
	Port            string          `mapstructure:"port"`
	RunLocal        bool            `mapstructure:"run_local"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"` // requests per second
	Burst   int     `mapstructure:"burst"`
}

type AWSConfig struct {
	Region           string `mapstructure:"region"`
	EndpointOverride string `mapstructure:"endpoint_override"`
}

type OrdersConfig struct {
	Table     string `mapstructure:"table"`
	UserIndex string `mapstructure:"user_index"` // GSI on user_id; empty scans
}

type EventsConfig struct {
	// Project prefixes every queue name: <project>-<topic>.
	Project         string        `mapstructure:"project"`
	Subscribe       bool          `mapstructure:"subscribe"`
	WaitTimeSeconds int32         `mapstructure:"wait_time_seconds"`
	MaxMessages     int32         `mapstructure:"max_messages"`
	ErrorBackoff    time.Duration `mapstructure:"error_backoff"`
	StopTimeout     time.Duration `mapstructure:"stop_timeout"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"` // empty disables CloudWatch metrics
}

// Load reads defaults, then the optional config file, then the environment.
// Keys map to env vars with dots replaced by underscores, e.g. ORDERS_TABLE.
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

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// names used by the existing deployment scripts
	_ = v.BindEnv("server.run_local", "RUN_LOCAL")
	_ = v.BindEnv("aws.endpoint_override", "AWS_ENDPOINT_OVERRIDE")
	_ = v.BindEnv("log.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "order-api")
	v.SetDefault("app.env", "dev")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.run_local", false)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.rate", 100)
	v.SetDefault("server.rate_limit.burst", 200)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint_override", "")

	v.SetDefault("orders.table", "Order")
	v.SetDefault("orders.user_index", "user_id-index")

	v.SetDefault("events.project", "")
	v.SetDefault("events.subscribe", true)
	v.SetDefault("events.wait_time_seconds", 20)
	v.SetDefault("events.max_messages", 10)
	v.SetDefault("events.error_backoff", "1s")
	v.SetDefault("events.stop_timeout", "30s")

	v.SetDefault("metrics.namespace", "")
}

// Validate checks the settings every entrypoint needs.
func (c *Config) Validate() error {
	var errs []error
	if c.Orders.Table == "" {
		errs = append(errs, errors.New("orders.table is required"))
	}
	if c.Events.Project == "" {
		errs = append(errs, errors.New("events.project is required"))
	}
	if c.Events.WaitTimeSeconds < 0 || c.Events.WaitTimeSeconds > 20 {
		errs = append(errs, fmt.Errorf("events.wait_time_seconds must be within 0..20, got %d", c.Events.WaitTimeSeconds))
	}
	if c.Events.MaxMessages < 1 || c.Events.MaxMessages > 10 {
		errs = append(errs, fmt.Errorf("events.max_messages must be within 1..10, got %d", c.Events.MaxMessages))
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.Rate <= 0 || c.Server.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("server.rate_limit needs a positive rate and burst"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the local HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}
