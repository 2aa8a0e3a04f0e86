package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`

	// API de SaludHogar (upstream)
	APIBaseURL        string        `mapstructure:"API_BASE_URL"`
	APITimeout        time.Duration `mapstructure:"API_TIMEOUT"`
	APIRateLimitRPS   float64       `mapstructure:"API_RATE_LIMIT_RPS"`
	APIRateLimitBurst int           `mapstructure:"API_RATE_LIMIT_BURST"`

	// Credenciales del agente de recordatorios (opcionales)
	AgentEmail    string `mapstructure:"AGENT_EMAIL"`
	AgentPassword string `mapstructure:"AGENT_PASSWORD"`

	DBDSN    string        `mapstructure:"DB_DSN"`
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	NATSURL     string `mapstructure:"NATS_URL"`
	NATSSubject string `mapstructure:"NATS_SUBJECT"`

	ReminderCron         string        `mapstructure:"REMINDER_CRON"`
	ReminderWindow       time.Duration `mapstructure:"REMINDER_WINDOW"`
	AppointmentLookahead time.Duration `mapstructure:"APPOINTMENT_LOOKAHEAD"`
	Timezone             string        `mapstructure:"TIMEZONE"`

	SwaggerEnabled bool `mapstructure:"SWAGGER_ENABLED"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
	"API_BASE_URL", "API_TIMEOUT", "API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST",
	"AGENT_EMAIL", "AGENT_PASSWORD",
	"DB_DSN", "REDIS_URL", "CACHE_TTL",
	"NATS_URL", "NATS_SUBJECT",
	"REMINDER_CRON", "REMINDER_WINDOW", "APPOINTMENT_LOOKAHEAD", "TIMEZONE",
	"SWAGGER_ENABLED",
}

// Load lee env vars y, si existe, un .env en el directorio actual.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "saludhogar")
	v.SetDefault("API_BASE_URL", "http://localhost:8000")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("API_RATE_LIMIT_RPS", 20)
	v.SetDefault("API_RATE_LIMIT_BURST", 40)
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("NATS_SUBJECT", "saludhogar.reminders")
	v.SetDefault("REMINDER_CRON", "@every 1m")
	v.SetDefault("REMINDER_WINDOW", "1h")
	v.SetDefault("APPOINTMENT_LOOKAHEAD", "24h")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("SWAGGER_ENABLED", true)

	// Bind explícito para que Unmarshal vea las env vars
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	if envFile != "" {
		_ = v.ReadInConfig()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Location resuelve TIMEZONE; los recordatorios se evalúan en esta zona.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// HasAgentCredentials indica si el agente puede iniciar sesión por sí mismo.
func (c *Config) HasAgentCredentials() bool {
	return strings.TrimSpace(c.AgentEmail) != "" && c.AgentPassword != ""
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.ReminderWindow < 0 || c.ReminderWindow > 7*24*time.Hour {
		return fmt.Errorf("REMINDER_WINDOW must be between 0 and 168h")
	}
	if c.AppointmentLookahead < 0 {
		return fmt.Errorf("APPOINTMENT_LOOKAHEAD must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if (c.AgentEmail == "") != (c.AgentPassword == "") {
		return fmt.Errorf("AGENT_EMAIL and AGENT_PASSWORD must be set together")
	}
	return nil
}
