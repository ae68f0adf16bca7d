package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the Anna gateway
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Security  SecurityConfig  `mapstructure:"security"`
	Database  DatabaseConfig  `mapstructure:"database"`
	History   HistoryConfig   `mapstructure:"history"`
	Widget    WidgetConfig    `mapstructure:"widget"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// UpstreamConfig holds the workflow-engine webhook configuration
type UpstreamConfig struct {
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SourceLabel string        `mapstructure:"source_label"`
}

// SecurityConfig holds identity validation configuration
type SecurityConfig struct {
	AllowedDomains   []string `mapstructure:"allowed_domains"`
	MaxMessageLength int      `mapstructure:"max_message_length"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// HistoryConfig holds conversation history configuration
type HistoryConfig struct {
	MaxTurns int `mapstructure:"max_turns"`
}

// WidgetConfig holds the bootstrap configuration served to the embedded widget
type WidgetConfig struct {
	AssistantName  string   `mapstructure:"assistant_name"`
	WelcomeMessage string   `mapstructure:"welcome_message"`
	Placeholder    string   `mapstructure:"placeholder"`
	PrimaryColor   string   `mapstructure:"primary_color"`
	QuickQuestions []string `mapstructure:"quick_questions"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	RequestsPerHour int  `mapstructure:"requests_per_hour"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ANNA")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("upstream.url", "http://localhost:5678/webhook/amax-genBi")
	// Analytic queries can run for minutes; keep the ceiling configurable
	// instead of pinning a short request timeout.
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.source_label", "AMAX-Widget/1.0")

	v.SetDefault("security.allowed_domains", []string{"amaxinsurance.com"})
	v.SetDefault("security.max_message_length", 2000)

	v.SetDefault("database.path", "./data/anna.db")

	v.SetDefault("history.max_turns", 50)

	v.SetDefault("widget.assistant_name", "Anna - AMAX BI Assistant")
	v.SetDefault("widget.welcome_message", "Hello! I'm Anna, your professional BI assistant for AMAX Insurance. What would you like to analyze today?")
	v.SetDefault("widget.placeholder", "Ask Anna about your insurance data and analytics...")
	v.SetDefault("widget.primary_color", "#DC143C")
	v.SetDefault("widget.quick_questions", []string{
		"Show me premium trends for Q4 2024",
		"Top performing agents this month",
		"Policy status distribution by location",
		"Claims analysis for high-value policies",
		"Revenue breakdown by policy type",
	})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_hour", 100)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
