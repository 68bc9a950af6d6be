// Package config handles configuration loading and validation for cw-inventory.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultDBPath        = "cw-inventory.db"
	DefaultConcurrency   = 8
	DefaultThresholdDays = 30
	DefaultNotifyTimeout = 10 * time.Second
	DefaultLogLevel      = "info"

	maxConcurrency   = 64
	maxThresholdDays = 3650
)

// Config represents the complete configuration
type Config struct {
	Inventory InventoryConfig `mapstructure:"inventory"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Alert     AlertConfig     `mapstructure:"alert"`
}

// InventoryConfig contains storage settings
type InventoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ScanConfig contains discovery settings
type ScanConfig struct {
	Paths       []string `mapstructure:"paths"`
	Concurrency int      `mapstructure:"concurrency"`
}

// AlertConfig contains alert window settings
type AlertConfig struct {
	ThresholdDays int `mapstructure:"threshold_days"`
}

// NotifyConfig contains webhook delivery settings
type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// AgentConfig contains process-wide settings
type AgentConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// MetricsConfig contains metrics export settings
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}

// Load reads configuration from viper
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Inventory: InventoryConfig{DBPath: DefaultDBPath},
		Scan:      ScanConfig{Paths: []string{}, Concurrency: DefaultConcurrency},
		Alert:     AlertConfig{ThresholdDays: DefaultThresholdDays},
		Notify:    NotifyConfig{Timeout: DefaultNotifyTimeout},
		Agent:     AgentConfig{LogLevel: DefaultLogLevel},
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("inventory.db_path", DefaultDBPath)

	v.SetDefault("scan.paths", []string{})
	v.SetDefault("scan.concurrency", DefaultConcurrency)

	v.SetDefault("alert.threshold_days", DefaultThresholdDays)

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.timeout", DefaultNotifyTimeout.String())

	v.SetDefault("agent.log_level", DefaultLogLevel)

	v.SetDefault("metrics.textfile_path", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Inventory.DBPath == "" {
		return fmt.Errorf("inventory: db_path is required")
	}

	if err := c.validateScan(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	if c.Alert.ThresholdDays < 0 || c.Alert.ThresholdDays > maxThresholdDays {
		return fmt.Errorf("alert: threshold_days must be between 0 and %d", maxThresholdDays)
	}

	if err := c.validateNotify(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if err := ValidateLogLevel(c.Agent.LogLevel); err != nil {
		return fmt.Errorf("agent: %w", err)
	}

	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Concurrency < 1 || c.Scan.Concurrency > maxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", maxConcurrency)
	}

	for i, p := range c.Scan.Paths {
		if p == "" {
			return fmt.Errorf("paths[%d]: must not be empty", i)
		}
	}

	return nil
}

func (c *Config) validateNotify() error {
	if c.Notify.WebhookURL != "" {
		if err := ValidateWebhookURL(c.Notify.WebhookURL); err != nil {
			return err
		}
	}

	if c.Notify.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1 second")
	}

	return nil
}

// ValidateWebhookURL checks that raw is an absolute http or https URL
func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("webhook URL must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("webhook URL must include a host")
	}
	return nil
}

// ValidateLogLevel checks level against the supported zap levels
func ValidateLogLevel(level string) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[level] {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// WebhookConfigured reports whether alert delivery has a destination
func (c *Config) WebhookConfigured() bool {
	return c.Notify.WebhookURL != ""
}
