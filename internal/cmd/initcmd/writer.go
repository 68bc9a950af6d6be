package initcmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/certwatch-app/cw-inventory/internal/config"
)

const configHeader = `# cw-inventory configuration
# Every key can be overridden with a CW_ environment variable,
# e.g. CW_NOTIFY_WEBHOOK_URL or CW_ALERT_THRESHOLD_DAYS.
`

// fileConfig is the on-disk layout; durations are written as strings ("10s")
type fileConfig struct {
	Inventory struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"inventory"`
	Scan struct {
		Paths       []string `yaml:"paths"`
		Concurrency int      `yaml:"concurrency"`
	} `yaml:"scan"`
	Alert struct {
		ThresholdDays int `yaml:"threshold_days"`
	} `yaml:"alert"`
	Notify struct {
		WebhookURL string `yaml:"webhook_url,omitempty"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"notify"`
	Agent struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"agent"`
	Metrics *struct {
		TextfilePath string `yaml:"textfile_path"`
	} `yaml:"metrics,omitempty"`
}

func toFileConfig(cfg *config.Config) fileConfig {
	var fc fileConfig
	fc.Inventory.DBPath = cfg.Inventory.DBPath
	fc.Scan.Paths = cfg.Scan.Paths
	if fc.Scan.Paths == nil {
		fc.Scan.Paths = []string{}
	}
	fc.Scan.Concurrency = cfg.Scan.Concurrency
	fc.Alert.ThresholdDays = cfg.Alert.ThresholdDays
	fc.Notify.WebhookURL = cfg.Notify.WebhookURL
	fc.Notify.Timeout = cfg.Notify.Timeout.String()
	fc.Agent.LogLevel = cfg.Agent.LogLevel
	if cfg.Metrics.TextfilePath != "" {
		fc.Metrics = &struct {
			TextfilePath string `yaml:"textfile_path"`
		}{TextfilePath: cfg.Metrics.TextfilePath}
	}
	return fc
}

// MarshalConfig renders cfg as commented YAML
func MarshalConfig(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toFileConfig(cfg)); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteConfig writes cfg to path, creating parent directories. The file may hold
// the webhook URL, so it is written owner-only.
func WriteConfig(cfg *config.Config, path string) error {
	data, err := MarshalConfig(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
