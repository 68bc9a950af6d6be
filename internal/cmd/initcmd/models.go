// Package initcmd provides the interactive init command wizard.
package initcmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/certwatch-app/cw-inventory/internal/config"
)

// DefaultConfigPath is where init writes when no -o flag is given
const DefaultConfigPath = "./cw-inventory.yaml"

// WizardState holds all collected input during the wizard.
type WizardState struct {
	// Output configuration
	ConfigPath    string
	OverwriteFile bool

	// Inventory configuration
	DBPath    string
	ScanPaths string // comma-separated, parsed later

	// Alert configuration
	ThresholdDays string
	WebhookURL    string

	// Agent configuration
	LogLevel     string
	TextfilePath string
	Concurrency  int
}

// NewWizardState creates a new WizardState with sensible defaults.
func NewWizardState() *WizardState {
	return &WizardState{
		ConfigPath:    DefaultConfigPath,
		DBPath:        config.DefaultDBPath,
		ThresholdDays: strconv.Itoa(config.DefaultThresholdDays),
		LogLevel:      config.DefaultLogLevel,
		Concurrency:   config.DefaultConcurrency,
	}
}

// ToConfig converts the wizard state to a config.Config struct.
func (s *WizardState) ToConfig() (*config.Config, error) {
	threshold := config.DefaultThresholdDays
	if strings.TrimSpace(s.ThresholdDays) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(s.ThresholdDays))
		if err != nil {
			return nil, fmt.Errorf("invalid threshold days: %w", err)
		}
		threshold = n
	}

	cfg := config.Default()
	cfg.Inventory.DBPath = strings.TrimSpace(s.DBPath)
	cfg.Scan.Paths = parsePaths(s.ScanPaths)
	cfg.Scan.Concurrency = s.Concurrency
	cfg.Alert.ThresholdDays = threshold
	cfg.Notify.WebhookURL = strings.TrimSpace(s.WebhookURL)
	cfg.Agent.LogLevel = s.LogLevel
	cfg.Metrics.TextfilePath = strings.TrimSpace(s.TextfilePath)

	return cfg, nil
}

// parsePaths parses comma-separated paths into a slice.
func parsePaths(pathsStr string) []string {
	parts := strings.Split(pathsStr, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		path := strings.TrimSpace(p)
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}
