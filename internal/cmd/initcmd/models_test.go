package initcmd

import (
	"testing"
)

func TestNewWizardState(t *testing.T) {
	state := NewWizardState()

	if state.ConfigPath != "./cw-inventory.yaml" {
		t.Errorf("expected ConfigPath './cw-inventory.yaml', got %q", state.ConfigPath)
	}

	if state.DBPath != "cw-inventory.db" {
		t.Errorf("expected DBPath 'cw-inventory.db', got %q", state.DBPath)
	}

	if state.ThresholdDays != "30" {
		t.Errorf("expected ThresholdDays '30', got %q", state.ThresholdDays)
	}

	if state.LogLevel != "info" {
		t.Errorf("expected LogLevel 'info', got %q", state.LogLevel)
	}

	if state.Concurrency != 8 {
		t.Errorf("expected Concurrency 8, got %d", state.Concurrency)
	}
}

func TestWizardState_ToConfig(t *testing.T) {
	state := &WizardState{
		ConfigPath:    "./test.yaml",
		DBPath:        " /var/lib/cw/inventory.db ",
		ScanPaths:     "/etc/ssl/certs, /etc/nginx/tls",
		ThresholdDays: "14",
		WebhookURL:    "https://hooks.example.com/T/B/X",
		LogLevel:      "debug",
		Concurrency:   4,
	}

	cfg, err := state.ToConfig()
	if err != nil {
		t.Fatalf("ToConfig() error = %v", err)
	}

	if cfg.Inventory.DBPath != "/var/lib/cw/inventory.db" {
		t.Errorf("expected trimmed DBPath, got %q", cfg.Inventory.DBPath)
	}
	if len(cfg.Scan.Paths) != 2 || cfg.Scan.Paths[0] != "/etc/ssl/certs" || cfg.Scan.Paths[1] != "/etc/nginx/tls" {
		t.Errorf("expected two scan paths, got %v", cfg.Scan.Paths)
	}
	if cfg.Scan.Concurrency != 4 {
		t.Errorf("expected Concurrency 4, got %d", cfg.Scan.Concurrency)
	}
	if cfg.Alert.ThresholdDays != 14 {
		t.Errorf("expected ThresholdDays 14, got %d", cfg.Alert.ThresholdDays)
	}
	if cfg.Notify.WebhookURL != "https://hooks.example.com/T/B/X" {
		t.Errorf("unexpected WebhookURL %q", cfg.Notify.WebhookURL)
	}
	if cfg.Agent.LogLevel != "debug" {
		t.Errorf("expected LogLevel 'debug', got %q", cfg.Agent.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated config should validate, got %v", err)
	}
}

func TestWizardState_ToConfig_InvalidThreshold(t *testing.T) {
	state := NewWizardState()
	state.ThresholdDays = "soon"

	if _, err := state.ToConfig(); err == nil {
		t.Error("expected error for non-numeric threshold")
	}
}

func TestParsePaths(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"single path", "/etc/ssl", []string{"/etc/ssl"}},
		{"multiple paths", "/a, /b, /c", []string{"/a", "/b", "/c"}},
		{"empty elements", "/a,,/b", []string{"/a", "/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parsePaths(tt.input)

			if result == nil {
				t.Fatalf("parsePaths(%q) returned nil", tt.input)
			}
			if len(result) != len(tt.expected) {
				t.Errorf("parsePaths(%q) = %v, expected %v", tt.input, result, tt.expected)
				return
			}
			for i, v := range result {
				if v != tt.expected[i] {
					t.Errorf("parsePaths(%q)[%d] = %q, expected %q", tt.input, i, v, tt.expected[i])
				}
			}
		})
	}
}
