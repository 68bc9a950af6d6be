package initcmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateConfigPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid relative", "./cw-inventory.yaml", false},
		{"valid current dir", "cw-inventory.yaml", false},
		{"missing parent is created later", filepath.Join(dir, "new", "c.yaml"), false},
		{"parent is a file", filepath.Join(file, "c.yaml"), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfigPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfigPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDBPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative file", "cw-inventory.db", false},
		{"nested new file", filepath.Join(dir, "data", "inv.db"), false},
		{"existing directory", dir, true},
		{"empty", "", true},
		{"blank", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDBPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDBPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateScanPaths(t *testing.T) {
	tests := []struct {
		name    string
		paths   string
		wantErr bool
	}{
		{"empty", "", false},
		{"single", "/etc/ssl/certs", false},
		{"multiple", "/etc/ssl/certs, ./certs", false},
		{"with newline", "/etc\n/ssl", true},
		{"with tab", "/etc\t/ssl", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScanPaths(tt.paths)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScanPaths(%q) error = %v, wantErr %v", tt.paths, err, tt.wantErr)
			}
		})
	}
}

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold string
		wantErr   bool
	}{
		{"zero", "0", false},
		{"thirty", "30", false},
		{"max", "3650", false},
		{"empty (default)", "", false},
		{"negative", "-1", true},
		{"too high", "3651", true},
		{"not a number", "soon", true},
		{"float", "7.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreshold(tt.threshold)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateThreshold(%q) error = %v, wantErr %v", tt.threshold, err, tt.wantErr)
			}
		})
	}
}

func TestValidateWebhookURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://hooks.slack.com/services/T/B/X", false},
		{"valid http", "http://localhost:3000/hook", false},
		{"empty (configure later)", "", false},
		{"missing scheme", "hooks.slack.com/services/T/B/X", true},
		{"ftp scheme", "ftp://example.com", true},
		{"invalid url", "not a url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWebhookURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWebhookURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
