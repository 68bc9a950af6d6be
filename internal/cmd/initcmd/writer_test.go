package initcmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/certwatch-app/cw-inventory/internal/config"
)

func TestWriteConfig_RoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Inventory.DBPath = "/var/lib/cw/inventory.db"
	cfg.Scan.Paths = []string{"/etc/ssl/certs"}
	cfg.Alert.ThresholdDays = 21
	cfg.Notify.WebhookURL = "https://hooks.example.com/x"
	cfg.Notify.Timeout = 5 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "cw-inventory.yaml")
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# cw-inventory configuration") {
		t.Errorf("missing header comment:\n%s", data)
	}
	if !strings.Contains(string(data), "timeout: 5s") {
		t.Errorf("timeout should be written as a duration string:\n%s", data)
	}
	if strings.Contains(string(data), "metrics:") {
		t.Errorf("empty metrics section should be omitted:\n%s", data)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	loaded, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Inventory.DBPath != cfg.Inventory.DBPath {
		t.Errorf("DBPath = %q, want %q", loaded.Inventory.DBPath, cfg.Inventory.DBPath)
	}
	if len(loaded.Scan.Paths) != 1 || loaded.Scan.Paths[0] != "/etc/ssl/certs" {
		t.Errorf("Paths = %v", loaded.Scan.Paths)
	}
	if loaded.Alert.ThresholdDays != 21 {
		t.Errorf("ThresholdDays = %d, want 21", loaded.Alert.ThresholdDays)
	}
	if loaded.Notify.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", loaded.Notify.Timeout)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("round-tripped config invalid: %v", err)
	}
}

func TestRunNonInteractive(t *testing.T) {
	t.Setenv("CW_SCAN_PATHS", "/etc/ssl/certs,/srv/tls")
	t.Setenv("CW_ALERT_THRESHOLD_DAYS", "10")
	t.Setenv("CW_METRICS_TEXTFILE_PATH", "/var/lib/node_exporter/cw.prom")

	path := filepath.Join(t.TempDir(), "cw-inventory.yaml")
	if err := RunNonInteractive(path); err != nil {
		t.Fatalf("RunNonInteractive() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"threshold_days: 10", "- /srv/tls", "textfile_path: /var/lib/node_exporter/cw.prom"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q:\n%s", want, data)
		}
	}
}

func TestRunNonInteractive_InvalidThreshold(t *testing.T) {
	t.Setenv("CW_ALERT_THRESHOLD_DAYS", "-5")

	if err := RunNonInteractive(filepath.Join(t.TempDir(), "c.yaml")); err == nil {
		t.Error("expected error for negative threshold")
	}
}
