package initcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/certwatch-app/cw-inventory/internal/config"
)

// ValidateConfigPath validates the output file path.
func ValidateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("config path is required")
	}

	return validateParentDir(path)
}

// ValidateDBPath validates the inventory database path.
func ValidateDBPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("database path is required")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("'%s' is a directory", path)
	}

	return validateParentDir(path)
}

// validateParentDir accepts a missing parent (created on write) but rejects one
// that exists and is not a directory.
func validateParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("'%s' is not a directory", dir)
	}

	return nil
}

// ValidateScanPaths validates the comma-separated discovery roots.
// Paths that do not exist yet are accepted; scan reports them as skipped.
func ValidateScanPaths(pathsStr string) error {
	for _, p := range strings.Split(pathsStr, ",") {
		if strings.ContainsAny(p, "\n\r\t") {
			return fmt.Errorf("paths cannot contain newlines or tabs")
		}
	}
	return nil
}

// ValidateThreshold validates the alert window in days.
func ValidateThreshold(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil // Will use default
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("threshold must be a whole number of days")
	}
	if n < 0 || n > 3650 {
		return fmt.Errorf("threshold must be between 0 and 3650 days")
	}

	return nil
}

// ValidateWebhookURL validates the optional webhook URL.
func ValidateWebhookURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil // Alerts can still be previewed with --dry-run
	}
	return config.ValidateWebhookURL(strings.TrimSpace(raw))
}
