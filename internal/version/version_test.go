package version

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	old := Version
	Version = "1.2.3"
	defer func() { Version = old }()

	if ua := UserAgent(); !strings.HasPrefix(ua, "cw-inventory/1.2.3 (") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if got := GetInfo().Version; got != "1.2.3" {
		t.Errorf("GetInfo().Version = %q, want 1.2.3", got)
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev build", Info{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"}, "dev"},
		{
			"release build",
			Info{Version: "v0.4.0", GitCommit: "3f9c2ab1d4e5f60718293a4b5c6d7e8f90a1b2c3", BuildDate: "2026-10-01"},
			"v0.4.0 (3f9c2ab, 2026-10-01)",
		},
		{"short commit kept", Info{Version: "v0.4.0", GitCommit: "abc", BuildDate: "2026-10-01"}, "v0.4.0 (abc, 2026-10-01)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
