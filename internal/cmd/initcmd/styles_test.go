package initcmd

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderSection(t *testing.T) {
	tests := []struct {
		title string
		step  int
	}{
		{"Inventory", 1},
		{"Expiry Alerts", 2},
		{"A title long enough to overflow the section rule width", 3},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := RenderSection(tt.step, 3, tt.title)
			rule := strings.TrimSpace(got)
			if !strings.Contains(rule, tt.title) {
				t.Errorf("RenderSection() = %q, want it to contain %q", rule, tt.title)
			}
			if !strings.HasSuffix(rule, "───") {
				t.Errorf("RenderSection() = %q, want a trailing rule", rule)
			}
			if w := lipgloss.Width(rule); w < sectionWidth {
				t.Errorf("width = %d, want at least %d", w, sectionWidth)
			}
		})
	}
}

func TestRenderSetting(t *testing.T) {
	if got := RenderSetting("Webhook", ""); !strings.HasSuffix(got, "not set") {
		t.Errorf("RenderSetting(empty) = %q, want not set", got)
	}
	if got := RenderSetting("Database", "inv.db"); !strings.Contains(got, "Database:") || !strings.HasSuffix(got, "inv.db") {
		t.Errorf("RenderSetting() = %q", got)
	}
}
