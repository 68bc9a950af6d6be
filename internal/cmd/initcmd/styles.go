package initcmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/certwatch-app/cw-inventory/internal/version"
)

// Palette. The expiry colors match the list table: healthy, inside the alert window,
// past not_after.
var (
	colorBrand    = lipgloss.Color("#0EA5E9")
	colorHealthy  = lipgloss.Color("#22C55E")
	colorExpiring = lipgloss.Color("#F59E0B")
	colorExpired  = lipgloss.Color("#EF4444")
	colorMuted    = lipgloss.Color("#6B7280")
	colorSelect   = lipgloss.Color("#A855F7")
	colorCodeBg   = lipgloss.Color("#1F2937")
	colorCodeFg   = lipgloss.Color("#F9FAFB")
)

// sectionWidth is the printed width of a section rule, title included
const sectionWidth = 48

var (
	// TitleStyle for headings inside the wizard summary
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(colorHealthy).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorExpired).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(colorExpiring)
	MutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)

	// CodeStyle for commands the user can paste
	CodeStyle = lipgloss.NewStyle().
			Background(colorCodeBg).
			Foreground(colorCodeFg).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
)

// Message prefixes
const (
	SuccessPrefix = "✓ "
	ErrorPrefix   = "✗ "
	WarningPrefix = "! "
	InfoPrefix    = "→ "
)

// CreateTheme returns the huh theme used by every form, including the purge prompt.
func CreateTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(colorBrand)
	t.Focused.Description = t.Focused.Description.Foreground(colorMuted)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(colorSelect)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(colorBrand)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(colorBrand)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(colorExpired)

	t.Blurred.Title = t.Blurred.Title.Foreground(colorMuted)

	return t
}

// RenderHeader renders the wizard banner with the running build's version.
func RenderHeader() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorCodeFg).
		Background(colorBrand).
		Padding(0, 2).
		Render(fmt.Sprintf("cw-inventory setup · %s", version.GetInfo()))
}

// RenderSection renders a numbered rule such as "── 2/3 Expiry Alerts ─────",
// padded to sectionWidth cells.
func RenderSection(step, total int, title string) string {
	label := fmt.Sprintf("%d/%d %s", step, total, title)
	lead := "── "
	fill := sectionWidth - lipgloss.Width(lead) - lipgloss.Width(label) - 1
	if fill < 3 {
		fill = 3
	}
	return SectionStyle.Render(lead + stepStyle.Render(label) + " " + strings.Repeat("─", fill))
}

// RenderSetting renders one "label: value" line of the summary; an empty value
// is shown as "not set".
func RenderSetting(label, value string) string {
	if value == "" {
		value = "not set"
	}
	return MutedStyle.Render(fmt.Sprintf("  %-12s", label+":")) + value
}

func RenderSuccess(msg string) string {
	return SuccessStyle.Render(SuccessPrefix + msg)
}

func RenderError(msg string) string {
	return ErrorStyle.Render(ErrorPrefix + msg)
}

func RenderWarning(msg string) string {
	return WarningStyle.Render(WarningPrefix + msg)
}

func RenderInfo(msg string) string {
	return MutedStyle.Render(InfoPrefix + msg)
}

// RenderCode renders a command
func RenderCode(code string) string {
	return CodeStyle.Render(code)
}
