// Package display renders inventory rows for the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/certwatch-app/cw-inventory/internal/model"
)

var (
	colorPrimary = lipgloss.Color("#0EA5E9") // Sky blue
	colorWarning = lipgloss.Color("#F59E0B") // Amber
	colorError   = lipgloss.Color("#EF4444") // Red
	colorMuted   = lipgloss.Color("#6B7280") // Gray
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	expiredStyle = cellStyle.Foreground(colorError)
	soonStyle    = cellStyle.Foreground(colorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Columns of the certificate table
var Columns = []string{"Source", "Location", "Subject", "Issuer", "Not After", "Days Left", "SANs"}

// Table renders rows as a bordered table. Expired rows are red and rows at or
// below warnDays are amber; a negative warnDays disables the amber band.
func Table(title string, rows []model.Row, warnDays int) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, cells(r))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(Columns...).
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(rows) || rows[row].DaysLeft == nil {
				return cellStyle
			}
			switch days := *rows[row].DaysLeft; {
			case days < 0:
				return expiredStyle
			case warnDays >= 0 && days <= warnDays:
				return soonStyle
			}
			return cellStyle
		})

	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}
	b.WriteString(t.Render())
	if len(rows) == 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("No certificates."))
	}
	return b.String()
}

func cells(r model.Row) []string {
	notAfter := "-"
	if r.ExpiryKnown() {
		notAfter = r.NotAfter.UTC().Format(time.RFC3339)
	}
	days := "-"
	if r.DaysLeft != nil {
		days = strconv.Itoa(*r.DaysLeft)
	}
	sans := "-"
	if len(r.SANs) > 0 {
		sans = strings.Join(r.SANs, ", ")
	}
	return []string{r.Source, r.Location, r.Subject, r.Issuer, notAfter, days, sans}
}

// JSON writes rows as an indented JSON array
func JSON(w io.Writer, rows []model.Row) error {
	if rows == nil {
		rows = []model.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	return nil
}

// Pair is one line of a key/value table
type Pair struct {
	Key   string
	Value string
}

// KeyValue renders a two-column Key/Value table
func KeyValue(title string, pairs []Pair) string {
	data := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		data = append(data, []string{p.Key, p.Value})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Key", "Value").
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if title == "" {
		return t.Render()
	}
	return titleStyle.Render(title) + "\n" + t.Render()
}
