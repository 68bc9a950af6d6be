// Package alert turns inventory rows inside an expiry window into a bounded,
// human-readable summary and a structured payload. It performs no I/O.
package alert

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/certwatch-app/cw-inventory/internal/model"
)

// MaxLines is the number of certificates rendered before the summary is truncated
const MaxLines = 20

// Item is one certificate in an alert
type Item struct {
	NotAfter    *time.Time `json:"not_after"`
	DaysLeft    *int       `json:"days_left"`
	Fingerprint string     `json:"fingerprint"`
	Subject     string     `json:"subject"`
	Source      string     `json:"source"`
	Location    string     `json:"location"`
}

// Result is a composed alert
type Result struct {
	// Items holds every matching certificate, most urgent first
	Items     []Item
	Lines     []string
	Threshold int
	Count     int
	Remaining int
	Empty     bool
}

// Payload is the structured form of a Result
type Payload struct {
	Items         []Item `json:"items"`
	ThresholdDays int    `json:"threshold_days"`
	Count         int    `json:"count"`
}

// Compose keeps the rows expiring within threshold days, sorts them by urgency and
// renders at most MaxLines of them. Days left is always recomputed from NotAfter
// against now. Rows of unknown expiry are kept and sort last.
func Compose(rows []model.Row, threshold int, now time.Time) Result {
	res := Result{Threshold: threshold}

	type ranked struct {
		row  model.Row
		days int
	}
	ordered := make([]ranked, 0, len(rows))
	for _, r := range rows {
		days := math.MaxInt
		if r.ExpiryKnown() {
			days = model.DaysLeft(r.NotAfter, now)
			if days > threshold {
				continue
			}
		}
		ordered = append(ordered, ranked{row: r, days: days})
	}
	if len(ordered) == 0 {
		res.Empty = true
		return res
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.days != b.days {
			return a.days < b.days
		}
		if !a.row.NotAfter.Equal(b.row.NotAfter) {
			return a.row.NotAfter.Before(b.row.NotAfter)
		}
		return a.row.Location < b.row.Location
	})

	res.Count = len(ordered)
	res.Items = make([]Item, 0, len(ordered))
	for _, o := range ordered {
		item := Item{
			Fingerprint: o.row.Fingerprint,
			Subject:     o.row.Subject,
			Source:      o.row.Source,
			Location:    o.row.Location,
		}
		if o.days != math.MaxInt {
			days := o.days
			notAfter := o.row.NotAfter
			item.DaysLeft = &days
			item.NotAfter = &notAfter
		}
		res.Items = append(res.Items, item)
	}

	shown := res.Items
	if len(shown) > MaxLines {
		shown = shown[:MaxLines]
		res.Remaining = len(res.Items) - MaxLines
	}
	res.Lines = make([]string, 0, len(shown))
	for _, item := range shown {
		res.Lines = append(res.Lines, renderLine(item))
	}

	return res
}

func renderLine(item Item) string {
	days := "unknown"
	expires := "unknown"
	if item.DaysLeft != nil {
		days = fmt.Sprintf("%dd", *item.DaysLeft)
		expires = item.NotAfter.UTC().Format(time.RFC3339)
	}

	subject := item.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	return fmt.Sprintf("[%s] %s at %s (expires %s)", days, subject, item.Location, expires)
}

// Text renders the plain-text message
func (r Result) Text() string {
	if r.Empty {
		return fmt.Sprintf("No certificates expiring within %d days.", r.Threshold)
	}

	var b strings.Builder
	noun := "certificates"
	if r.Count == 1 {
		noun = "certificate"
	}
	fmt.Fprintf(&b, "%d %s expiring within %d days:", r.Count, noun, r.Threshold)
	for _, line := range r.Lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	if r.Remaining > 0 {
		fmt.Fprintf(&b, "\n...and %d more", r.Remaining)
	}
	return b.String()
}

// Payload returns the structured form. Items is capped at MaxLines; Count is the total.
func (r Result) Payload() Payload {
	items := r.Items
	if len(items) > MaxLines {
		items = items[:MaxLines]
	}
	if items == nil {
		items = []Item{}
	}
	return Payload{
		ThresholdDays: r.Threshold,
		Count:         r.Count,
		Items:         items,
	}
}
