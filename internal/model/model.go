// Package model defines the certificate inventory value types shared by discovery,
// storage and alerting.
package model

import (
	"errors"
	"fmt"
	"time"
)

// SourceFilesystem tags records discovered on local storage
const SourceFilesystem = "filesystem"

// ErrMissingField is returned when a record lacks one of its identity fields
var ErrMissingField = errors.New("missing required field")

// Certificate holds the fields extracted from a single X.509 certificate
// Fields are ordered for optimal memory alignment
type Certificate struct {
	NotBefore   time.Time `json:"not_before"`
	NotAfter    time.Time `json:"not_after"`
	Fingerprint string    `json:"fingerprint"`
	Subject     string    `json:"subject"`
	Issuer      string    `json:"issuer"`
	SANs        []string  `json:"sans"`
}

// Record is a certificate observed at a specific location by a specific source.
// The triple (Fingerprint, Source, Location) is its identity.
type Record struct {
	Certificate
	Source   string `json:"source"`
	Location string `json:"location"`
}

// NewRecord builds a Record and validates its identity fields
func NewRecord(cert Certificate, source, location string) (Record, error) {
	sans := make([]string, len(cert.SANs))
	copy(sans, cert.SANs)
	cert.SANs = sans
	cert.NotBefore = cert.NotBefore.UTC()
	cert.NotAfter = cert.NotAfter.UTC()

	r := Record{
		Certificate: cert,
		Source:      source,
		Location:    location,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks that the identity triple is complete
func (r Record) Validate() error {
	switch {
	case r.Fingerprint == "":
		return fmt.Errorf("fingerprint: %w", ErrMissingField)
	case r.Source == "":
		return fmt.Errorf("source: %w", ErrMissingField)
	case r.Location == "":
		return fmt.Errorf("location: %w", ErrMissingField)
	}
	return nil
}

// Key returns the identity triple as a single comparable value
func (r Record) Key() Key {
	return Key{Fingerprint: r.Fingerprint, Source: r.Source, Location: r.Location}
}

// Key identifies an inventory row
type Key struct {
	Fingerprint string
	Source      string
	Location    string
}

// Row is a persisted inventory entry.
// DaysLeft is derived at query time and is nil when the expiry is unknown.
type Row struct {
	Record
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	DaysLeft  *int      `json:"days_left,omitempty"`
}

// ExpiryKnown reports whether the row carries a usable expiry timestamp
func (r Row) ExpiryKnown() bool {
	return !r.NotAfter.IsZero()
}

// DaysLeft returns the whole days between now and notAfter, floored toward negative
// infinity: a certificate half a day past expiry reports -1. It works on Unix seconds,
// not time.Duration, so expiries centuries away are not clamped.
func DaysLeft(notAfter, now time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	secs := notAfter.Unix() - now.Unix()
	if notAfter.Nanosecond() < now.Nanosecond() {
		secs--
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return int(days)
}
