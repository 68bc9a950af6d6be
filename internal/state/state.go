// Package state persists the outcome of the last scan and the last alert run so
// `status` can report them between invocations.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State holds persisted run state
type State struct {
	LastScanAt      time.Time `json:"last_scan_at,omitempty"`
	LastAlertAt     time.Time `json:"last_alert_at,omitempty"`
	LastUpdated     time.Time `json:"last_updated"`
	LastScanID      string    `json:"last_scan_id,omitempty"`
	LastAlertDetail string    `json:"last_alert_detail,omitempty"`
	LastScanRecords int       `json:"last_scan_records"`
	LastScanSkipped int       `json:"last_scan_skipped"`
	LastAlertCount  int       `json:"last_alert_count"`
	LastAlertOK     bool      `json:"last_alert_ok"`
}

// ScanRun describes a completed scan
type ScanRun struct {
	At      time.Time
	ID      string
	Records int
	Skipped int
}

// AlertRun describes a completed alert delivery attempt
type AlertRun struct {
	At     time.Time
	Detail string
	Count  int
	OK     bool
}

// Manager handles state persistence
type Manager struct {
	state    *State
	now      func() time.Time
	filePath string
	mu       sync.RWMutex
}

// stateFileName is the name of the state file stored alongside the database
const stateFileName = ".cw-inventory-state.json"

// NewManager creates a state manager whose file lives next to the inventory database
func NewManager(dbPath string) *Manager {
	return &Manager{
		filePath: filepath.Join(filepath.Dir(dbPath), stateFileName),
		state:    &State{},
		now:      time.Now,
	}
}

// Load reads state from disk.
// A missing file is a first run and not an error; a corrupt file resets state and
// returns an error the caller may log.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = &State{}
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		m.state = &State{}
		return fmt.Errorf("failed to parse state file (treating as first run): %w", err)
	}

	m.state = state
	return nil
}

// Save writes state to disk with owner-only permissions
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastUpdated = m.now().UTC()

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(m.filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// RecordScan stores a scan outcome (call Save() to persist)
func (m *Manager) RecordScan(run ScanRun) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastScanID = run.ID
	m.state.LastScanAt = run.At.UTC()
	m.state.LastScanRecords = run.Records
	m.state.LastScanSkipped = run.Skipped
}

// RecordAlert stores an alert outcome (call Save() to persist)
func (m *Manager) RecordAlert(run AlertRun) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastAlertAt = run.At.UTC()
	m.state.LastAlertCount = run.Count
	m.state.LastAlertOK = run.OK
	m.state.LastAlertDetail = run.Detail
}

// Snapshot returns a copy of the current state
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.state
}

// Reset clears all state and removes the file
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = &State{}

	if err := os.Remove(m.filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}

	return nil
}

// FilePath returns the path to the state file
func (m *Manager) FilePath() string {
	return m.filePath
}
