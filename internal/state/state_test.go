package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "inventory.db"))

	if err := m.Load(); err != nil {
		t.Fatalf("Load() on first run error = %v", err)
	}
	if got := m.Snapshot(); !got.LastScanAt.IsZero() {
		t.Errorf("LastScanAt = %v, want zero", got.LastScanAt)
	}

	at := time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	m.RecordScan(ScanRun{ID: "run-1", At: at, Records: 12, Skipped: 2})
	m.RecordAlert(AlertRun{At: at.Add(time.Minute), Count: 3, OK: false, Detail: "HTTP 500"})
	if err := m.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(m.FilePath())
	if err != nil {
		t.Fatalf("stat state file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("state file mode = %o, want 600", perm)
	}

	reloaded := NewManager(filepath.Join(dir, "inventory.db"))
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got := reloaded.Snapshot()

	if got.LastScanID != "run-1" {
		t.Errorf("LastScanID = %q, want %q", got.LastScanID, "run-1")
	}
	if !got.LastScanAt.Equal(at) {
		t.Errorf("LastScanAt = %v, want %v", got.LastScanAt, at)
	}
	if got.LastScanRecords != 12 || got.LastScanSkipped != 2 {
		t.Errorf("scan counts = %d/%d, want 12/2", got.LastScanRecords, got.LastScanSkipped)
	}
	if got.LastAlertCount != 3 || got.LastAlertOK || got.LastAlertDetail != "HTTP 500" {
		t.Errorf("alert state = %+v", got)
	}
}

func TestManager_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "inventory.db"))
	if err := os.WriteFile(m.FilePath(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := m.Load(); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
	if got := m.Snapshot(); got.LastScanID != "" {
		t.Errorf("state not reset after corrupt load: %+v", got)
	}
}

func TestManager_Reset(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "inventory.db"))
	m.RecordScan(ScanRun{ID: "x", At: time.Now()})
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := os.Stat(m.FilePath()); !os.IsNotExist(err) {
		t.Errorf("state file still exists after Reset")
	}
	if err := m.Reset(); err != nil {
		t.Errorf("second Reset() error = %v", err)
	}
}
