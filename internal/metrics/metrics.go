// Package metrics exposes inventory metrics on a dedicated Prometheus registry,
// exported through node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/certwatch-app/cw-inventory/internal/version"
)

// Registry holds every inventory metric
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		CertificatesDiscovered,
		FilesSkipped,
		InventoryRows,
		CertificatesExpiring,
		ScanDuration,
		UpsertsTotal,
		AlertsTotal,
		AgentInfo,
	)
	AgentInfo.WithLabelValues(version.GetVersion()).Set(1)
}

var (
	// Scan metrics

	// CertificatesDiscovered tracks certificates parsed by the last scan
	CertificatesDiscovered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "certificates_discovered",
		Help:      "Certificates parsed by the last scan",
	})

	// FilesSkipped tracks candidate files the last scan could not use, by reason
	FilesSkipped = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "files_skipped",
		Help:      "Files skipped by the last scan",
	}, []string{"reason"})

	// ScanDuration tracks scan duration
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "scan_duration_seconds",
		Help:      "Duration of discovery plus upsert in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// UpsertsTotal counts records reconciled into the inventory
	UpsertsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "upserts_total",
		Help:      "Total number of records upserted",
	})

	// Inventory metrics

	// InventoryRows tracks stored rows by source
	InventoryRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "rows",
		Help:      "Inventory rows by source",
	}, []string{"source"})

	// Alert metrics

	// CertificatesExpiring tracks certificates inside the last alert window
	CertificatesExpiring = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "certificates_expiring",
		Help:      "Certificates within the alert threshold at the last alert run",
	})

	// AlertsTotal counts alert runs by outcome (sent, failed, empty, dry_run)
	AlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "alerts_total",
		Help:      "Total number of alert runs",
	}, []string{"status"})

	// AgentInfo provides build metadata
	AgentInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certwatch",
		Subsystem: "inventory",
		Name:      "agent_info",
		Help:      "Agent information",
	}, []string{"version"})
)

// Alert statuses
const (
	AlertSent   = "sent"
	AlertFailed = "failed"
	AlertEmpty  = "empty"
	AlertDryRun = "dry_run"
)

// SetInventoryRows replaces the per-source row gauges
func SetInventoryRows(bySource map[string]int) {
	InventoryRows.Reset()
	for source, n := range bySource {
		InventoryRows.WithLabelValues(source).Set(float64(n))
	}
}

// SetSkipped replaces the per-reason skip gauges
func SetSkipped(byReason map[string]int) {
	FilesSkipped.Reset()
	for reason, n := range byReason {
		FilesSkipped.WithLabelValues(reason).Set(float64(n))
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
// The file is replaced atomically.
func WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
