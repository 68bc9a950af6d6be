package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetInventoryRows(t *testing.T) {
	SetInventoryRows(map[string]int{"filesystem": 3, "manual": 1})
	SetInventoryRows(map[string]int{"filesystem": 2})

	if got := testutil.ToFloat64(InventoryRows.WithLabelValues("filesystem")); got != 2 {
		t.Errorf("filesystem rows = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(InventoryRows); got != 1 {
		t.Errorf("series = %d, want 1 after reset", got)
	}
}

func TestSetSkipped(t *testing.T) {
	SetSkipped(map[string]int{"unparsable": 4})
	if got := testutil.ToFloat64(FilesSkipped.WithLabelValues("unparsable")); got != 4 {
		t.Errorf("unparsable = %v, want 4", got)
	}
}

func TestAlertsTotal(t *testing.T) {
	before := testutil.ToFloat64(AlertsTotal.WithLabelValues(AlertSent))
	AlertsTotal.WithLabelValues(AlertSent).Inc()
	if got := testutil.ToFloat64(AlertsTotal.WithLabelValues(AlertSent)); got != before+1 {
		t.Errorf("alerts_total{sent} = %v, want %v", got, before+1)
	}
}

func TestWriteTextfile(t *testing.T) {
	CertificatesDiscovered.Set(7)
	path := filepath.Join(t.TempDir(), "textfile", "cw-inventory.prom")

	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "certwatch_inventory_certificates_discovered 7") {
		t.Errorf("textfile missing discovered gauge:\n%s", data)
	}
	if !strings.Contains(string(data), "certwatch_inventory_agent_info") {
		t.Errorf("textfile missing agent_info:\n%s", data)
	}
}
