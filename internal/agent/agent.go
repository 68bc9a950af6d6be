// Package agent wires discovery, the inventory store, alert composition and
// webhook delivery into the operations exposed by the CLI.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/certwatch-app/cw-inventory/internal/alert"
	"github.com/certwatch-app/cw-inventory/internal/config"
	"github.com/certwatch-app/cw-inventory/internal/discovery"
	"github.com/certwatch-app/cw-inventory/internal/inventory"
	"github.com/certwatch-app/cw-inventory/internal/metrics"
	"github.com/certwatch-app/cw-inventory/internal/model"
	"github.com/certwatch-app/cw-inventory/internal/notify"
	"github.com/certwatch-app/cw-inventory/internal/state"
)

// ErrNoScanPaths is returned by Scan when neither arguments nor config name a root
var ErrNoScanPaths = errors.New("no scan paths given and none configured")

// Notifier delivers a composed alert message
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) notify.Delivery
}

// Agent orchestrates inventory operations
type Agent struct {
	config     *config.Config
	logger     *zap.Logger
	store      *inventory.Store
	discoverer *discovery.Discoverer
	notifier   Notifier
	state      *state.Manager
	now        func() time.Time
}

// Option configures an Agent
type Option func(*Agent)

// WithLogger replaces the logger built from agent.log_level
func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.now = now
	}
}

// WithNotifier replaces the webhook client
func WithNotifier(n Notifier) Option {
	return func(a *Agent) {
		a.notifier = n
	}
}

// ScanSummary describes a completed scan
type ScanSummary struct {
	StartedAt  time.Time
	ID         string
	Roots      []string
	Skipped    []discovery.Skipped
	Duration   time.Duration
	Discovered int
	Upserted   int
}

// AlertOutcome describes a completed alert run
type AlertOutcome struct {
	Result   alert.Result
	Delivery notify.Delivery
	// Sent is true when delivery was attempted
	Sent bool
}

// Status summarizes configuration, inventory and the last recorded runs
type Status struct {
	LastRun           state.State
	Inventory         inventory.Stats
	DBPath            string
	StatePath         string
	ScanPaths         []string
	ThresholdDays     int
	WebhookConfigured bool
}

// New creates an Agent and opens the inventory
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Agent, error) {
	a := &Agent{
		config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		logger, err := setupLogger(cfg.Agent.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to setup logger: %w", err)
		}
		a.logger = logger
	}

	store, err := inventory.Open(ctx, cfg.Inventory.DBPath,
		inventory.WithClock(a.now),
		inventory.WithLogger(a.logger.Named("inventory")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory %s: %w", cfg.Inventory.DBPath, err)
	}
	a.store = store

	a.discoverer = discovery.New(cfg.Scan.Concurrency, a.logger.Named("discovery"))

	if a.notifier == nil {
		a.notifier = notify.New(cfg.Notify.WebhookURL, cfg.Notify.Timeout, a.logger.Named("notify"))
	}

	a.state = state.NewManager(cfg.Inventory.DBPath)
	if err := a.state.Load(); err != nil {
		a.logger.Warn("failed to load run state", zap.Error(err))
	}

	return a, nil
}

// Logger returns the agent's logger
func (a *Agent) Logger() *zap.Logger {
	return a.logger
}

// Scan discovers certificates under roots (or the configured scan paths when roots
// is empty) and reconciles them into the inventory
func (a *Agent) Scan(ctx context.Context, roots []string) (ScanSummary, error) {
	if len(roots) == 0 {
		roots = a.config.Scan.Paths
	}
	if len(roots) == 0 {
		return ScanSummary{}, ErrNoScanPaths
	}

	summary := ScanSummary{
		ID:        uuid.NewString(),
		StartedAt: a.now(),
		Roots:     roots,
	}
	start := time.Now()

	a.logger.Info("starting certificate scan",
		zap.String("scan_id", summary.ID),
		zap.Strings("roots", roots),
		zap.Int("concurrency", a.config.Scan.Concurrency),
	)

	report, err := a.discoverer.Discover(ctx, roots)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("discovery failed: %w", err)
	}

	byReason := make(map[string]int)
	for _, s := range report.Skipped {
		byReason[string(s.Reason)]++
		a.logger.Debug("skipped file",
			zap.String("path", s.Path),
			zap.String("reason", string(s.Reason)),
			zap.Error(s.Err),
		)
	}

	n, err := a.store.UpsertMany(ctx, report.Records)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("failed to update inventory: %w", err)
	}

	summary.Discovered = len(report.Records)
	summary.Upserted = n
	summary.Skipped = report.Skipped
	summary.Duration = time.Since(start)

	metrics.CertificatesDiscovered.Set(float64(summary.Discovered))
	metrics.SetSkipped(byReason)
	metrics.ScanDuration.Observe(summary.Duration.Seconds())
	metrics.UpsertsTotal.Add(float64(n))
	a.refreshInventoryMetrics(ctx)

	a.state.RecordScan(state.ScanRun{
		ID:      summary.ID,
		At:      summary.StartedAt,
		Records: summary.Upserted,
		Skipped: len(summary.Skipped),
	})
	a.saveState()

	a.logger.Info("scan complete",
		zap.String("scan_id", summary.ID),
		zap.Duration("duration", summary.Duration),
		zap.Int("discovered", summary.Discovered),
		zap.Int("upserted", summary.Upserted),
		zap.Int("skipped", len(summary.Skipped)),
	)

	return summary, nil
}

// List returns inventory rows matching filter
func (a *Agent) List(ctx context.Context, filter inventory.Filter) ([]model.Row, error) {
	return a.store.List(ctx, filter)
}

// Alert composes the certificates expiring within threshold days and delivers the
// message unless there is nothing to report or dryRun is set. A failed delivery is
// reported in the outcome, not as an error.
func (a *Agent) Alert(ctx context.Context, threshold int, dryRun bool) (AlertOutcome, error) {
	rows, err := a.store.List(ctx, inventory.Filter{ExpiringWithinDays: inventory.Days(threshold)})
	if err != nil {
		return AlertOutcome{}, err
	}

	outcome := AlertOutcome{Result: alert.Compose(rows, threshold, a.now())}
	metrics.CertificatesExpiring.Set(float64(outcome.Result.Count))

	switch {
	case outcome.Result.Empty:
		a.logger.Info("no certificates within alert threshold", zap.Int("threshold_days", threshold))
		metrics.AlertsTotal.WithLabelValues(metrics.AlertEmpty).Inc()
		return outcome, nil

	case dryRun:
		a.logger.Info("dry run, alert not sent",
			zap.Int("threshold_days", threshold),
			zap.Int("count", outcome.Result.Count),
		)
		metrics.AlertsTotal.WithLabelValues(metrics.AlertDryRun).Inc()
		return outcome, nil
	}

	outcome.Delivery = a.notifier.Send(ctx, notify.MessageFromAlert(outcome.Result))
	outcome.Sent = true

	if outcome.Delivery.OK {
		a.logger.Info("alert delivered",
			zap.Int("count", outcome.Result.Count),
			zap.String("detail", outcome.Delivery.Detail),
		)
		metrics.AlertsTotal.WithLabelValues(metrics.AlertSent).Inc()
	} else {
		a.logger.Warn("alert delivery failed",
			zap.Int("count", outcome.Result.Count),
			zap.String("detail", outcome.Delivery.Detail),
		)
		metrics.AlertsTotal.WithLabelValues(metrics.AlertFailed).Inc()
	}

	a.state.RecordAlert(state.AlertRun{
		At:     a.now(),
		Count:  outcome.Result.Count,
		OK:     outcome.Delivery.OK,
		Detail: outcome.Delivery.Detail,
	})
	a.saveState()

	return outcome, nil
}

// Purge deletes inventory rows, all of them or only those of source
func (a *Agent) Purge(ctx context.Context, source string) (int, error) {
	n, err := a.store.Purge(ctx, source)
	if err != nil {
		return 0, err
	}

	a.logger.Info("inventory purged", zap.String("source", source), zap.Int("deleted", n))
	a.refreshInventoryMetrics(ctx)
	return n, nil
}

// Status reports configuration, inventory totals and the last recorded runs
func (a *Agent) Status(ctx context.Context) (Status, error) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Inventory:         stats,
		LastRun:           a.state.Snapshot(),
		DBPath:            a.store.Path(),
		StatePath:         a.state.FilePath(),
		ScanPaths:         a.config.Scan.Paths,
		ThresholdDays:     a.config.Alert.ThresholdDays,
		WebhookConfigured: a.config.WebhookConfigured(),
	}, nil
}

// Close writes the metrics textfile when configured and closes the inventory
func (a *Agent) Close() error {
	if path := a.config.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}

	_ = a.logger.Sync()
	return a.store.Close()
}

func (a *Agent) refreshInventoryMetrics(ctx context.Context) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		a.logger.Debug("failed to read inventory stats for metrics", zap.Error(err))
		return
	}
	metrics.SetInventoryRows(stats.BySource)
}

func (a *Agent) saveState() {
	if err := a.state.Save(); err != nil {
		a.logger.Warn("failed to save run state", zap.String("path", a.state.FilePath()), zap.Error(err))
	}
}

// setupLogger creates a configured zap logger.
// Logs go to stderr so table and JSON output on stdout stay clean.
func setupLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zapLevel,
	)

	return zap.New(core), nil
}
