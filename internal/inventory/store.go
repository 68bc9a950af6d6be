// Package inventory persists discovered certificates in a SQLite table keyed by
// (fingerprint, source, location) and answers expiry-window queries over it.
package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-app/cw-inventory/internal/model"
)

// timeLayout is fixed width so that lexical order on the TEXT columns is chronological
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Filter narrows List results. Zero values mean "no filter".
type Filter struct {
	// ExpiringWithinDays keeps rows whose days left is at most this value,
	// already expired rows included
	ExpiringWithinDays *int
	Source             string
}

// Days returns a pointer to n, for Filter.ExpiringWithinDays
func Days(n int) *int {
	return &n
}

// Stats summarizes the inventory
type Stats struct {
	BySource      map[string]int
	Total         int
	Expired       int
	UnknownExpiry int
}

// Store is the certificate inventory
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	path   string
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for first_seen, last_seen and days left
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens (creating if needed) the inventory database at path and migrates its schema
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: zap.NewNop(),
		now:    time.Now,
		path:   path,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// UpsertMany reconciles records against the inventory in a single transaction.
// A matching identity has its mutable fields and last_seen updated; anything else is
// inserted with first_seen = last_seen = now. It returns the number of records
// processed. Either every record is committed or none is.
func (s *Store) UpsertMany(ctx context.Context, records []model.Record) (int, error) {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	ts := formatTime(s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	update, err := tx.PrepareContext(ctx, `
		UPDATE cert_inventory
		SET subject = ?, issuer = ?, not_before = ?, not_after = ?, sans_json = ?, last_seen = ?
		WHERE fingerprint = ? AND source = ? AND location = ?`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare update: %w", err)
	}
	defer update.Close()

	insert, err := tx.PrepareContext(ctx, `
		INSERT INTO cert_inventory
			(fingerprint, source, location, subject, issuer, not_before, not_after, sans_json, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	inserted := 0
	for _, r := range records {
		sans, err := encodeSANs(r.SANs)
		if err != nil {
			return 0, fmt.Errorf("failed to encode SANs for %s: %w", r.Location, err)
		}
		notBefore := formatOptionalTime(r.NotBefore)
		notAfter := formatOptionalTime(r.NotAfter)

		res, err := update.ExecContext(ctx,
			r.Subject, r.Issuer, notBefore, notAfter, sans, ts,
			r.Fingerprint, r.Source, r.Location,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update %s: %w", r.Location, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read update result: %w", err)
		}
		if n > 0 {
			continue
		}

		if _, err := insert.ExecContext(ctx,
			r.Fingerprint, r.Source, r.Location, r.Subject, r.Issuer,
			notBefore, notAfter, sans, ts, ts,
		); err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", r.Location, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}

	s.logger.Debug("upsert committed",
		zap.Int("records", len(records)),
		zap.Int("inserted", inserted),
		zap.Int("updated", len(records)-inserted),
	)

	return len(records), nil
}

// List returns inventory rows ordered by expiry, soonest first, with rows of unknown
// expiry last. Every row with a known expiry carries DaysLeft. With
// ExpiringWithinDays set, only rows at or below the threshold are returned and rows of
// unknown expiry are dropped.
func (s *Store) List(ctx context.Context, filter Filter) ([]model.Row, error) {
	query := `
		SELECT fingerprint, source, location, subject, issuer, not_before, not_after,
		       sans_json, first_seen, last_seen
		FROM cert_inventory`
	var args []any
	if filter.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY (not_after IS NULL OR not_after = ''), not_after ASC, location ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	now := s.now()
	var out []model.Row
	for rows.Next() {
		row, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}

		if row.ExpiryKnown() {
			days := model.DaysLeft(row.NotAfter, now)
			row.DaysLeft = &days
		}

		if filter.ExpiringWithinDays != nil {
			if row.DaysLeft == nil || *row.DaysLeft > *filter.ExpiringWithinDays {
				continue
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	// values the database orders as text but that do not parse still go last
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysLeft != nil && out[j].DaysLeft == nil
	})

	return out, nil
}

// Get returns the row for key
func (s *Store) Get(ctx context.Context, key model.Key) (model.Row, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, source, location, subject, issuer, not_before, not_after,
		       sans_json, first_seen, last_seen
		FROM cert_inventory
		WHERE fingerprint = ? AND source = ? AND location = ?`,
		key.Fingerprint, key.Source, key.Location,
	)
	if err != nil {
		return model.Row{}, false, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return model.Row{}, false, rows.Err()
	}
	row, err := s.scanRow(rows)
	if err != nil {
		return model.Row{}, false, err
	}
	if row.ExpiryKnown() {
		days := model.DaysLeft(row.NotAfter, s.now())
		row.DaysLeft = &days
	}
	return row, true, nil
}

// Purge deletes every row, or only the rows of source when it is non-empty, and
// returns the number deleted.
func (s *Store) Purge(ctx context.Context, source string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var res sql.Result
	if source != "" {
		res, err = tx.ExecContext(ctx, `DELETE FROM cert_inventory WHERE source = ?`, source)
	} else {
		res, err = tx.ExecContext(ctx, `DELETE FROM cert_inventory`)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to purge inventory: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purge result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}

	s.logger.Debug("inventory purged", zap.String("source", source), zap.Int64("deleted", n))
	return int(n), nil
}

// Stats counts rows by source and by expiry state
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{BySource: make(map[string]int)}
	for _, row := range rows {
		stats.BySource[row.Source]++
		stats.Total++
		switch {
		case row.DaysLeft == nil:
			stats.UnknownExpiry++
		case row.NotAfter.Before(s.now()):
			stats.Expired++
		}
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRow(sc scanner) (model.Row, error) {
	var (
		row                           model.Row
		subject, issuer               sql.NullString
		notBefore, notAfter           sql.NullString
		sansJSON, firstSeen, lastSeen string
	)
	if err := sc.Scan(
		&row.Fingerprint, &row.Source, &row.Location, &subject, &issuer,
		&notBefore, &notAfter, &sansJSON, &firstSeen, &lastSeen,
	); err != nil {
		return model.Row{}, fmt.Errorf("failed to scan inventory row: %w", err)
	}

	row.Subject = subject.String
	row.Issuer = issuer.String
	row.NotBefore = s.parseStoredTime(notBefore.String, row.Location, "not_before")
	row.NotAfter = s.parseStoredTime(notAfter.String, row.Location, "not_after")
	row.FirstSeen = s.parseStoredTime(firstSeen, row.Location, "first_seen")
	row.LastSeen = s.parseStoredTime(lastSeen, row.Location, "last_seen")
	row.SANs = s.decodeSANs(sansJSON, row.Location)

	return row, nil
}

// parseStoredTime accepts any RFC 3339 value; an empty or malformed value yields the
// zero time, which callers treat as unknown
func (s *Store) parseStoredTime(value, location, column string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		s.logger.Debug("malformed timestamp in inventory",
			zap.String("location", location),
			zap.String("column", column),
			zap.String("value", value),
		)
		return time.Time{}
	}
	return t.UTC()
}

func (s *Store) decodeSANs(value, location string) []string {
	sans := []string{}
	if value == "" {
		return sans
	}
	if err := json.Unmarshal([]byte(value), &sans); err != nil {
		s.logger.Debug("malformed SAN list in inventory", zap.String("location", location))
		return []string{}
	}
	return sans
}

func encodeSANs(sans []string) (string, error) {
	if sans == nil {
		sans = []string{}
	}
	b, err := json.Marshal(sans)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatOptionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}
