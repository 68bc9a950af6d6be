// Package discovery finds certificate files on local storage and parses them into
// inventory records.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/certwatch-app/cw-inventory/internal/model"
	"github.com/certwatch-app/cw-inventory/internal/parser"
)

// Extensions lists the recognized certificate file extensions (lowercase)
var Extensions = []string{".pem", ".crt", ".cer"}

// SkipReason explains why a path produced no record
type SkipReason string

// Skip reasons
const (
	SkipNotFound   SkipReason = "not_found"
	SkipExtension  SkipReason = "unsupported_extension"
	SkipUnreadable SkipReason = "unreadable"
	SkipUnparsable SkipReason = "unparsable"
	SkipWalkError  SkipReason = "walk_error"
	SkipNotRegular SkipReason = "not_regular_file"
)

const (
	defaultWorkers = 8
	maxReadSize    = 10 << 20
)

// Skipped is a path that was considered and rejected
type Skipped struct {
	Err    error
	Path   string
	Reason SkipReason
}

// Report is the outcome of a discovery run
type Report struct {
	Records []model.Record
	Skipped []Skipped
}

// Discoverer walks filesystem roots and parses certificate files
// Fields are ordered for optimal memory alignment
type Discoverer struct {
	logger      *zap.Logger
	concurrency int
}

// New creates a Discoverer that parses up to concurrency files at once
func New(concurrency int, logger *zap.Logger) *Discoverer {
	if concurrency < 1 {
		concurrency = defaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		logger:      logger,
		concurrency: concurrency,
	}
}

// HasCertExtension reports whether path ends with a recognized extension, ignoring case
func HasCertExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover finds and parses every candidate under roots.
// Parse failures are reported in Report.Skipped and never abort the run; the only
// error returned is the context's.
func (d *Discoverer) Discover(ctx context.Context, roots []string) (Report, error) {
	candidates, skipped := d.collect(ctx, roots)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	outcomes := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, path := range candidates {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = d.parseFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		Records: make([]model.Record, 0, len(candidates)),
		Skipped: skipped,
	}
	for _, o := range outcomes {
		if o.skip != nil {
			report.Skipped = append(report.Skipped, *o.skip)
			continue
		}
		report.Records = append(report.Records, o.record)
	}

	sort.Slice(report.Records, func(i, j int) bool {
		a, b := report.Records[i], report.Records[j]
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Fingerprint < b.Fingerprint
	})
	sort.SliceStable(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Path < report.Skipped[j].Path
	})

	d.logger.Debug("discovery finished",
		zap.Int("roots", len(roots)),
		zap.Int("candidates", len(candidates)),
		zap.Int("records", len(report.Records)),
		zap.Int("skipped", len(report.Skipped)),
	)

	return report, nil
}

type outcome struct {
	skip   *Skipped
	record model.Record
}

// collect expands roots into a sorted, de-duplicated list of candidate files
func (d *Discoverer) collect(ctx context.Context, roots []string) ([]string, []Skipped) {
	seen := make(map[string]struct{})
	var candidates []string
	var skipped []Skipped

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}

	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}

		abs, err := filepath.Abs(root)
		if err != nil {
			skipped = append(skipped, Skipped{Path: root, Reason: SkipNotFound, Err: err})
			continue
		}

		info, err := os.Stat(abs)
		if err != nil {
			skipped = append(skipped, Skipped{Path: abs, Reason: SkipNotFound, Err: err})
			continue
		}

		if !info.IsDir() {
			switch {
			case !info.Mode().IsRegular():
				skipped = append(skipped, Skipped{Path: abs, Reason: SkipNotRegular})
			case !HasCertExtension(abs):
				skipped = append(skipped, Skipped{Path: abs, Reason: SkipExtension})
			default:
				add(abs)
			}
			continue
		}

		walkErr := filepath.WalkDir(abs, func(path string, entry fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return fs.SkipAll
			}
			if err != nil {
				skipped = append(skipped, Skipped{Path: path, Reason: SkipWalkError, Err: err})
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if entry.IsDir() || !HasCertExtension(path) {
				return nil
			}
			if !isRegular(path, entry) {
				return nil
			}
			add(filepath.Clean(path))
			return nil
		})
		if walkErr != nil {
			skipped = append(skipped, Skipped{Path: abs, Reason: SkipWalkError, Err: walkErr})
		}
	}

	sort.Strings(candidates)
	return candidates, skipped
}

// isRegular accepts regular files and symlinks that resolve to regular files
func isRegular(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (d *Discoverer) parseFile(path string) outcome {
	info, err := os.Stat(path)
	if err != nil {
		return skip(path, SkipUnreadable, err)
	}
	if info.Size() > maxReadSize {
		return skip(path, SkipUnparsable, errors.New("file too large for a certificate"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return skip(path, SkipUnreadable, err)
	}

	cert, err := parser.Parse(data)
	if err != nil {
		d.logger.Debug("skipping file", zap.String("path", path), zap.Error(err))
		return skip(path, SkipUnparsable, err)
	}

	record, err := model.NewRecord(cert, model.SourceFilesystem, path)
	if err != nil {
		return skip(path, SkipUnparsable, err)
	}
	return outcome{record: record}
}

func skip(path string, reason SkipReason, err error) outcome {
	return outcome{skip: &Skipped{Path: path, Reason: reason, Err: err}}
}
