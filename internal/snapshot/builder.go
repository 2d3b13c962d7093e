// Package snapshot rebuilds the persisted analytic table: it reads every raw
// Parquet partition with the age filter pushed down, runs decode → population
// filter → derivation in process, and bulk-loads the result into a shadow
// table that replaces the live one in a single swap.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/config"
	"github.com/obs-infancia/sinanetl/internal/decode"
	"github.com/obs-infancia/sinanetl/internal/derive"
	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/popfilter"
	"github.com/obs-infancia/sinanetl/internal/sinan"
	"github.com/obs-infancia/sinanetl/internal/store"
)

var (
	// ErrNoPartitions: no raw partition could be read at all.
	ErrNoPartitions = errors.New("no readable raw partitions")
	// ErrEmptySnapshot: the mandatory filters left zero rows; a silently
	// empty "successful" snapshot must not be produced.
	ErrEmptySnapshot = errors.New("zero rows after population filtering")
)

const (
	shadowTable = store.SnapshotTable + "_new"
	batchSize   = 10000
)

// sourceColumns are the raw columns pulled from the partitions when present;
// REL_* columns are discovered per partition and added on top.
var sourceColumns = []string{
	sinan.ColDtNotific, sinan.ColDtOcor, sinan.ColNuAno,
	sinan.ColSgUFNot, sinan.ColSgUF, sinan.ColIDMunicip, sinan.ColIDMnResi,
	sinan.ColNuIdadeN, sinan.ColCsSexo, sinan.ColCsRaca, sinan.ColCsEscolN,
	sinan.ColSitConjug, sinan.ColLocalOcor, sinan.ColAutorSexo, sinan.ColAutorAlco,
	sinan.ColViolFisic, sinan.ColViolPsico, sinan.ColViolSexu, sinan.ColViolInfan,
	sinan.ColRedeSau, sinan.ColRedeEduca,
	sinan.ColEncDeleg, sinan.ColEncDPCA, sinan.ColEncMPU, sinan.ColEncVara,
}

// Stats summarizes a completed build.
type Stats struct {
	Partitions      int       `json:"partitions"`
	PartitionErrors int       `json:"partition_errors"`
	RawRows         int       `json:"raw_rows"`
	Rows            int       `json:"rows"`
	Columns         []string  `json:"columns"`
	BuiltAt         time.Time `json:"built_at"`
}

// Builder orchestrates one snapshot rebuild. Builds must not run
// concurrently with each other; a single build-then-swap is assumed.
type Builder struct {
	cfg    *config.Config
	dicts  *dict.Set
	logger *zap.Logger
}

func New(cfg *config.Config, dicts *dict.Set, logger *zap.Logger) *Builder {
	return &Builder{cfg: cfg, dicts: dicts, logger: logger}
}

// Build regenerates the snapshot from the raw partitions. It is idempotent:
// re-running replaces the previous table wholesale.
func (b *Builder) Build(ctx context.Context) (*Stats, error) {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(b.cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := store.Open(b.cfg.DatabasePath, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	frame, stats, err := b.readPartitions(ctx, db)
	if err != nil {
		return nil, err
	}

	frame = decode.Apply(frame, b.dicts, b.logger)
	// Age was pushed down at the storage query; only the violence filter
	// remains to run here.
	frame = popfilter.Filter(frame, true, b.logger)
	frame = derive.New(b.dicts, b.logger).Apply(frame)

	if frame.Len() == 0 {
		return nil, fmt.Errorf("build %s: %w", store.SnapshotTable, ErrEmptySnapshot)
	}

	if err := b.writeSnapshot(ctx, db, frame); err != nil {
		return nil, err
	}

	stats.Rows = frame.Len()
	stats.Columns = snapshotColumns()
	stats.BuiltAt = time.Now().UTC()
	if err := b.writeMetadata(stats); err != nil {
		b.logger.Warn("metadata write failed", zap.Error(err))
	}

	b.logger.Info("snapshot built",
		zap.Int("rows", stats.Rows),
		zap.Int("partitions", stats.Partitions),
		zap.Duration("elapsed", time.Since(start)))
	return stats, nil
}

// readPartitions reads each partition file separately so a single corrupt
// file is skipped rather than failing the build.
func (b *Builder) readPartitions(ctx context.Context, db *sql.DB) (*sinan.Frame, *Stats, error) {
	files, err := filepath.Glob(filepath.Join(b.cfg.RawDataDir, "*.parquet"))
	if err != nil {
		return nil, nil, fmt.Errorf("glob partitions: %w", err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", b.cfg.RawDataDir, ErrNoPartitions)
	}

	stats := &Stats{}
	var records []sinan.Record
	seen := map[string]bool{}

	for _, file := range files {
		frame, err := b.readPartition(ctx, db, file)
		if err != nil {
			stats.PartitionErrors++
			b.logger.Warn("skipping unreadable partition",
				zap.String("file", filepath.Base(file)), zap.Error(err))
			continue
		}
		stats.Partitions++
		stats.RawRows += frame.Len()
		records = append(records, frame.Records...)
		for _, c := range frame.Columns() {
			seen[c] = true
		}
		b.logger.Info("partition loaded",
			zap.String("file", filepath.Base(file)), zap.Int("rows", frame.Len()))
	}
	if stats.Partitions == 0 {
		return nil, nil, fmt.Errorf("%s: %w", b.cfg.RawDataDir, ErrNoPartitions)
	}

	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	return sinan.NewFrame(records, cols), stats, nil
}

func (b *Builder) readPartition(ctx context.Context, db *sql.DB, file string) (*sinan.Frame, error) {
	relation := store.ParquetFileRelation(file)
	available, err := store.Columns(ctx, db, relation)
	if err != nil {
		return nil, err
	}
	avail := make(map[string]bool, len(available))
	for _, c := range available {
		avail[c] = true
	}

	var projection []string
	for _, c := range sourceColumns {
		if avail[c] {
			projection = append(projection, store.QuoteIdent(c))
		}
	}
	for _, c := range available {
		if strings.HasPrefix(c, sinan.RelPrefix) {
			projection = append(projection, store.QuoteIdent(c))
		}
	}
	if len(projection) == 0 {
		return nil, fmt.Errorf("no known columns in partition")
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(projection, ", "), relation)
	if avail[sinan.ColNuIdadeN] {
		query += " WHERE " + store.AgeCodePredicate()
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read partition: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return store.ScanFrame(rows)
}

func (b *Builder) writeMetadata(stats *Stats) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(filepath.Dir(b.cfg.DatabasePath), "metadata.json")
	return os.WriteFile(path, data, 0o644)
}
