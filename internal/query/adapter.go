// Package query serves filtered, column-pruned reads to the dashboard. The
// adapter runs in one of two modes fixed at construction: SNAPSHOT, a
// read-only connection to the persisted derived table, or RAW, an in-memory
// engine over the source partitions with decode/filter/derivation re-run in
// process. Internal failures never surface as errors; callers get an empty
// result with a distinguishable status.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/obs-infancia/sinanetl/internal/config"
	"github.com/obs-infancia/sinanetl/internal/decode"
	"github.com/obs-infancia/sinanetl/internal/derive"
	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/popfilter"
	"github.com/obs-infancia/sinanetl/internal/sinan"
	"github.com/obs-infancia/sinanetl/internal/store"
)

// Mode selects the data source; decided once, never re-evaluated per query.
type Mode int

const (
	ModeSnapshot Mode = iota
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeSnapshot {
		return "snapshot"
	}
	return "raw"
}

// Status distinguishes "no rows matched" from "the query itself failed" for
// the presentation layer.
type Status string

const (
	StatusOK     Status = "ok"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// All is the sentinel filter value meaning "no restriction".
const All = "Todos"

// ErrNoData: neither a snapshot nor raw partitions are available.
var ErrNoData = errors.New("no snapshot and no raw partitions available")

// Filter parameterizes one tabular fetch. Zero YearMin/YearMax disables the
// year restriction.
type Filter struct {
	YearMin      int
	YearMax      int
	UF           string
	Municipality string
	ViolenceType string
}

func (f Filter) key() string {
	return fmt.Sprintf("%d|%d|%s|%s|%s", f.YearMin, f.YearMax, f.UF, f.Municipality, f.ViolenceType)
}

func restricted(v string) bool { return v != "" && v != All && !strings.EqualFold(v, "all") }

// Result is one tabular answer.
type Result struct {
	Status  Status
	Columns []string
	Rows    []sinan.Record
}

// projection is the fixed column set the dashboard consumes; never SELECT *
// unless the snapshot predates some derived column.
var projection = []string{
	sinan.ColDtNotific, sinan.ColDtOcor, sinan.ColNuAno,
	sinan.ColAnoNotific, sinan.ColUFNotific, sinan.ColMunicipio,
	sinan.ColTipoViolencia, sinan.ColFaixaEtaria, sinan.ColSexo,
	sinan.ColAutorSexoCorr, sinan.ColGrauParentesco,
	sinan.ColTempoOcorDen, sinan.ColEncaminhamentos,
}

// Adapter owns a read path over the snapshot or the raw partitions.
type Adapter struct {
	db      *sql.DB
	mode    Mode
	cols    map[string]bool // columns of the active relation
	rawRel  string
	dicts   *dict.Set
	timeout time.Duration
	cache   *lru.Cache[string, *Result]
	group   singleflight.Group
	logger  *zap.Logger
}

// New probes the snapshot store and falls back to the raw partitions when it
// is missing. The chosen mode is fixed for the adapter's lifetime.
func New(cfg *config.Config, dicts *dict.Set, logger *zap.Logger) (*Adapter, error) {
	cache, err := lru.New[string, *Result](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}
	a := &Adapter{
		dicts:   dicts,
		timeout: cfg.QueryTimeout,
		cache:   cache,
		logger:  logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()

	if _, statErr := os.Stat(cfg.DatabasePath); statErr == nil {
		db, err := store.Open(cfg.DatabasePath, true)
		if err == nil && store.HasTable(ctx, db, store.SnapshotTable) {
			cols, err := store.Columns(ctx, db, store.SnapshotTable)
			if err == nil {
				a.db = db
				a.mode = ModeSnapshot
				a.cols = toSet(cols)
				logger.Info("query adapter in snapshot mode", zap.String("db", cfg.DatabasePath))
				return a, nil
			}
		}
		if db != nil {
			_ = db.Close()
		}
	}

	// Raw fallback: slower, explicitly allowed, not an error.
	files, _ := filepath.Glob(filepath.Join(cfg.RawDataDir, "*.parquet"))
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.RawDataDir, ErrNoData)
	}
	db, err := store.OpenMemory()
	if err != nil {
		return nil, err
	}
	rel := store.ParquetRelation(cfg.RawDataDir)
	cols, err := store.Columns(ctx, db, rel)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("describe raw partitions: %w", err)
	}
	a.db = db
	a.mode = ModeRaw
	a.rawRel = rel
	a.cols = toSet(cols)
	logger.Info("query adapter in raw fallback mode",
		zap.String("dir", cfg.RawDataDir), zap.Int("partitions", len(files)))
	return a, nil
}

// Mode reports the data source chosen at construction.
func (a *Adapter) Mode() Mode { return a.mode }

// Close releases the store connection.
func (a *Adapter) Close() error { return a.db.Close() }

func toSet(cols []string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}

// FilteredCases is the single tabular-fetch operation. Identical concurrent
// calls collapse onto one execution and results are memoized per filter set.
func (a *Adapter) FilteredCases(ctx context.Context, f Filter) *Result {
	key := f.key()
	if res, ok := a.cache.Get(key); ok {
		cacheHits.Inc()
		return res
	}
	v, _, _ := a.group.Do(key, func() (any, error) {
		res := a.fetch(ctx, f)
		if res.Status != StatusFailed {
			a.cache.Add(key, res)
		}
		return res, nil
	})
	return v.(*Result)
}

func (a *Adapter) fetch(ctx context.Context, f Filter) *Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	timer := prometheus.NewTimer(queryDuration.WithLabelValues(a.mode.String()))
	defer timer.ObserveDuration()

	var (
		frame *sinan.Frame
		err   error
	)
	if a.mode == ModeSnapshot {
		frame, err = a.fetchSnapshot(ctx, f)
	} else {
		frame, err = a.fetchRaw(ctx, f)
	}
	if err != nil {
		a.logger.Error("query failed", zap.String("mode", a.mode.String()), zap.Error(err))
		queryResults.WithLabelValues(string(StatusFailed)).Inc()
		return &Result{Status: StatusFailed}
	}
	if frame.Len() == 0 {
		queryResults.WithLabelValues(string(StatusEmpty)).Inc()
		return &Result{Status: StatusEmpty, Columns: frame.Columns()}
	}
	queryResults.WithLabelValues(string(StatusOK)).Inc()
	return &Result{Status: StatusOK, Columns: frame.Columns(), Rows: frame.Records}
}

func (a *Adapter) fetchSnapshot(ctx context.Context, f Filter) (*sinan.Frame, error) {
	cols := "*" // degraded fallback when derived columns are missing
	if hasAll(a.cols, projection) {
		quoted := make([]string, len(projection))
		for i, c := range projection {
			quoted[i] = store.QuoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	} else {
		a.logger.Warn("snapshot missing derived columns, selecting all")
	}

	var (
		where []string
		args  []any
	)
	if clause, yargs := a.yearPredicate(f); clause != "" {
		where = append(where, clause)
		args = append(args, yargs...)
	}
	if restricted(f.UF) {
		if a.cols[sinan.ColUFNotific] {
			where = append(where, store.QuoteIdent(sinan.ColUFNotific)+" = ?")
			args = append(args, f.UF)
		} else if clause, carg, ok := a.ufCodePredicate(f.UF); ok {
			where = append(where, clause)
			args = append(args, carg)
		}
	}
	if restricted(f.Municipality) && a.cols[sinan.ColMunicipio] {
		where = append(where, store.QuoteIdent(sinan.ColMunicipio)+" = ?")
		args = append(args, f.Municipality)
	}
	if restricted(f.ViolenceType) && a.cols[sinan.ColTipoViolencia] {
		where = append(where, store.QuoteIdent(sinan.ColTipoViolencia)+" LIKE ?")
		args = append(args, "%"+f.ViolenceType+"%")
	}

	query := fmt.Sprintf("SELECT %s FROM %s", cols, store.SnapshotTable)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return store.ScanFrame(rows)
}

// fetchRaw queries the partitions with the age filter pushed down, then
// replays decode, the violence filter and the derivations in process before
// applying the name-based filters (raw data only carries codes).
func (a *Adapter) fetchRaw(ctx context.Context, f Filter) (*sinan.Frame, error) {
	var proj []string
	for c := range a.cols {
		if _, known := sinan.FieldByName(c); known {
			proj = append(proj, store.QuoteIdent(c))
		}
	}
	if len(proj) == 0 {
		return nil, errors.New("no known columns in raw partitions")
	}

	where := []string{}
	var args []any
	if a.cols[sinan.ColNuIdadeN] {
		where = append(where, store.AgeCodePredicate())
	}
	if clause, yargs := a.yearPredicate(f); clause != "" {
		where = append(where, clause)
		args = append(args, yargs...)
	}
	if restricted(f.UF) {
		if clause, carg, ok := a.ufCodePredicate(f.UF); ok {
			where = append(where, clause)
			args = append(args, carg)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(proj, ", "), a.rawRel)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("raw query: %w", err)
	}
	frame, err := store.ScanFrame(rows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	frame = decode.Apply(frame, a.dicts, a.logger)
	frame = popfilter.Filter(frame, true, a.logger)
	frame = derive.New(a.dicts, a.logger).Apply(frame)

	// Residual filters on derived names.
	if restricted(f.Municipality) || restricted(f.ViolenceType) {
		kept := frame.Records[:0:0]
		for _, r := range frame.Records {
			if restricted(f.Municipality) && r.Municipio != f.Municipality {
				continue
			}
			if restricted(f.ViolenceType) && !strings.Contains(r.TipoViolencia, f.ViolenceType) {
				continue
			}
			kept = append(kept, r)
		}
		frame = sinan.NewFrame(kept, frame.Columns())
	}
	return frame, nil
}

// yearPredicate prefers the derived integer year, then the primary date
// column, then the raw numeric-year column; both raw and snapshot schemas
// are supported.
func (a *Adapter) yearPredicate(f Filter) (string, []any) {
	if f.YearMin == 0 && f.YearMax == 0 {
		return "", nil
	}
	hi := f.YearMax
	if hi == 0 {
		hi = 9999
	}
	args := []any{f.YearMin, hi}
	switch {
	case a.cols[sinan.ColAnoNotific]:
		return store.QuoteIdent(sinan.ColAnoNotific) + " BETWEEN ? AND ?", args
	case a.cols[sinan.ColDtNotific]:
		return fmt.Sprintf("TRY_CAST(SUBSTR(CAST(%s AS VARCHAR), 1, 4) AS INT) BETWEEN ? AND ?",
			store.QuoteIdent(sinan.ColDtNotific)), args
	case a.cols[sinan.ColNuAno]:
		return fmt.Sprintf("TRY_CAST(%s AS INT) BETWEEN ? AND ?",
			store.QuoteIdent(sinan.ColNuAno)), args
	default:
		return "", nil
	}
}

// ufCodePredicate maps the human-readable state name back to its code, the
// same static table used in derivation, mirrored.
func (a *Adapter) ufCodePredicate(name string) (string, any, bool) {
	code, ok := dict.UFCode(name)
	if !ok {
		return "", nil, false
	}
	col := ""
	switch {
	case a.cols[sinan.ColSgUFNot]:
		col = sinan.ColSgUFNot
	case a.cols[sinan.ColSgUF]:
		col = sinan.ColSgUF
	default:
		return "", nil, false
	}
	return fmt.Sprintf("CAST(%s AS VARCHAR) = ?", store.QuoteIdent(col)), code, true
}

func hasAll(set map[string]bool, cols []string) bool {
	for _, c := range cols {
		if !set[c] {
			return false
		}
	}
	return true
}
