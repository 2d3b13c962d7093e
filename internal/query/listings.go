package query

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/derive"
	"github.com/obs-infancia/sinanetl/internal/sinan"
	"github.com/obs-infancia/sinanetl/internal/store"
)

// Years lists the distinct notification years present in the active
// relation, ascending. Failures log and return an empty list.
func (a *Adapter) Years(ctx context.Context) []int {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var query string
	switch {
	case a.cols[sinan.ColAnoNotific]:
		query = fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY 1",
			store.QuoteIdent(sinan.ColAnoNotific), a.relation(), store.QuoteIdent(sinan.ColAnoNotific))
	case a.cols[sinan.ColNuAno]:
		query = fmt.Sprintf(
			"SELECT DISTINCT TRY_CAST(%s AS INT) AS ano FROM %s WHERE TRY_CAST(%s AS INT) IS NOT NULL ORDER BY 1",
			store.QuoteIdent(sinan.ColNuAno), a.relation(), store.QuoteIdent(sinan.ColNuAno))
	case a.cols[sinan.ColDtNotific]:
		query = fmt.Sprintf(
			"SELECT DISTINCT TRY_CAST(SUBSTR(CAST(%s AS VARCHAR), 1, 4) AS INT) AS ano FROM %s WHERE %s IS NOT NULL ORDER BY 1",
			store.QuoteIdent(sinan.ColDtNotific), a.relation(), store.QuoteIdent(sinan.ColDtNotific))
	default:
		return nil
	}

	var years []int
	err := a.scanStrings(ctx, query, func(v string) {
		if n := atoiSafe(v); n != 0 {
			years = append(years, n)
		}
	})
	if err != nil {
		a.logger.Error("years listing failed", zap.Error(err))
		return nil
	}
	sort.Ints(years)
	return years
}

// UFs lists the states present in the data: resolved names in snapshot mode,
// raw codes resolved through the static table in raw mode.
func (a *Adapter) UFs(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	col := ""
	switch {
	case a.cols[sinan.ColUFNotific]:
		col = sinan.ColUFNotific
	case a.cols[sinan.ColSgUFNot]:
		col = sinan.ColSgUFNot
	case a.cols[sinan.ColSgUF]:
		col = sinan.ColSgUF
	default:
		return nil
	}
	query := fmt.Sprintf(
		"SELECT DISTINCT CAST(%s AS VARCHAR) FROM %s WHERE %s IS NOT NULL ORDER BY 1",
		store.QuoteIdent(col), a.relation(), store.QuoteIdent(col))

	var out []string
	err := a.scanStrings(ctx, query, func(v string) {
		if col != sinan.ColUFNotific {
			// Raw mode returns codes; resolve them so callers always
			// see names.
			v = derive.UFLabel(v)
		}
		if v == "" || v == "N/A" || v == sinan.NotInformed {
			return
		}
		out = append(out, v)
	})
	if err != nil {
		a.logger.Error("uf listing failed", zap.Error(err))
		return nil
	}
	sort.Strings(out)
	return dedupe(out)
}

// Municipalities lists distinct resolved municipality names; snapshot mode
// only, since raw data carries unresolved codes.
func (a *Adapter) Municipalities(ctx context.Context) []string {
	if !a.cols[sinan.ColMunicipio] {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL AND %s NOT IN ('N/A', '%s') ORDER BY 1",
		store.QuoteIdent(sinan.ColMunicipio), a.relation(),
		store.QuoteIdent(sinan.ColMunicipio), store.QuoteIdent(sinan.ColMunicipio),
		store.EscapeString(sinan.NotInformed))

	var out []string
	if err := a.scanStrings(ctx, query, func(v string) { out = append(out, v) }); err != nil {
		a.logger.Error("municipality listing failed", zap.Error(err))
		return nil
	}
	return out
}

// Bucket is one aggregation group.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupable whitelists the columns a caller may aggregate by.
var groupable = map[string]bool{
	sinan.ColAnoNotific:      true,
	sinan.ColFaixaEtaria:     true,
	sinan.ColUFNotific:       true,
	sinan.ColMunicipio:       true,
	sinan.ColTipoViolencia:   true,
	sinan.ColSexo:            true,
	sinan.ColAutorSexoCorr:   true,
	sinan.ColGrauParentesco:  true,
	sinan.ColEncaminhamentos: true,
}

// Groupable reports whether a column may be aggregated by.
func Groupable(col string) bool { return groupable[col] }

// Aggregate returns grouped counts for one derived column under the given
// filters. In snapshot mode the grouping is pushed into the store; raw mode
// counts over the fetched, derived rows.
func (a *Adapter) Aggregate(ctx context.Context, by string, f Filter) ([]Bucket, Status) {
	if !groupable[by] {
		a.logger.Warn("aggregate on non-groupable column refused", zap.String("column", by))
		return nil, StatusFailed
	}

	if a.mode == ModeSnapshot && a.cols[by] {
		return a.aggregateSQL(ctx, by, f)
	}

	res := a.FilteredCases(ctx, f)
	if res.Status == StatusFailed {
		return nil, StatusFailed
	}
	counts := map[string]int{}
	for i := range res.Rows {
		counts[res.Rows[i].Value(by)]++
	}
	buckets := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket{Key: k, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Count > buckets[j].Count })
	if len(buckets) == 0 {
		return buckets, StatusEmpty
	}
	return buckets, StatusOK
}

func (a *Adapter) aggregateSQL(ctx context.Context, by string, f Filter) ([]Bucket, Status) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		where []string
		args  []any
	)
	if clause, yargs := a.yearPredicate(f); clause != "" {
		where = append(where, clause)
		args = append(args, yargs...)
	}
	if restricted(f.UF) && a.cols[sinan.ColUFNotific] {
		where = append(where, store.QuoteIdent(sinan.ColUFNotific)+" = ?")
		args = append(args, f.UF)
	}
	if restricted(f.Municipality) && a.cols[sinan.ColMunicipio] {
		where = append(where, store.QuoteIdent(sinan.ColMunicipio)+" = ?")
		args = append(args, f.Municipality)
	}
	if restricted(f.ViolenceType) && a.cols[sinan.ColTipoViolencia] {
		where = append(where, store.QuoteIdent(sinan.ColTipoViolencia)+" LIKE ?")
		args = append(args, "%"+f.ViolenceType+"%")
	}

	query := fmt.Sprintf("SELECT CAST(%s AS VARCHAR) AS k, COUNT(*) AS n FROM %s",
		store.QuoteIdent(by), store.SnapshotTable)
	if len(where) > 0 {
		query += " WHERE " + joinAnd(where)
	}
	query += " GROUP BY 1 ORDER BY 2 DESC"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		a.logger.Error("aggregate failed", zap.String("column", by), zap.Error(err))
		return nil, StatusFailed
	}
	defer func() { _ = rows.Close() }()

	var buckets []Bucket
	for rows.Next() {
		var k sql.NullString
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			a.logger.Error("aggregate scan failed", zap.Error(err))
			return nil, StatusFailed
		}
		buckets = append(buckets, Bucket{Key: k.String, Count: n})
	}
	if err := rows.Err(); err != nil {
		a.logger.Error("aggregate iteration failed", zap.Error(err))
		return nil, StatusFailed
	}
	if len(buckets) == 0 {
		return buckets, StatusEmpty
	}
	return buckets, StatusOK
}

func (a *Adapter) relation() string {
	if a.mode == ModeSnapshot {
		return store.SnapshotTable
	}
	return a.rawRel
}

func (a *Adapter) scanStrings(ctx context.Context, query string, fn func(string)) error {
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return err
		}
		if v.Valid {
			fn(v.String)
		}
	}
	return rows.Err()
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func joinAnd(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}

func dedupe(sorted []string) []string {
	out := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			out = append(out, v)
		}
	}
	return out
}
