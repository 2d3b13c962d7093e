// Package store wraps DuckDB access shared by the snapshot builder and the
// query adapter: connection setup, relation introspection and scanning rows
// into the typed record model.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// SnapshotTable is the persisted, fully derived table name.
const SnapshotTable = "violence_processed"

// Open opens a DuckDB database file. Session settings do not propagate
// across pooled connections, so the pool is pinned to one connection.
func Open(path string, readOnly bool) (*sql.DB, error) {
	dsn := path
	if readOnly {
		dsn += "?access_mode=read_only"
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenMemory opens an in-memory DuckDB, used for querying raw Parquet
// partitions directly.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open in-memory duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// ParquetRelation returns the read_parquet relation over every partition in
// dir, unioned by column name so partitions with differing schemas combine.
func ParquetRelation(dir string) string {
	glob := filepath.Join(dir, "*.parquet")
	return fmt.Sprintf("read_parquet('%s', hive_partitioning=1, union_by_name=1)", EscapeString(glob))
}

// ParquetFileRelation returns the relation for one partition file.
func ParquetFileRelation(path string) string {
	return fmt.Sprintf("read_parquet('%s')", EscapeString(path))
}

// EscapeString doubles single quotes for embedding in a SQL string literal.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// QuoteIdent double-quotes an identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Columns introspects a relation (table name or table function call) and
// returns its column names in declaration order.
func Columns(ctx context.Context, db *sql.DB, relation string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+relation+" LIMIT 0")
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", relation, err)
	}
	defer func() { _ = rows.Close() }()

	// DESCRIBE yields column_name, column_type, null, key, default, extra.
	outCols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		vals := make([]any, len(outCols))
		var name sql.NullString
		vals[0] = &name
		for i := 1; i < len(vals); i++ {
			vals[i] = new(sql.RawBytes)
		}
		if err := rows.Scan(vals...); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		names = append(names, name.String)
	}
	return names, rows.Err()
}

// HasTable reports whether a table exists in the open database.
func HasTable(ctx context.Context, db *sql.DB, name string) bool {
	var n int
	err := db.QueryRowContext(ctx,
		"SELECT count(*) FROM information_schema.tables WHERE table_name = ?", name).Scan(&n)
	return err == nil && n > 0
}

// ScanFrame drains a result set into a frame. Every cell is read through
// NullString; DuckDB's numeric and date values stringify on the way in and
// the derivation rules tolerate those forms.
func ScanFrame(rows *sql.Rows) (*sinan.Frame, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("result columns: %w", err)
	}

	var records []sinan.Record
	cells := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var r sinan.Record
		for i, col := range cols {
			if cells[i].Valid {
				r.SetValue(col, cells[i].String)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return sinan.NewFrame(records, cols), nil
}

// AgeCodePredicate builds the pushdown predicate restricting NU_IDADE_N to
// the raw 0-17 age codes.
func AgeCodePredicate() string {
	codes := sinan.AgeCodes()
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = "'" + c + "'"
	}
	return sinan.ColNuIdadeN + " IN (" + strings.Join(quoted, ", ") + ")"
}
