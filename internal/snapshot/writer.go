package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/sinan"
	"github.com/obs-infancia/sinanetl/internal/store"
)

// snapshotSchema declares the persisted table. Dates are stored typed so the
// storage-level indexes and range predicates work without casts; the two
// integer derived columns likewise.
var snapshotSchema = []struct {
	name string
	typ  string
}{
	{sinan.ColDtNotific, "DATE"},
	{sinan.ColDtOcor, "DATE"},
	{sinan.ColNuAno, "VARCHAR"},
	{sinan.ColNuIdadeN, "VARCHAR"},
	{sinan.ColSgUFNot, "VARCHAR"},
	{sinan.ColIDMunicip, "VARCHAR"},
	{sinan.ColCsSexo, "VARCHAR"},
	{sinan.ColCsRaca, "VARCHAR"},
	{sinan.ColCsEscolN, "VARCHAR"},
	{sinan.ColSitConjug, "VARCHAR"},
	{sinan.ColLocalOcor, "VARCHAR"},
	{sinan.ColAutorSexo, "VARCHAR"},
	{sinan.ColAutorAlco, "VARCHAR"},
	{sinan.ColViolFisic, "VARCHAR"},
	{sinan.ColViolPsico, "VARCHAR"},
	{sinan.ColViolSexu, "VARCHAR"},
	{sinan.ColViolInfan, "VARCHAR"},
	{sinan.ColRedeSau, "VARCHAR"},
	{sinan.ColRedeEduca, "VARCHAR"},
	{sinan.ColAnoNotific, "INTEGER"},
	{sinan.ColFaixaEtaria, "VARCHAR"},
	{sinan.ColUFNotific, "VARCHAR"},
	{sinan.ColMunicipio, "VARCHAR"},
	{sinan.ColTipoViolencia, "VARCHAR"},
	{sinan.ColSexo, "VARCHAR"},
	{sinan.ColAutorSexoCorr, "VARCHAR"},
	{sinan.ColGrauParentesco, "VARCHAR"},
	{sinan.ColTempoOcorDen, "INTEGER"},
	{sinan.ColEncaminhamentos, "VARCHAR"},
}

func snapshotColumns() []string {
	out := make([]string, len(snapshotSchema))
	for i, c := range snapshotSchema {
		out[i] = c.name
	}
	return out
}

// writeSnapshot bulk-loads the derived frame into a shadow table, swaps it
// in as the live snapshot in one transaction, then rebuilds the indexes. No
// partial snapshot is ever queryable mid-rebuild.
func (b *Builder) writeSnapshot(ctx context.Context, db *sql.DB, f *sinan.Frame) error {
	var ddl []string
	for _, c := range snapshotSchema {
		ddl = append(ddl, store.QuoteIdent(c.name)+" "+c.typ)
	}
	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", shadowTable, strings.Join(ddl, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create shadow table: %w", err)
	}

	if err := b.bulkInsert(ctx, db, f); err != nil {
		return err
	}

	// Swap: drop-and-rename inside one transaction.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin swap: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+store.SnapshotTable); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("drop previous snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", shadowTable, store.SnapshotTable)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("swap snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit swap: %w", err)
	}

	// Secondary indexes for the common point/range filters.
	for _, idx := range []struct{ name, col string }{
		{"idx_age", sinan.ColNuIdadeN},
		{"idx_date", sinan.ColDtNotific},
	} {
		if _, err := db.ExecContext(ctx, "DROP INDEX IF EXISTS "+idx.name); err != nil {
			return fmt.Errorf("drop index %s: %w", idx.name, err)
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s(%s)", idx.name, store.SnapshotTable, store.QuoteIdent(idx.col))
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// bulkInsert loads the frame through a prepared statement, committing in
// batches to bound transaction size.
func (b *Builder) bulkInsert(ctx context.Context, db *sql.DB, f *sinan.Frame) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(snapshotSchema)), ", ")
	var quoted []string
	for _, c := range snapshotSchema {
		quoted = append(quoted, store.QuoteIdent(c.name))
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		shadowTable, strings.Join(quoted, ", "), placeholders)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}

	count := 0
	start := time.Now()
	for i := range f.Records {
		args := insertArgs(&f.Records[i])
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("insert row %d: %w", i, err)
		}
		count++
		if count >= batchSize {
			if err := commitBatch(stmt, tx); err != nil {
				return err
			}
			tx, err = db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin insert batch: %w", err)
			}
			stmt, err = tx.PrepareContext(ctx, insert)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("prepare insert batch: %w", err)
			}
			count = 0
		}
	}
	if err := commitBatch(stmt, tx); err != nil {
		return err
	}
	b.logger.Info("rows loaded", zap.Int("rows", f.Len()), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func commitBatch(stmt *sql.Stmt, tx *sql.Tx) error {
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}
	return nil
}

func insertArgs(r *sinan.Record) []any {
	args := make([]any, 0, len(snapshotSchema))
	for _, c := range snapshotSchema {
		switch c.name {
		case sinan.ColDtNotific:
			args = append(args, nullableTime(r.NotifDate))
		case sinan.ColDtOcor:
			args = append(args, nullableTime(r.OcorDate))
		case sinan.ColAnoNotific:
			args = append(args, nullableInt(r.AnoNotific))
		case sinan.ColTempoOcorDen:
			args = append(args, nullableInt(r.TempoOcorDen))
		default:
			args = append(args, r.Value(c.name))
		}
	}
	return args
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
