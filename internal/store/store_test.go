package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

func TestEscapeString(t *testing.T) {
	assert.Equal(t, "it''s", EscapeString("it's"))
	assert.Equal(t, "plain", EscapeString("plain"))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"DT_NOTIFIC"`, QuoteIdent("DT_NOTIFIC"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}

func TestAgeCodePredicate(t *testing.T) {
	p := AgeCodePredicate()
	assert.Contains(t, p, "NU_IDADE_N IN (")
	assert.Contains(t, p, "'4000'")
	assert.Contains(t, p, "'4017'")
	assert.NotContains(t, p, "'4018'")
}

func TestColumnsAndHasTable(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE t (DT_NOTIFIC DATE, NU_IDADE_N VARCHAR, ANO_NOTIFIC INTEGER)`)
	require.NoError(t, err)

	cols, err := Columns(ctx, db, "t")
	require.NoError(t, err)
	assert.Equal(t, []string{"DT_NOTIFIC", "NU_IDADE_N", "ANO_NOTIFIC"}, cols)

	assert.True(t, HasTable(ctx, db, "t"))
	assert.False(t, HasTable(ctx, db, "absent"))
}

func TestScanFrame_TypedCellsStringify(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE t (DT_NOTIFIC DATE, ANO_NOTIFIC INTEGER, NU_IDADE_N VARCHAR)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO t VALUES (DATE '2019-03-15', 2019, '05 anos'), (NULL, NULL, NULL)`)
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, `SELECT * FROM t ORDER BY ANO_NOTIFIC DESC NULLS LAST`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	f, err := ScanFrame(rows)
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	first := f.Records[0]
	require.NotNil(t, first.AnoNotific)
	assert.Equal(t, 2019, *first.AnoNotific)
	assert.Equal(t, "05 anos", first.NuIdadeN)
	assert.NotEmpty(t, first.DtNotific)
	assert.Nil(t, f.Records[1].AnoNotific)
	assert.True(t, f.Has(sinan.ColNuIdadeN))
}
