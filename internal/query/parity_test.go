package query

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/config"
	"github.com/obs-infancia/sinanetl/internal/sinan"
	"github.com/obs-infancia/sinanetl/internal/snapshot"
	"github.com/obs-infancia/sinanetl/internal/store"
)

// parityKeyColumns are the derived columns compared across modes. The raw
// date columns stay out: the snapshot stores them typed and they stringify
// differently on the way back.
var parityKeyColumns = []string{
	sinan.ColAnoNotific, sinan.ColUFNotific, sinan.ColMunicipio,
	sinan.ColTipoViolencia, sinan.ColFaixaEtaria, sinan.ColSexo,
	sinan.ColGrauParentesco, sinan.ColEncaminhamentos, sinan.ColTempoOcorDen,
}

func rowKeys(res *Result) []string {
	keys := make([]string, 0, len(res.Rows))
	for i := range res.Rows {
		parts := make([]string, len(parityKeyColumns))
		for j, col := range parityKeyColumns {
			parts[j] = res.Rows[i].Value(col)
		}
		keys = append(keys, strings.Join(parts, "|"))
	}
	sort.Strings(keys)
	return keys
}

// Both adapter modes must answer identical filters with the same row set
// when fed the same partitions, the snapshot being a materialization of the
// raw pipeline rather than a different one.
func TestFilteredCases_SnapshotRawParity(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RawDataDir = filepath.Join(dir, "raw")
	cfg.DatabasePath = filepath.Join(dir, "sinan.duckdb")
	require.NoError(t, os.MkdirAll(cfg.RawDataDir, 0o755))

	db, err := store.OpenMemory()
	require.NoError(t, err)
	path := filepath.Join(cfg.RawDataDir, "violbr.parquet")
	_, err = db.Exec(fmt.Sprintf(`COPY (SELECT * FROM (VALUES
		('20190315', '20190310', '2019', '35', '355030', '4005', '2', '1', '2', '1', '1'),
		('20190820', NULL,       '2019', '35', '355030', '4016', '1', '2', '1', '2', '2'),
		('20200601', '20200525', '2020', '33', '330455', '4012', '2', '1', '1', '2', '2'),
		('20200601', NULL,       '2020', '33', '330455', '4040', '1', '1', '1', '1', '1')
	) t(DT_NOTIFIC, DT_OCOR, NU_ANO, SG_UF_NOT, ID_MUNICIP, NU_IDADE_N,
		CS_SEXO, VIOL_FISIC, VIOL_SEXU, ENC_DELEG, REL_PAI))
	TO '%s' (FORMAT PARQUET)`, store.EscapeString(path)))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ctx := context.Background()
	_, err = snapshot.New(cfg, testDicts(), zap.NewNop()).Build(ctx)
	require.NoError(t, err)

	snap, err := New(cfg, testDicts(), zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = snap.Close() }()
	require.Equal(t, ModeSnapshot, snap.Mode())

	rawCfg := *cfg
	rawCfg.DatabasePath = filepath.Join(dir, "absent.duckdb")
	raw, err := New(&rawCfg, testDicts(), zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = raw.Close() }()
	require.Equal(t, ModeRaw, raw.Mode())

	filters := []Filter{
		{},
		{UF: "São Paulo"},
		{UF: "Rio de Janeiro"},
		{Municipality: "Rio de Janeiro"},
		{ViolenceType: "Sexual"},
		{YearMin: 2020, YearMax: 2020},
		{YearMin: 2019},
		{UF: "São Paulo", ViolenceType: "Física", YearMin: 2019, YearMax: 2019},
		{UF: "Acre"},
	}
	for _, f := range filters {
		f := f
		t.Run(f.key(), func(t *testing.T) {
			sres := snap.FilteredCases(ctx, f)
			rres := raw.FilteredCases(ctx, f)
			require.Equal(t, sres.Status, rres.Status)
			assert.Equal(t, rowKeys(sres), rowKeys(rres))
		})
	}

	// The unfiltered set drops only the adult row.
	assert.Len(t, rowKeys(snap.FilteredCases(ctx, Filter{})), 3)
}
