package sinan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeCodes_CoversZeroToSeventeen(t *testing.T) {
	codes := AgeCodes()
	require.Len(t, codes, 18)
	assert.Equal(t, "4000", codes[0])
	assert.Equal(t, "4001", codes[1])
	assert.Equal(t, "4017", codes[17])
	require.Len(t, ChildAgeLabels, 18)
	assert.Equal(t, "menor de 01 ano", ChildAgeLabels[0])
	assert.Equal(t, "17 anos", ChildAgeLabels[17])
}

func TestRecord_SetValueAndValue(t *testing.T) {
	var r Record
	r.SetValue(ColDtNotific, "20190315")
	r.SetValue(ColNuIdadeN, "4005")
	r.SetValue("REL_PAI", "1")
	r.SetValue("UNKNOWN_COL", "dropped")

	assert.Equal(t, "20190315", r.Value(ColDtNotific))
	assert.Equal(t, "4005", r.Value(ColNuIdadeN))
	assert.Equal(t, "1", r.Value("REL_PAI"))
	assert.Equal(t, "", r.Value("UNKNOWN_COL"), "unknown columns read as empty")
}

func TestRecord_IntegerColumnsTolerateFloatCasts(t *testing.T) {
	var r Record
	r.SetValue(ColAnoNotific, "2019.0")
	require.NotNil(t, r.AnoNotific)
	assert.Equal(t, 2019, *r.AnoNotific)
	assert.Equal(t, "2019", r.Value(ColAnoNotific))

	r.SetValue(ColTempoOcorDen, "nan")
	assert.Nil(t, r.TempoOcorDen)
	assert.Equal(t, "", r.Value(ColTempoOcorDen))
}

func TestFrame_ColumnsSortedAndRelFiltered(t *testing.T) {
	f := NewFrame(nil, []string{ColDtNotific, "REL_PAI", "REL_TRAB", "REL_MAE", ColNuIdadeN})
	cols := f.Columns()
	assert.IsIncreasing(t, cols)
	assert.True(t, f.Has("REL_TRAB"))

	rel := f.RelColumns()
	assert.Equal(t, []string{"REL_MAE", "REL_PAI"}, rel,
		"occupation flags are not relationship columns")
}
