package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/sinan"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	dicts := dict.New()
	dicts.Municipalities["355030"] = "São Paulo"
	return New(dicts, zap.NewNop())
}

func TestApply_FullScenario(t *testing.T) {
	r := sinan.Record{
		DtNotific: "20190315",
		DtOcor:    "20190310",
		NuAno:     "2019",
		SgUFNot:   "35",
		IDMunicip: "355030",
		NuIdadeN:  "05 anos",
		CsSexo:    "Feminino",
		AutorSexo: "Masculino",
		ViolFisic: "Sim",
		ViolSexu:  "Não",
		EncDeleg:  "Sim",
	}
	r.SetRel("REL_PAI", "Sim")
	r.SetRel("REL_MAE", "Não")
	f := sinan.NewFrame([]sinan.Record{r}, []string{
		sinan.ColDtNotific, sinan.ColDtOcor, sinan.ColNuAno, sinan.ColSgUFNot,
		sinan.ColIDMunicip, sinan.ColNuIdadeN, sinan.ColCsSexo, sinan.ColAutorSexo,
		sinan.ColViolFisic, sinan.ColViolSexu, sinan.ColEncDeleg,
		"REL_PAI", "REL_MAE",
	})

	newEngine(t).Apply(f)
	got := f.Records[0]

	require.NotNil(t, got.NotifDate)
	assert.Equal(t, 2019, got.NotifDate.Year())
	require.NotNil(t, got.AnoNotific)
	assert.Equal(t, 2019, *got.AnoNotific)
	assert.Equal(t, Bucket2to5, got.FaixaEtaria)
	assert.Equal(t, "São Paulo", got.UFNotific)
	assert.Equal(t, "São Paulo", got.Municipio)
	assert.Equal(t, "Física", got.TipoViolencia)
	assert.Equal(t, "Feminino", got.Sexo)
	assert.Equal(t, "Masculino", got.AutorSexoCorr)
	assert.Equal(t, "Delegacia", got.Encaminhamentos)
	assert.Equal(t, "Pai", got.GrauParentesco)
	require.NotNil(t, got.TempoOcorDen)
	assert.Equal(t, 5, *got.TempoOcorDen)
}

func TestApply_SentinelsWhenSourcesMissing(t *testing.T) {
	f := sinan.NewFrame([]sinan.Record{{}}, []string{sinan.ColNuIdadeN})

	newEngine(t).Apply(f)
	got := f.Records[0]

	assert.Equal(t, sinan.NotInformed, got.FaixaEtaria)
	assert.Equal(t, "N/A", got.UFNotific)
	assert.Equal(t, "N/A", got.Municipio)
	assert.Equal(t, sinan.NotSpecified, got.TipoViolencia)
	assert.Equal(t, sinan.NotInformed, got.Sexo)
	assert.Equal(t, sinan.NotInformed, got.AutorSexoCorr)
	assert.Equal(t, sinan.NotInformed, got.Encaminhamentos)
	assert.Equal(t, sinan.NotInformed, got.GrauParentesco)
	assert.Nil(t, got.AnoNotific)
	assert.Nil(t, got.TempoOcorDen)
}

func TestApply_Idempotent(t *testing.T) {
	f := sinan.NewFrame([]sinan.Record{{
		DtNotific: "20200101",
		NuIdadeN:  "10 anos",
		ViolPsico: "Sim",
	}}, []string{sinan.ColDtNotific, sinan.ColNuIdadeN, sinan.ColViolPsico})

	e := newEngine(t)
	e.Apply(f)
	first := f.Records[0]
	e.Apply(f)

	assert.Equal(t, first, f.Records[0], "second run must not change any derived value")
}

func TestElapsedDays_OutsideWindowIsNull(t *testing.T) {
	mk := func(notif, ocor string) *sinan.Frame {
		return sinan.NewFrame([]sinan.Record{{DtNotific: notif, DtOcor: ocor}},
			[]string{sinan.ColDtNotific, sinan.ColDtOcor})
	}

	t.Run("negative gap", func(t *testing.T) {
		f := mk("20190101", "20190201")
		newEngine(t).Apply(f)
		assert.Nil(t, f.Records[0].TempoOcorDen)
	})
	t.Run("over ten years", func(t *testing.T) {
		f := mk("20200101", "20050101")
		newEngine(t).Apply(f)
		assert.Nil(t, f.Records[0].TempoOcorDen)
	})
	t.Run("same day", func(t *testing.T) {
		f := mk("20190101", "20190101")
		newEngine(t).Apply(f)
		require.NotNil(t, f.Records[0].TempoOcorDen)
		assert.Equal(t, 0, *f.Records[0].TempoOcorDen)
	})
}

func TestNotificationYear_FallsBackToNuAno(t *testing.T) {
	f := sinan.NewFrame([]sinan.Record{{NuAno: "2018.0"}},
		[]string{sinan.ColNuAno})
	newEngine(t).Apply(f)
	require.NotNil(t, f.Records[0].AnoNotific)
	assert.Equal(t, 2018, *f.Records[0].AnoNotific)
}

func TestParseDate_Layouts(t *testing.T) {
	for _, s := range []string{"20190315", "2019-03-15", "2019-03-15 00:00:00", "2019-03-15T00:00:00Z"} {
		d := ParseDate(s)
		require.NotNil(t, d, s)
		assert.Equal(t, 15, d.Day())
	}
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("NaT"))
	assert.Nil(t, ParseDate("15/03/2019"))
}
