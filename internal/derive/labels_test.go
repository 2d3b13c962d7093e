package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/sinan"
)

func TestUFLabel(t *testing.T) {
	assert.Equal(t, "São Paulo", UFLabel("35"))
	assert.Equal(t, "São Paulo", UFLabel("35.0"), "float-cast codes resolve")
	assert.Equal(t, "Rio de Janeiro", UFLabel(" 33 "))
	assert.Equal(t, sinan.NotInformed, UFLabel(""))
	assert.Equal(t, sinan.NotInformed, UFLabel("nan"))
	assert.Equal(t, "99", UFLabel("99"), "unknown codes stay raw")
}

func TestViolenceType_JoinsInPresentationOrder(t *testing.T) {
	r := &sinan.Record{ViolFisic: "Sim", ViolSexu: "1", ViolPsico: "Não"}
	assert.Equal(t, "Física, Sexual", ViolenceType(r))

	assert.Equal(t, sinan.NotSpecified, ViolenceType(&sinan.Record{}))
	assert.Equal(t, sinan.NotSpecified, ViolenceType(&sinan.Record{ViolFisic: "Não"}))
}

func TestAggressorSex_RelationshipLeakMapsToSentinel(t *testing.T) {
	f := sinan.NewFrame([]sinan.Record{
		{AutorSexo: "Masculino"},
		{AutorSexo: "3"},
		{AutorSexo: "Pai"}, // leaked relationship value
		{AutorSexo: ""},
	}, []string{sinan.ColAutorSexo})

	New(dict.New(), zap.NewNop()).Apply(f)

	assert.Equal(t, "Masculino", f.Records[0].AutorSexoCorr)
	assert.Equal(t, "Outros", f.Records[1].AutorSexoCorr)
	assert.Equal(t, sinan.NotInformed, f.Records[2].AutorSexoCorr)
	assert.Equal(t, sinan.NotInformed, f.Records[3].AutorSexoCorr)
}

func TestJusticeReferrals_NoneAffirmative(t *testing.T) {
	f := sinan.NewFrame([]sinan.Record{
		{EncDeleg: "Não", EncMPU: "Não"},
		{EncDeleg: "Sim", EncMPU: "Sim", EncVara: "1"},
	}, []string{sinan.ColEncDeleg, sinan.ColEncMPU, sinan.ColEncVara})

	New(dict.New(), zap.NewNop()).Apply(f)

	assert.Equal(t, sinan.NoReferral, f.Records[0].Encaminhamentos)
	assert.Equal(t, "Delegacia, Min. Público, Vara Infância", f.Records[1].Encaminhamentos)
}

func TestRelationshipName(t *testing.T) {
	assert.Equal(t, "Pai", RelationshipName("REL_PAI"))
	assert.Equal(t, "Mãe", RelationshipName("REL_MAE"))
	assert.Equal(t, "Ex-namorado(a)", RelationshipName("REL_EXNAM"))
	// Unlisted column goes through title case plus corrections.
	assert.Equal(t, "Madrasta", RelationshipName("REL_MADRASTA"))
	assert.Equal(t, "Vizinho", RelationshipName("REL_VIZINHO"))
}

func TestRelationship_DedupAndSentinel(t *testing.T) {
	r := &sinan.Record{}
	r.SetRel("REL_PAI", "Sim")
	r.SetRel("REL_MAE", "Sim")
	r.SetRel("REL_OUTROS", "Não")
	assert.Equal(t, "Mãe, Pai", Relationship(r, []string{"REL_MAE", "REL_OUTROS", "REL_PAI"}))

	assert.Equal(t, sinan.NotInformed, Relationship(&sinan.Record{}, []string{"REL_PAI"}))
}
