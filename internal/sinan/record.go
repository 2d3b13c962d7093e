// Package sinan holds the shared data model for SINAN violence-notification
// records: the typed Record, the Frame that carries a record set through the
// pipeline stages, and the column-name constants used by every component.
package sinan

import (
	"sort"
	"strings"
	"time"
)

// Source column names as they appear in the raw Parquet partitions.
const (
	ColDtNotific = "DT_NOTIFIC"
	ColDtOcor    = "DT_OCOR"
	ColNuAno     = "NU_ANO"
	ColSgUFNot   = "SG_UF_NOT"
	ColSgUF      = "SG_UF"
	ColIDMunicip = "ID_MUNICIP"
	ColIDMnResi  = "ID_MN_RESI"
	ColNuIdadeN  = "NU_IDADE_N"
	ColCsSexo    = "CS_SEXO"
	ColCsRaca    = "CS_RACA"
	ColCsEscolN  = "CS_ESCOL_N"
	ColSitConjug = "SIT_CONJUG"
	ColLocalOcor = "LOCAL_OCOR"
	ColAutorSexo = "AUTOR_SEXO"
	ColAutorAlco = "AUTOR_ALCO"
	ColViolFisic = "VIOL_FISIC"
	ColViolPsico = "VIOL_PSICO"
	ColViolSexu  = "VIOL_SEXU"
	ColViolInfan = "VIOL_INFAN"
	ColRedeSau   = "REDE_SAU"
	ColRedeEduca = "REDE_EDUCA"
	ColEncDeleg  = "ENC_DELEG"
	ColEncDPCA   = "ENC_DPCA"
	ColEncMPU    = "ENC_MPU"
	ColEncVara   = "ENC_VARA"

	RelPrefix  = "REL_"
	ColRelTrab = "REL_TRAB"
	ColRelCat  = "REL_CAT"
)

// Derived column names as stored in the snapshot table.
const (
	ColAnoNotific      = "ANO_NOTIFIC"
	ColFaixaEtaria     = "FAIXA_ETARIA"
	ColUFNotific       = "UF_NOTIFIC"
	ColMunicipio       = "MUNICIPIO_NOTIFIC"
	ColTipoViolencia   = "TIPO_VIOLENCIA"
	ColSexo            = "SEXO"
	ColAutorSexoCorr   = "AUTOR_SEXO_CORRIGIDO"
	ColGrauParentesco  = "GRAU_PARENTESCO"
	ColTempoOcorDen    = "TEMPO_OCOR_DENUNCIA"
	ColEncaminhamentos = "ENCAMINHAMENTOS_JUSTICA"
)

// Sentinels used when a derivation cannot produce a meaningful value.
const (
	NotInformed  = "Não informado"
	NotSpecified = "Não especificado"
	NoReferral   = "Nenhum"
)

// AgeCodes returns the raw NU_IDADE_N codes for ages 0-17 ("4000" is the
// under-one-year code). Used for storage-level pushdown before decoding.
func AgeCodes() []string {
	codes := make([]string, 0, 18)
	for i := 0; i < 18; i++ {
		codes = append(codes, "40"+twoDigits(i))
	}
	return codes
}

// ChildAgeLabels are the decoded NU_IDADE_N labels for ages 0-17, used by the
// population filter after decoding has run.
var ChildAgeLabels = []string{
	"menor de 01 ano", "01 ano", "02 anos", "03 anos", "04 anos", "05 anos",
	"06 anos", "07 anos", "08 anos", "09 anos", "10 anos", "11 anos",
	"12 anos", "13 anos", "14 anos", "15 anos", "16 anos", "17 anos",
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// Record is one notification event. Categorical columns are plain strings
// holding either the raw code or, after decoding, its label; an empty string
// means blank in the source. Derived values that can be absent are pointers.
type Record struct {
	DtNotific string
	DtOcor    string
	NuAno     string
	SgUFNot   string
	SgUF      string
	IDMunicip string
	IDMnResi  string
	NuIdadeN  string
	CsSexo    string
	CsRaca    string
	CsEscolN  string
	SitConjug string
	LocalOcor string
	AutorSexo string
	AutorAlco string
	ViolFisic string
	ViolPsico string
	ViolSexu  string
	ViolInfan string
	RedeSau   string
	RedeEduca string
	EncDeleg  string
	EncDPCA   string
	EncMPU    string
	EncVara   string

	// Rel carries the variable set of REL_* aggressor-relationship flags
	// (including REL_TRAB/REL_CAT, which are decoded but excluded from the
	// relationship derivation).
	Rel map[string]string

	// Derived.
	NotifDate       *time.Time
	OcorDate        *time.Time
	AnoNotific      *int
	FaixaEtaria     string
	UFNotific       string
	Municipio       string
	TipoViolencia   string
	Sexo            string
	AutorSexoCorr   string
	GrauParentesco  string
	TempoOcorDen    *int
	Encaminhamentos string
}

// SetRel stores a relationship flag, allocating the map lazily.
func (r *Record) SetRel(col, val string) {
	if r.Rel == nil {
		r.Rel = make(map[string]string, 8)
	}
	r.Rel[col] = val
}

// Frame is an ordered record set plus the set of source columns that were
// actually present in the underlying data. Stage logic that must skip when a
// source column is absent consults Has rather than inspecting values.
type Frame struct {
	Records []Record
	columns map[string]bool
}

// NewFrame builds a frame over records, declaring which source columns exist.
func NewFrame(records []Record, columns []string) *Frame {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return &Frame{Records: records, columns: set}
}

// Has reports whether the named source column exists in the record set.
func (f *Frame) Has(col string) bool { return f.columns[col] }

// Columns returns the declared source columns, REL_* flags included.
func (f *Frame) Columns() []string {
	out := make([]string, 0, len(f.columns))
	for c := range f.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// AddColumn declares an additional column (used when derivation populates
// targets that later stages or tests check for presence).
func (f *Frame) AddColumn(col string) {
	if f.columns == nil {
		f.columns = make(map[string]bool)
	}
	f.columns[col] = true
}

// Len returns the number of records.
func (f *Frame) Len() int { return len(f.Records) }

// RelColumns returns the REL_* columns present in the frame, minus the two
// non-relationship columns, in sorted order so joined labels come out
// deterministic.
func (f *Frame) RelColumns() []string {
	var out []string
	for c := range f.columns {
		if strings.HasPrefix(c, RelPrefix) && c != ColRelTrab && c != ColRelCat {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
