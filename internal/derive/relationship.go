package derive

import (
	"strings"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// relationshipNames maps known REL_* columns to display names. Columns not
// listed fall back to a readable form of the column suffix.
var relationshipNames = map[string]string{
	"REL_PAI":    "Pai",
	"REL_MAE":    "Mãe",
	"REL_PAD":    "Padrasto",
	"REL_MAD":    "Madrasta",
	"REL_CONJ":   "Cônjuge",
	"REL_EXCON":  "Ex-cônjuge",
	"REL_NAMO":   "Namorado(a)",
	"REL_EXNAM":  "Ex-namorado(a)",
	"REL_FILHO":  "Filho(a)",
	"REL_IRMAO":  "Irmão(ã)",
	"REL_AMIGO":  "Amigo(a)/Conhecido",
	"REL_CONHEC": "Conhecido",
	"REL_DESCON": "Desconhecido",
	"REL_CUIDAD": "Cuidador(a)",
	"REL_PATRAO": "Patrão/Chefe",
	"REL_INST":   "Institucional",
	"REL_POL":    "Policial/Agente",
	"REL_PROPRI": "Própria Pessoa",
	"REL_OUTROS": "Outros",
}

// corrections applied to the fallback-derived name, checked in order.
var relationshipCorrections = []struct{ substr, name string }{
	{"Pai", "Pai"},
	{"Mae", "Mãe"},
	{"Padr", "Padrasto"},
	{"Madr", "Madrasta"},
	{"Conjug", "Cônjuge"},
	{"Exnam", "Ex-namorado(a)"},
	{"Namor", "Namorado(a)"},
	{"Amig", "Amigo(a)"},
	{"Descon", "Desconhecido"},
}

// RelationshipName resolves a REL_* column to a display name: the static
// dictionary takes priority, otherwise the column suffix is title-cased and
// run through the substring corrections.
func RelationshipName(col string) string {
	if name, ok := relationshipNames[col]; ok {
		return name
	}
	name := strings.TrimPrefix(col, sinan.RelPrefix)
	name = strings.ReplaceAll(name, "_", " ")
	name = titleCase(name)
	for _, c := range relationshipCorrections {
		if strings.Contains(name, c.substr) {
			return c.name
		}
	}
	return name
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Relationship flattens the binary-presence REL_* flags into a comma-joined
// label list, deduplicated; never empty.
func Relationship(r *sinan.Record, relCols []string) string {
	var labels []string
	seen := map[string]bool{}
	for _, col := range relCols {
		if !sinan.Affirmative(r.Rel[col]) {
			continue
		}
		name := RelationshipName(col)
		if !seen[name] {
			seen[name] = true
			labels = append(labels, name)
		}
	}
	if len(labels) == 0 {
		return sinan.NotInformed
	}
	return strings.Join(labels, ", ")
}

func (e *Engine) relationship(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.GrauParentesco }) {
		return Skipped
	}
	relCols := f.RelColumns()
	if len(relCols) == 0 {
		setAll(f, func(r *sinan.Record, v string) { r.GrauParentesco = v }, sinan.NotInformed)
		f.AddColumn(sinan.ColGrauParentesco)
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		r.GrauParentesco = Relationship(r, relCols)
	}
	f.AddColumn(sinan.ColGrauParentesco)
	return Applied
}
