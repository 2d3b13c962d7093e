package derive

import (
	"strconv"
	"strings"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// UFLabel resolves a state code, tried first as the literal string and then
// as a numeric cast (partitions store "35", "35.0" or an int). Unresolved
// codes fall back to the raw string.
func UFLabel(val string) string {
	if sinan.IsNull(val) {
		return sinan.NotInformed
	}
	s := strings.TrimSpace(val)
	if name, ok := dict.UFName(s); ok {
		return name
	}
	if fv, err := strconv.ParseFloat(s, 64); err == nil {
		if name, ok := dict.UFName(strconv.Itoa(int(fv))); ok {
			return name
		}
	}
	return s
}

func (e *Engine) ufName(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.UFNotific }) {
		return Skipped
	}
	if !f.Has(sinan.ColSgUFNot) && !f.Has(sinan.ColSgUF) {
		setAll(f, func(r *sinan.Record, v string) { r.UFNotific = v }, "N/A")
		f.AddColumn(sinan.ColUFNotific)
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		code := r.SgUFNot
		if sinan.IsNull(code) {
			code = r.SgUF
		}
		r.UFNotific = UFLabel(code)
	}
	f.AddColumn(sinan.ColUFNotific)
	return Applied
}

func (e *Engine) municipalityName(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.Municipio }) {
		return Skipped
	}
	if !f.Has(sinan.ColIDMunicip) && !f.Has(sinan.ColIDMnResi) {
		setAll(f, func(r *sinan.Record, v string) { r.Municipio = v }, "N/A")
		f.AddColumn(sinan.ColMunicipio)
		return Defaulted
	}
	// Exact 6-digit code join only; name-based matching of municipalities is
	// a data-quality trap (homonyms), so unresolved codes stay codes.
	for i := range f.Records {
		r := &f.Records[i]
		code := strings.TrimSpace(r.IDMunicip)
		if sinan.IsNull(code) {
			code = strings.TrimSpace(r.IDMnResi)
		}
		if sinan.IsNull(code) {
			r.Municipio = sinan.NotInformed
			continue
		}
		if len(code) == 6 {
			r.Municipio = e.dicts.Municipality(code)
		} else {
			r.Municipio = code
		}
	}
	f.AddColumn(sinan.ColMunicipio)
	return Applied
}

// violenceTypeFlags maps flag columns to consolidated category names, in
// presentation order.
var violenceTypeFlags = []struct {
	col   string
	label string
}{
	{sinan.ColViolFisic, "Física"},
	{sinan.ColViolPsico, "Psicológica"},
	{sinan.ColViolSexu, "Sexual"},
	{sinan.ColViolInfan, "Infantil"},
}

// ViolenceType joins the qualifying category names; never empty — the
// sentinel stands in when no flag qualifies.
func ViolenceType(r *sinan.Record) string {
	var types []string
	for _, ft := range violenceTypeFlags {
		if sinan.Affirmative(r.Value(ft.col)) {
			types = append(types, ft.label)
		}
	}
	if len(types) == 0 {
		return sinan.NotSpecified
	}
	return strings.Join(types, ", ")
}

func (e *Engine) violenceType(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.TipoViolencia }) {
		return Skipped
	}
	for i := range f.Records {
		r := &f.Records[i]
		r.TipoViolencia = ViolenceType(r)
	}
	f.AddColumn(sinan.ColTipoViolencia)
	return Applied
}

func (e *Engine) sex(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.Sexo }) {
		return Skipped
	}
	if !f.Has(sinan.ColCsSexo) {
		setAll(f, func(r *sinan.Record, v string) { r.Sexo = v }, sinan.NotInformed)
		f.AddColumn(sinan.ColSexo)
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		switch strings.ToUpper(strings.TrimSpace(r.CsSexo)) {
		case "1", "M", "MASCULINO":
			r.Sexo = "Masculino"
		case "2", "F", "FEMININO":
			r.Sexo = "Feminino"
		default:
			r.Sexo = "Ignorado"
		}
	}
	f.AddColumn(sinan.ColSexo)
	return Applied
}

func (e *Engine) aggressorSex(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.AutorSexoCorr }) {
		return Skipped
	}
	if !f.Has(sinan.ColAutorSexo) {
		setAll(f, func(r *sinan.Record, v string) { r.AutorSexoCorr = v }, sinan.NotInformed)
		f.AddColumn(sinan.ColAutorSexoCorr)
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		// Relationship-type values sometimes leak into this column; anything
		// outside the four known encodings maps to the sentinel.
		switch strings.ToUpper(strings.TrimSpace(r.AutorSexo)) {
		case "1", "M", "MASCULINO":
			r.AutorSexoCorr = "Masculino"
		case "2", "F", "FEMININO":
			r.AutorSexoCorr = "Feminino"
		case "3", "OUTROS":
			r.AutorSexoCorr = "Outros"
		default:
			r.AutorSexoCorr = sinan.NotInformed
		}
	}
	f.AddColumn(sinan.ColAutorSexoCorr)
	return Applied
}

var referralFlags = []struct {
	col   string
	label string
}{
	{sinan.ColEncDeleg, "Delegacia"},
	{sinan.ColEncDPCA, "DPCA"},
	{sinan.ColEncMPU, "Min. Público"},
	{sinan.ColEncVara, "Vara Infância"},
}

func (e *Engine) justiceReferrals(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.Encaminhamentos }) {
		return Skipped
	}
	any := false
	for _, rf := range referralFlags {
		if f.Has(rf.col) {
			any = true
			break
		}
	}
	if !any {
		setAll(f, func(r *sinan.Record, v string) { r.Encaminhamentos = v }, sinan.NotInformed)
		f.AddColumn(sinan.ColEncaminhamentos)
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		var refs []string
		for _, rf := range referralFlags {
			if sinan.Affirmative(r.Value(rf.col)) {
				refs = append(refs, rf.label)
			}
		}
		if len(refs) == 0 {
			r.Encaminhamentos = sinan.NoReferral
		} else {
			r.Encaminhamentos = strings.Join(refs, ", ")
		}
	}
	f.AddColumn(sinan.ColEncaminhamentos)
	return Applied
}
