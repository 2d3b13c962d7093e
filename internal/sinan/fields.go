package sinan

import (
	"strconv"
	"strings"
)

// Field pairs a source column name with accessors into Record. The decoder,
// the row scanners and the snapshot writer all go through this table so the
// column↔field mapping exists in exactly one place.
type Field struct {
	Name string
	Get  func(*Record) string
	Set  func(*Record, string)
}

var fields = []Field{
	{ColDtNotific, func(r *Record) string { return r.DtNotific }, func(r *Record, v string) { r.DtNotific = v }},
	{ColDtOcor, func(r *Record) string { return r.DtOcor }, func(r *Record, v string) { r.DtOcor = v }},
	{ColNuAno, func(r *Record) string { return r.NuAno }, func(r *Record, v string) { r.NuAno = v }},
	{ColSgUFNot, func(r *Record) string { return r.SgUFNot }, func(r *Record, v string) { r.SgUFNot = v }},
	{ColSgUF, func(r *Record) string { return r.SgUF }, func(r *Record, v string) { r.SgUF = v }},
	{ColIDMunicip, func(r *Record) string { return r.IDMunicip }, func(r *Record, v string) { r.IDMunicip = v }},
	{ColIDMnResi, func(r *Record) string { return r.IDMnResi }, func(r *Record, v string) { r.IDMnResi = v }},
	{ColNuIdadeN, func(r *Record) string { return r.NuIdadeN }, func(r *Record, v string) { r.NuIdadeN = v }},
	{ColCsSexo, func(r *Record) string { return r.CsSexo }, func(r *Record, v string) { r.CsSexo = v }},
	{ColCsRaca, func(r *Record) string { return r.CsRaca }, func(r *Record, v string) { r.CsRaca = v }},
	{ColCsEscolN, func(r *Record) string { return r.CsEscolN }, func(r *Record, v string) { r.CsEscolN = v }},
	{ColSitConjug, func(r *Record) string { return r.SitConjug }, func(r *Record, v string) { r.SitConjug = v }},
	{ColLocalOcor, func(r *Record) string { return r.LocalOcor }, func(r *Record, v string) { r.LocalOcor = v }},
	{ColAutorSexo, func(r *Record) string { return r.AutorSexo }, func(r *Record, v string) { r.AutorSexo = v }},
	{ColAutorAlco, func(r *Record) string { return r.AutorAlco }, func(r *Record, v string) { r.AutorAlco = v }},
	{ColViolFisic, func(r *Record) string { return r.ViolFisic }, func(r *Record, v string) { r.ViolFisic = v }},
	{ColViolPsico, func(r *Record) string { return r.ViolPsico }, func(r *Record, v string) { r.ViolPsico = v }},
	{ColViolSexu, func(r *Record) string { return r.ViolSexu }, func(r *Record, v string) { r.ViolSexu = v }},
	{ColViolInfan, func(r *Record) string { return r.ViolInfan }, func(r *Record, v string) { r.ViolInfan = v }},
	{ColRedeSau, func(r *Record) string { return r.RedeSau }, func(r *Record, v string) { r.RedeSau = v }},
	{ColRedeEduca, func(r *Record) string { return r.RedeEduca }, func(r *Record, v string) { r.RedeEduca = v }},
	{ColEncDeleg, func(r *Record) string { return r.EncDeleg }, func(r *Record, v string) { r.EncDeleg = v }},
	{ColEncDPCA, func(r *Record) string { return r.EncDPCA }, func(r *Record, v string) { r.EncDPCA = v }},
	{ColEncMPU, func(r *Record) string { return r.EncMPU }, func(r *Record, v string) { r.EncMPU = v }},
	{ColEncVara, func(r *Record) string { return r.EncVara }, func(r *Record, v string) { r.EncVara = v }},
	{ColFaixaEtaria, func(r *Record) string { return r.FaixaEtaria }, func(r *Record, v string) { r.FaixaEtaria = v }},
	{ColUFNotific, func(r *Record) string { return r.UFNotific }, func(r *Record, v string) { r.UFNotific = v }},
	{ColMunicipio, func(r *Record) string { return r.Municipio }, func(r *Record, v string) { r.Municipio = v }},
	{ColTipoViolencia, func(r *Record) string { return r.TipoViolencia }, func(r *Record, v string) { r.TipoViolencia = v }},
	{ColSexo, func(r *Record) string { return r.Sexo }, func(r *Record, v string) { r.Sexo = v }},
	{ColAutorSexoCorr, func(r *Record) string { return r.AutorSexoCorr }, func(r *Record, v string) { r.AutorSexoCorr = v }},
	{ColGrauParentesco, func(r *Record) string { return r.GrauParentesco }, func(r *Record, v string) { r.GrauParentesco = v }},
	{ColEncaminhamentos, func(r *Record) string { return r.Encaminhamentos }, func(r *Record, v string) { r.Encaminhamentos = v }},
	{ColAnoNotific, func(r *Record) string { return formatIntCell(r.AnoNotific) }, func(r *Record, v string) { r.AnoNotific = parseIntCell(v) }},
	{ColTempoOcorDen, func(r *Record) string { return formatIntCell(r.TempoOcorDen) }, func(r *Record, v string) { r.TempoOcorDen = parseIntCell(v) }},
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// FieldByName looks up the accessor pair for a column. REL_* columns are
// served dynamically through the Rel map. Unknown columns return ok=false
// and are ignored by callers (schema-union tolerance).
func FieldByName(name string) (Field, bool) {
	if f, ok := fieldIndex[name]; ok {
		return f, true
	}
	if strings.HasPrefix(name, RelPrefix) {
		col := name
		return Field{
			Name: col,
			Get:  func(r *Record) string { return r.Rel[col] },
			Set:  func(r *Record, v string) { r.SetRel(col, v) },
		}, true
	}
	return Field{}, false
}

// SetValue assigns a scanned cell to the record, dropping columns the model
// does not know about. The two integer derived columns parse into their
// pointer fields, tolerating float casts like "2019.0".
func (r *Record) SetValue(col, val string) {
	if f, ok := FieldByName(col); ok {
		f.Set(r, val)
	}
}

// Value reads a cell by column name; unknown columns read as empty.
func (r *Record) Value(col string) string {
	if f, ok := FieldByName(col); ok {
		return f.Get(r)
	}
	return ""
}

func parseIntCell(val string) *int {
	s := strings.TrimSpace(val)
	if IsNull(s) {
		return nil
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func formatIntCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
