// Package dict builds the static code→label dictionaries used to decode
// SINAN categorical columns, plus the externally loaded municipality map.
package dict

import "github.com/obs-infancia/sinanetl/internal/sinan"

var yesNo = map[string]string{
	"1": "Sim", "2": "Não", "9": "Ignorado", "": "Branco",
}

// Set holds every dictionary for one pipeline run. It is built once at
// startup and never mutated afterwards.
type Set struct {
	columns        map[string]map[string]string
	Municipalities map[string]string
}

// New constructs the built-in dictionaries, including the procedurally
// generated age map (codes 4000..4017). Municipalities start empty; callers
// fill them via LoadMunicipalities when the .cnv files are available.
func New() *Set {
	s := &Set{
		columns:        make(map[string]map[string]string, 20),
		Municipalities: map[string]string{},
	}

	for _, col := range []string{
		sinan.ColViolSexu, sinan.ColViolFisic, sinan.ColViolPsico, sinan.ColViolInfan,
		sinan.ColRedeSau, sinan.ColRedeEduca,
	} {
		s.columns[col] = yesNo
	}

	s.columns[sinan.ColCsSexo] = map[string]string{
		"1": "Masculino", "2": "Feminino", "9": "Ignorado", "": "Branco",
	}
	s.columns[sinan.ColAutorSexo] = map[string]string{
		"1": "Masculino", "2": "Feminino", "3": "Outros", "9": "Ignorado", "": "Branco",
	}
	s.columns[sinan.ColAutorAlco] = map[string]string{
		"1": "Sim", "2": "Não", "3": "Não se aplica", "9": "Ignorado", "": "Branco",
	}
	s.columns[sinan.ColLocalOcor] = map[string]string{
		"01": "Residência", "02": "Habitação coletiva", "03": "Escola",
		"04": "Local de prática esportiva", "05": "Bar ou similar",
		"06": "Via pública", "07": "Comércio e serviços",
		"08": "Industrias e construção", "09": "Outros", "99": "Ignorado",
	}
	s.columns[sinan.ColCsEscolN] = map[string]string{
		"00": "Analfabeto", "01": "1ª a 4ª série incompleta do EF",
		"02": "4ª série completa do EF", "03": "5ª à 8ª série incompleta do EF",
		"04": "Ensino fundamental completo", "05": "Ensino médio incompleto",
		"06": "Ensino médio completo", "07": "Educação superior incompleta",
		"08": "Educação superior completa", "09": "Ignorado", "10": "Não se aplica",
	}
	s.columns[sinan.ColCsRaca] = map[string]string{
		"1": "Branca", "2": "Preta", "3": "Amarela", "4": "Parda",
		"5": "Indígena", "9": "Ignorado",
	}
	s.columns[sinan.ColSitConjug] = map[string]string{
		"1": "Solteiro", "2": "Casado", "3": "Viúvo", "4": "Separado",
		"8": "Não se aplica", "9": "Ignorado",
	}
	s.columns[sinan.ColRelTrab] = yesNo
	s.columns[sinan.ColRelCat] = map[string]string{
		"1": "Empregado", "2": "Autônomo", "8": "Não se aplica", "9": "Ignorado", "": "Branco",
	}

	s.columns[sinan.ColNuIdadeN] = ageMap()

	return s
}

func ageMap() map[string]string {
	m := make(map[string]string, 18)
	m["4000"] = "menor de 01 ano"
	m["4001"] = "01 ano"
	for i := 2; i <= 17; i++ {
		code := "40" + pad2(i)
		m[code] = pad2(i) + " anos"
	}
	return m
}

func pad2(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// Column returns the dictionary for a source column, if one exists.
func (s *Set) Column(col string) (map[string]string, bool) {
	m, ok := s.columns[col]
	return m, ok
}

// RelYesNo is the generic dictionary for REL_* aggressor-relationship flags.
func (s *Set) RelYesNo() map[string]string { return yesNo }

// Municipality resolves a 6-digit municipality code; falls back to the raw
// code string when the dictionary has no entry.
func (s *Set) Municipality(code string) string {
	if name, ok := s.Municipalities[code]; ok {
		return name
	}
	return code
}
