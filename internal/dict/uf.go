package dict

// IBGE state (UF) code table. The query adapter mirrors it name→code when
// translating a human-readable filter back into raw codes.
var ufNames = map[string]string{
	"11": "Rondônia", "12": "Acre", "13": "Amazonas", "14": "Roraima",
	"15": "Pará", "16": "Amapá", "17": "Tocantins", "21": "Maranhão",
	"22": "Piauí", "23": "Ceará", "24": "Rio Grande do Norte", "25": "Paraíba",
	"26": "Pernambuco", "27": "Alagoas", "28": "Sergipe", "29": "Bahia",
	"31": "Minas Gerais", "32": "Espírito Santo", "33": "Rio de Janeiro",
	"35": "São Paulo", "41": "Paraná", "42": "Santa Catarina",
	"43": "Rio Grande do Sul", "50": "Mato Grosso do Sul",
	"51": "Mato Grosso", "52": "Goiás", "53": "Distrito Federal",
}

var ufCodes = func() map[string]string {
	m := make(map[string]string, len(ufNames))
	for code, name := range ufNames {
		m[name] = code
	}
	return m
}()

// UFName resolves a two-digit state code to its name.
func UFName(code string) (string, bool) {
	name, ok := ufNames[code]
	return name, ok
}

// UFCode resolves a state name back to its two-digit code.
func UFCode(name string) (string, bool) {
	code, ok := ufCodes[name]
	return code, ok
}
