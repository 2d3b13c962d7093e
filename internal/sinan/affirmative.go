package sinan

import "strings"

// affirmativeTokens are the textual encodings of "yes" observed in the raw
// data: numeric-as-string, decoded label, stray casings and float casts.
var affirmativeTokens = map[string]bool{
	"1":   true,
	"1.0": true,
	"sim": true,
	"s":   true,
}

// Affirmative reports whether a flag value represents "yes" under the
// tolerant multi-format check used throughout the pipeline.
func Affirmative(v string) bool {
	return affirmativeTokens[strings.ToLower(strings.TrimSpace(v))]
}

// nullTokens are string forms that mean "no value" in the raw data. They are
// preserved by the decoder but treated as null by date parsing and the
// derivations.
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"nat":  true,
	"null": true,
}

// IsNull reports whether a raw cell should be treated as missing.
func IsNull(v string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(v))]
}
