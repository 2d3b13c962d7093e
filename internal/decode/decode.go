// Package decode replaces raw categorical codes with human-readable labels.
// Decoding is best-effort: values with no dictionary entry pass through
// unchanged, which also makes the operation idempotent.
package decode

import (
	"strings"

	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// decodedColumns is the fixed set of columns with a dedicated dictionary.
// REL_* flags (other than REL_TRAB/REL_CAT, which are listed here) share the
// generic yes/no dictionary and are handled separately.
var decodedColumns = []string{
	sinan.ColNuIdadeN,
	sinan.ColCsSexo,
	sinan.ColCsRaca,
	sinan.ColCsEscolN,
	sinan.ColSitConjug,
	sinan.ColLocalOcor,
	sinan.ColAutorSexo,
	sinan.ColAutorAlco,
	sinan.ColViolFisic,
	sinan.ColViolPsico,
	sinan.ColViolSexu,
	sinan.ColViolInfan,
	sinan.ColRedeSau,
	sinan.ColRedeEduca,
	sinan.ColRelTrab,
	sinan.ColRelCat,
}

// Apply decodes the frame in place and returns it. Columns absent from the
// frame are skipped; values without a mapping are left as-is.
func Apply(f *sinan.Frame, dicts *dict.Set, logger *zap.Logger) *sinan.Frame {
	decoded := 0
	for _, col := range decodedColumns {
		if !f.Has(col) {
			continue
		}
		m, ok := dicts.Column(col)
		if !ok {
			continue
		}
		field, ok := sinan.FieldByName(col)
		if !ok {
			continue
		}
		for i := range f.Records {
			r := &f.Records[i]
			if label, hit := m[field.Get(r)]; hit {
				field.Set(r, label)
			}
		}
		decoded++
	}

	relDict := dicts.RelYesNo()
	relCols := f.RelColumns()
	for i := range f.Records {
		r := &f.Records[i]
		for _, col := range relCols {
			v := r.Rel[col]
			if label, hit := relDict[strings.TrimSpace(v)]; hit {
				r.SetRel(col, label)
			}
		}
	}

	logger.Info("dictionaries applied",
		zap.Int("columns", decoded),
		zap.Int("rel_columns", len(relCols)),
		zap.Int("rows", f.Len()))
	return f
}
