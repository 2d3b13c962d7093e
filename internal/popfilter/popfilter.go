// Package popfilter restricts a record set to the population of interest:
// children and adolescents (ages 0-17) with at least one violence-type flag
// set affirmative.
package popfilter

import (
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

var violenceFlags = []string{
	sinan.ColViolSexu,
	sinan.ColViolFisic,
	sinan.ColViolPsico,
	sinan.ColViolInfan,
}

var childAges = func() map[string]bool {
	m := make(map[string]bool, len(sinan.ChildAgeLabels))
	for _, l := range sinan.ChildAgeLabels {
		m[l] = true
	}
	return m
}()

// Filter applies the two-stage population filter and returns the surviving
// subset as a new frame. alreadyFilteredByAge must be set by the caller when
// the age restriction was pushed down at the storage layer; there is no
// implicit default.
func Filter(f *sinan.Frame, alreadyFilteredByAge bool, logger *zap.Logger) *sinan.Frame {
	original := f.Len()

	records := f.Records
	if !alreadyFilteredByAge {
		if f.Has(sinan.ColNuIdadeN) {
			kept := records[:0:0]
			for _, r := range records {
				if childAges[r.NuIdadeN] {
					kept = append(kept, r)
				}
			}
			records = kept
			logger.Info("age filter applied", zap.Int("kept", len(records)), zap.Int("from", original))
		} else {
			logger.Warn("age column missing, age filter skipped")
		}
	}

	var present []string
	for _, col := range violenceFlags {
		if f.Has(col) {
			present = append(present, col)
		}
	}

	if len(present) == 0 {
		// No qualifying flag columns at all: full passthrough, not an error.
		logger.Warn("no violence flag columns present, filter is a no-op")
		return sinan.NewFrame(records, f.Columns())
	}

	perFlag := make(map[string]int, len(present))
	kept := records[:0:0]
	for _, r := range records {
		any := false
		for _, col := range present {
			if sinan.Affirmative(r.Value(col)) {
				perFlag[col]++
				any = true
			}
		}
		if any {
			kept = append(kept, r)
		}
	}

	for _, col := range present {
		logger.Info("violence flag cases", zap.String("flag", col), zap.Int("count", perFlag[col]))
	}

	// Percentage is observability only; guard the empty-input case.
	if original > 0 {
		pct := float64(len(kept)) / float64(original) * 100
		logger.Info("population filter done",
			zap.Int("kept", len(kept)), zap.Int("from", original), zap.Float64("pct", pct))
	} else {
		logger.Info("population filter done on empty input")
	}

	return sinan.NewFrame(kept, f.Columns())
}
