// Package derive computes the analytical columns the dashboard consumes from
// decoded records. Every rule is defensive: the upstream coded fields mix
// numeric and string encodings, trailing ".0" casts and blank tokens, and
// each rule normalizes that inconsistency once so downstream consumers never
// have to. Rules fail to a sentinel, never to an error.
package derive

import (
	"go.uber.org/zap"

	"github.com/obs-infancia/sinanetl/internal/dict"
	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// Outcome classifies what a rule did, so that suppression of missing inputs
// is an explicit logged decision rather than a silent catch-all.
type Outcome int

const (
	// Applied: the rule computed its target from present source columns.
	Applied Outcome = iota
	// Defaulted: source columns were absent, target set to its sentinel.
	Defaulted
	// Skipped: target already populated, recomputation short-circuited.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Defaulted:
		return "defaulted"
	default:
		return "skipped"
	}
}

// Engine applies the derivation rules in a fixed order. No rule depends on a
// later one; dates and year run first because elapsed time reads them.
type Engine struct {
	dicts  *dict.Set
	logger *zap.Logger
}

func New(dicts *dict.Set, logger *zap.Logger) *Engine {
	return &Engine{dicts: dicts, logger: logger}
}

type rule struct {
	name string
	run  func(*Engine, *sinan.Frame) Outcome
}

var rules = []rule{
	{"parse_dates", (*Engine).parseDates},
	{"notification_year", (*Engine).notificationYear},
	{"age_bucket", (*Engine).ageBucket},
	{"uf_name", (*Engine).ufName},
	{"municipality_name", (*Engine).municipalityName},
	{"violence_type", (*Engine).violenceType},
	{"sex", (*Engine).sex},
	{"elapsed_days", (*Engine).elapsedDays},
	{"justice_referrals", (*Engine).justiceReferrals},
	{"aggressor_sex", (*Engine).aggressorSex},
	{"relationship", (*Engine).relationship},
}

// Apply runs every rule over the frame in place and returns it. Running on a
// frame whose targets are already populated is a safe no-op.
func (e *Engine) Apply(f *sinan.Frame) *sinan.Frame {
	for _, r := range rules {
		outcome := r.run(e, f)
		e.logger.Info("derivation rule", zap.String("rule", r.name), zap.String("outcome", outcome.String()))
	}
	return f
}

// populated reports whether a string target column already carries values,
// the idempotence short-circuit shared by the label rules.
func populated(f *sinan.Frame, get func(*sinan.Record) string) bool {
	if f.Len() == 0 {
		return false
	}
	for i := range f.Records {
		if get(&f.Records[i]) != "" {
			return true
		}
	}
	return false
}

func setAll(f *sinan.Frame, set func(*sinan.Record, string), v string) {
	for i := range f.Records {
		set(&f.Records[i], v)
	}
}
