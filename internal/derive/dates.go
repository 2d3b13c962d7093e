package derive

import (
	"strconv"
	"strings"
	"time"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// dateLayouts tried after the primary 8-digit form fails. The raw partitions
// occasionally carry dates re-exported in ISO form.
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses a raw coded date string. Blank, whitespace and the
// nan/None/NaT tokens are null, not parse failures; anything unparseable
// after all layouts is also null.
func ParseDate(s string) *time.Time {
	if sinan.IsNull(s) {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func (e *Engine) parseDates(f *sinan.Frame) Outcome {
	if !f.Has(sinan.ColDtNotific) && !f.Has(sinan.ColDtOcor) {
		return Defaulted
	}
	done := true
	for i := range f.Records {
		r := &f.Records[i]
		if r.NotifDate == nil && !sinan.IsNull(r.DtNotific) {
			done = false
		}
		if r.OcorDate == nil && !sinan.IsNull(r.DtOcor) {
			done = false
		}
	}
	if done && f.Len() > 0 {
		return Skipped
	}
	for i := range f.Records {
		r := &f.Records[i]
		if r.NotifDate == nil {
			r.NotifDate = ParseDate(r.DtNotific)
		}
		if r.OcorDate == nil {
			r.OcorDate = ParseDate(r.DtOcor)
		}
	}
	return Applied
}

func (e *Engine) notificationYear(f *sinan.Frame) Outcome {
	if populatedInt(f, func(r *sinan.Record) *int { return r.AnoNotific }) {
		return Skipped
	}
	hasDate := f.Has(sinan.ColDtNotific)
	hasYear := f.Has(sinan.ColNuAno)
	if !hasDate && !hasYear {
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		if r.NotifDate != nil {
			y := r.NotifDate.Year()
			r.AnoNotific = &y
			continue
		}
		if y, ok := numericYear(r.NuAno); ok {
			r.AnoNotific = &y
		}
	}
	f.AddColumn(sinan.ColAnoNotific)
	return Applied
}

// numericYear casts a raw year value, tolerating a trailing float cast
// ("2019.0").
func numericYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if sinan.IsNull(s) {
		return 0, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// elapsedDaysMax is the sanity window on the occurrence→notification gap:
// ten years. A data-quality guard, not a domain truth.
const elapsedDaysMax = 3650

func (e *Engine) elapsedDays(f *sinan.Frame) Outcome {
	if populatedInt(f, func(r *sinan.Record) *int { return r.TempoOcorDen }) {
		return Skipped
	}
	if !f.Has(sinan.ColDtNotific) || !f.Has(sinan.ColDtOcor) {
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		if r.NotifDate == nil || r.OcorDate == nil {
			continue
		}
		days := int(r.NotifDate.Sub(*r.OcorDate).Hours() / 24)
		if days < 0 || days > elapsedDaysMax {
			continue
		}
		d := days
		r.TempoOcorDen = &d
	}
	f.AddColumn(sinan.ColTempoOcorDen)
	return Applied
}

func populatedInt(f *sinan.Frame, get func(*sinan.Record) *int) bool {
	for i := range f.Records {
		if get(&f.Records[i]) != nil {
			return true
		}
	}
	return false
}
