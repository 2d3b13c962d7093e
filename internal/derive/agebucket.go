package derive

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/obs-infancia/sinanetl/internal/sinan"
)

// Bucket labels, contiguous and non-overlapping over ages 0-17.
const (
	Bucket0to1   = "0-1 anos"
	Bucket2to5   = "2-5 anos"
	Bucket6to9   = "6-9 anos"
	Bucket10to13 = "10-13 anos"
	Bucket14to17 = "14-17 anos"
)

// Buckets lists the five age ranges in ascending order.
var Buckets = []string{Bucket0to1, Bucket2to5, Bucket6to9, Bucket10to13, Bucket14to17}

var ageRe = regexp.MustCompile(`(?i)(\d{1,2})\s*ano`)

// fallback table for known exact label forms, zero-padded and not.
var ageLabelYears = func() map[string]int {
	m := map[string]int{"01 ano": 1, "1 ano": 1}
	for i := 2; i <= 17; i++ {
		m[strconv.Itoa(i)+" anos"] = i
		if i < 10 {
			m["0"+strconv.Itoa(i)+" anos"] = i
		}
	}
	return m
}()

// AgeBucket maps a decoded age label to one of the five ranges. Ages outside
// 0-17 and unparseable labels map to the sentinel, never to an adjacent
// bucket.
func AgeBucket(label string) string {
	if sinan.IsNull(label) {
		return sinan.NotInformed
	}
	s := strings.TrimSpace(label)
	if strings.Contains(strings.ToLower(s), "menor de") {
		return Bucket0to1
	}

	years := -1
	if m := ageRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			years = n
		}
	}
	if years < 0 {
		n, ok := ageLabelYears[s]
		if !ok {
			return sinan.NotInformed
		}
		years = n
	}

	switch {
	case years <= 1:
		return Bucket0to1
	case years <= 5:
		return Bucket2to5
	case years <= 9:
		return Bucket6to9
	case years <= 13:
		return Bucket10to13
	case years <= 17:
		return Bucket14to17
	default:
		return sinan.NotInformed
	}
}

func (e *Engine) ageBucket(f *sinan.Frame) Outcome {
	if populated(f, func(r *sinan.Record) string { return r.FaixaEtaria }) {
		return Skipped
	}
	if !f.Has(sinan.ColNuIdadeN) {
		setAll(f, func(r *sinan.Record, v string) { r.FaixaEtaria = v }, sinan.NotInformed)
		f.AddColumn(sinan.ColFaixaEtaria)
		return Defaulted
	}
	for i := range f.Records {
		r := &f.Records[i]
		r.FaixaEtaria = AgeBucket(r.NuIdadeN)
	}
	f.AddColumn(sinan.ColFaixaEtaria)
	return Applied
}
