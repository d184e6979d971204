// Package clintext provides the small numeric-token parsing helpers
// shared by the entity extractors: comparator-bound values ("<0.5"),
// min-max ranges ("120-140"), and unit-synonym normalization. It is
// structured as a Parser (turns a token into a domain.Value) paired with
// a Validator (sanity-checks the result), the same split pkg/hgvs uses
// for HGVS notation in the teacher repository this module is adapted
// from.
package clintext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

var (
	comparatorPattern = regexp.MustCompile(`^(<=|>=|<|>)\s*(-?\d+(?:\.\d+)?)$`)
	rangePattern      = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?)$`)
	exactPattern      = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)$`)
)

// Parser turns a raw numeric token into a domain.Value tagged variant.
type Parser struct{}

// NewParser creates a token Parser. It holds no state; a single instance
// may be reused across calls and goroutines.
func NewParser() *Parser { return &Parser{} }

// ParseValue recognizes an exact number, a comparator-bound number, or a
// min-max range in tok. It returns ok=false when tok is not a recognized
// numeric token — callers fall back to preserving the raw text.
func (p *Parser) ParseValue(tok string) (domain.Value, bool) {
	tok = strings.TrimSpace(tok)

	if m := comparatorPattern.FindStringSubmatch(tok); m != nil {
		n, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return domain.Value{}, false
		}
		return domain.ComparatorValue(domain.Comparator(m[1]), n), true
	}

	if m := rangePattern.FindStringSubmatch(tok); m != nil {
		low, errLow := strconv.ParseFloat(m[1], 64)
		high, errHigh := strconv.ParseFloat(m[2], 64)
		if errLow != nil || errHigh != nil {
			return domain.Value{}, false
		}
		return domain.RangeValue(low, high), true
	}

	if m := exactPattern.FindStringSubmatch(tok); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return domain.Value{}, false
		}
		return domain.ExactValue(n), true
	}

	return domain.Value{}, false
}

// Validator sanity-checks parsed values against a plausible physiological
// bound. No extractor in this module calls it.
type Validator struct{}

// NewValidator creates a Validator. It holds no state.
func NewValidator() *Validator { return &Validator{} }

// InPlausibleRange reports whether v's representative number(s) fall
// within [min, max]. Range and Comparator values are checked on their
// bounding number(s).
func (vd *Validator) InPlausibleRange(v domain.Value, min, max float64) bool {
	switch v.Kind {
	case domain.ValueExact, domain.ValueComparator:
		return v.Number >= min && v.Number <= max
	case domain.ValueRange:
		return v.Low >= min && v.High <= max && v.Low <= v.High
	default:
		return false
	}
}

// freqSynonyms canonicalizes medication frequency shorthand (§4.3).
var freqSynonyms = map[string]string{
	"qd": "daily", "q.d.": "daily", "q.d": "daily", "od": "daily", "daily": "daily", "once daily": "daily",
	"bid": "bid", "b.i.d.": "bid", "b.i.d": "bid", "q12h": "bid", "twice daily": "bid", "twice a day": "bid",
	"tid": "tid", "t.i.d.": "tid", "t.i.d": "tid", "q8h": "tid", "three times daily": "tid", "three times a day": "tid",
	"qid": "qid", "q.i.d.": "qid", "q.i.d": "qid", "q6h": "qid", "four times daily": "qid", "four times a day": "qid",
	"qhs": "qhs", "q.h.s.": "qhs", "at bedtime": "qhs", "nightly": "qhs",
	"prn": "prn", "as needed": "prn",
	"qod": "qod", "every other day": "qod",
	"qweek": "weekly", "q week": "weekly", "weekly": "weekly", "once weekly": "weekly",
}

// NormalizeFrequency maps a raw medication-frequency token to its
// canonical spelling, or returns the lowercased/trimmed input unchanged
// if it has no known synonym.
func NormalizeFrequency(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimRight(key, ".")
	if canon, ok := freqSynonyms[key]; ok {
		return canon
	}
	if canon, ok := freqSynonyms[key+"."]; ok {
		return canon
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeDegree canonicalizes a temperature unit spelling in vitals: it
// strips "°" and "deg", maps f/fahrenheit to "F" and c/celsius to "C", and
// returns anything else uppercased.
func NormalizeDegree(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "°", "")
	s = strings.ReplaceAll(s, "deg", "")
	s = strings.TrimSpace(s)
	switch s {
	case "f", "fahrenheit":
		return "F"
	case "c", "celsius":
		return "C"
	default:
		return strings.ToUpper(s)
	}
}
