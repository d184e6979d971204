package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

// adminBlocklist lines are never labs regardless of how they're shaped
// (§4.3, §8 "No-admin-as-lab").
var adminBlocklist = map[string]bool{
	"date": true, "time": true, "patient": true, "mrn": true, "name": true,
}

var (
	flagSuffixPattern = regexp.MustCompile(`(?i)\s*(H|High|L|Low|\*|↑|↓)\s*$`)
	rangeSuffixPattern = regexp.MustCompile(`[\[(]?\s*(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?)\s*[\])]?\s*$`)
	rangeWordPattern   = regexp.MustCompile(`(?i)range\s+(-?\d+(?:\.\d+)?)\s*-\s*(-?\d+(?:\.\d+)?)`)
	labCorePattern     = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 \-]*?)(?:\s*/\s*([A-Za-z][A-Za-z0-9 \-]*?))?\s*:?\s*(<=|>=|<|>)?\s*(-?\d+(?:\.\d+)?)(?:\s*/\s*(-?\d+(?:\.\d+)?))?\s*([A-Za-z%/^0-9]*)\s*$`)
)

// Labs extracts laboratory results from text (typically the Labs section
// body). Admin header lines (Date, Time, Patient, MRN, Name) are always
// excluded; only names resolvable against tables' alias table are kept
// (§4.3 allowlist gate, §8 Allowlist property).
func Labs(text string, tables *reference.Tables) ([]domain.Lab, []domain.Warning) {
	var out []domain.Lab
	var warnings []domain.Warning

	for _, fragment := range splitFragments(text) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}

		flag := domain.FlagNone
		if m := flagSuffixPattern.FindStringSubmatch(fragment); m != nil {
			flag = parseFlag(m[1])
			fragment = strings.TrimSpace(fragment[:len(fragment)-len(m[0])])
		}

		var refLow, refHigh *float64
		if m := rangeWordPattern.FindStringSubmatch(fragment); m != nil {
			lo, _ := strconv.ParseFloat(m[1], 64)
			hi, _ := strconv.ParseFloat(m[2], 64)
			refLow, refHigh = &lo, &hi
			fragment = strings.TrimSpace(strings.Replace(fragment, m[0], "", 1))
		} else if m := rangeSuffixPattern.FindStringSubmatch(fragment); m != nil && strings.ContainsAny(fragment[:len(fragment)-len(m[0])], "0123456789") {
			lo, _ := strconv.ParseFloat(m[1], 64)
			hi, _ := strconv.ParseFloat(m[2], 64)
			refLow, refHigh = &lo, &hi
			fragment = strings.TrimSpace(fragment[:len(fragment)-len(m[0])])
		}

		m := labCorePattern.FindStringSubmatch(fragment)
		if m == nil {
			continue
		}
		name1, name2 := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		comparator := m[3]
		val1Str, val2Str := m[4], m[5]
		unit := strings.TrimSpace(m[6])

		if isAdminLabel(name1) {
			continue
		}

		if name2 != "" && val2Str != "" {
			lab1, ok1 := buildLab(tables, name1, comparator, val1Str, unit, refLow, refHigh, flag, fragment)
			lab2, ok2 := buildLab(tables, name2, comparator, val2Str, unit, refLow, refHigh, flag, fragment)
			if ok1 {
				out = append(out, lab1)
			}
			if ok2 {
				out = append(out, lab2)
			}
			continue
		}

		lab, ok := buildLab(tables, name1, comparator, val1Str, unit, refLow, refHigh, flag, fragment)
		if ok {
			out = append(out, lab)
		} else if name1 != "" && val1Str != "" && !isAdminLabel(name1) {
			warnings = append(warnings, domain.Warning{Code: domain.WarnUnparseableLab})
		}
	}

	return out, warnings
}

func isAdminLabel(name string) bool {
	return adminBlocklist[strings.ToLower(strings.TrimSpace(name))]
}

func buildLab(tables *reference.Tables, name, comparator, valStr, unit string, refLow, refHigh *float64, flag domain.Flag, raw string) (domain.Lab, bool) {
	if name == "" || valStr == "" || isAdminLabel(name) {
		return domain.Lab{}, false
	}
	canonical, ok := tables.CanonicalLabName(name)
	if !ok {
		return domain.Lab{}, false
	}
	n, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return domain.Lab{}, false
	}
	var value domain.Value
	if comparator != "" {
		value = domain.ComparatorValue(domain.Comparator(comparator), n)
	} else {
		value = domain.ExactValue(n)
	}

	ref, hasRef := tables.LabRange(canonical)
	if unit == "" && hasRef {
		unit = ref.Units
	}
	if refLow == nil && hasRef {
		refLow = ref.Low
	}
	if refHigh == nil && hasRef {
		refHigh = ref.High
	}
	if flag == domain.FlagNone && refLow != nil && refHigh != nil && comparator == "" {
		if n < *refLow {
			flag = domain.FlagLow
		} else if n > *refHigh {
			flag = domain.FlagHigh
		}
	}

	return domain.Lab{
		NameCanonical: canonical,
		Value:         value,
		Unit:          unit,
		RefLow:        refLow,
		RefHigh:       refHigh,
		Flag:          flag,
		Raw:           strings.TrimSpace(raw),
	}, true
}

func parseFlag(tok string) domain.Flag {
	switch strings.ToLower(tok) {
	case "h", "high", "↑":
		return domain.FlagHigh
	case "l", "low", "↓":
		return domain.FlagLow
	case "*":
		return domain.FlagStar
	default:
		return domain.FlagNone
	}
}

// splitFragments breaks a section body into candidate lab fragments,
// tolerating both one-per-line and comma-separated inline layouts (e.g.
// "Platelets 45, Creatinine 2.5, Potassium 5.5").
func splitFragments(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "-")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
