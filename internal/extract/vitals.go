// Package extract implements the entity-extractor family (§4.3): vitals,
// labs, medications, allergies, diagnoses, and demographics. Vitals, Labs,
// Medications and Diagnoses return a possibly-empty slice plus warnings;
// Allergies returns its slice plus an NKDA flag, and Demographics a single
// Patient. None panics on malformed input. Vital, Lab and Medication
// records keep their source text in Raw; a fragment that does not parse
// produces no record (Labs and BP parsing add a warning in some such cases).
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/pkg/clintext"
)

var (
	bpPattern = regexp.MustCompile(`(?i)\bBP\b\s*:?\s*(\d{2,3}(?:\s*-\s*\d{2,3})?)\s*/\s*(\d{2,3}(?:\s*-\s*\d{2,3})?)`)
	hrPattern = regexp.MustCompile(`(?i)\bHR\b\s*:?\s*(\d{2,3})\s*(bpm|/min)?`)
	rrPattern = regexp.MustCompile(`(?i)\bRR\b\s*:?\s*(\d{1,3})\s*(/min)?`)
	tempPattern = regexp.MustCompile(`(?i)\bTemp\b\.?\s*:?\s*(\d{2,3}(?:\.\d+)?)\s*°?\s*(deg)?\s*(F|C)?\b`)
	spo2Pattern = regexp.MustCompile(`(?i)\bSpO2\b\s*:?\s*(\d{2,3})\s*%?(\s*on\s+(room air|ra|nc\s*\d*\s*l/?min))?`)
	weightPattern = regexp.MustCompile(`(?i)\bWeight\b\s*:?\s*(\d{2,3}(?:\.\d+)?)\s*(kg|lb|lbs)?`)
	heightPattern = regexp.MustCompile(`(?i)\bHeight\b\s*:?\s*(\d{2,3}(?:\.\d+)?)\s*(cm|in)?`)
	bmiPattern    = regexp.MustCompile(`(?i)\bBMI\b\s*:?\s*(\d{1,3}(?:\.\d+)?)`)
)

// Vitals extracts vital-sign measurements from text (typically the
// Vitals/Objective section body, but safe to run over any text).
func Vitals(text string) ([]domain.Vital, []domain.Warning) {
	var out []domain.Vital
	var warnings []domain.Warning
	p := clintext.NewParser()

	for _, m := range bpPattern.FindAllStringSubmatch(text, -1) {
		sys, sysOK := parseBPComponent(p, m[1])
		dia, diaOK := parseBPComponent(p, m[2])
		if !sysOK || !diaOK {
			warnings = append(warnings, domain.Warning{Code: domain.WarnUnparseableVital})
			continue
		}
		out = append(out, domain.Vital{
			Kind:      domain.VitalBP,
			Systolic:  sys,
			Diastolic: dia,
			Unit:      "mmHg",
			Flag:      flagBP(sys, dia),
			Raw:       strings.TrimSpace(m[0]),
		})
	}

	for _, m := range hrPattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		out = append(out, domain.Vital{Kind: domain.VitalHR, Value: domain.ExactValue(n), Unit: "bpm", Flag: flagHR(n), Raw: strings.TrimSpace(m[0])})
	}

	for _, m := range rrPattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		out = append(out, domain.Vital{Kind: domain.VitalRR, Value: domain.ExactValue(n), Unit: "/min", Raw: strings.TrimSpace(m[0])})
	}

	for _, m := range tempPattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		unit := clintext.NormalizeDegree(m[3])
		if unit == "" {
			unit = "F"
		}
		out = append(out, domain.Vital{Kind: domain.VitalTemp, Value: domain.ExactValue(n), Unit: "°" + unit, Raw: strings.TrimSpace(m[0])})
	}

	for _, m := range spo2Pattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		raw := strings.TrimSpace(m[0])
		out = append(out, domain.Vital{Kind: domain.VitalSpO2, Value: domain.ExactValue(n), Unit: "%", Flag: flagSpO2(n), Raw: raw})
	}

	for _, m := range weightPattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		unit := strings.ToLower(m[2])
		if unit == "" {
			unit = "kg"
		}
		out = append(out, domain.Vital{Kind: domain.VitalWeight, Value: domain.ExactValue(n), Unit: unit, Raw: strings.TrimSpace(m[0])})
	}

	for _, m := range heightPattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		unit := strings.ToLower(m[2])
		if unit == "" {
			unit = "cm"
		}
		out = append(out, domain.Vital{Kind: domain.VitalHeight, Value: domain.ExactValue(n), Unit: unit, Raw: strings.TrimSpace(m[0])})
	}

	for _, m := range bmiPattern.FindAllStringSubmatch(text, -1) {
		n, ok := parseFloat(m[1])
		if !ok {
			continue
		}
		out = append(out, domain.Vital{Kind: domain.VitalBMI, Value: domain.ExactValue(n), Raw: strings.TrimSpace(m[0])})
	}

	return out, warnings
}

func parseBPComponent(p *clintext.Parser, tok string) (domain.Value, bool) {
	tok = strings.ReplaceAll(tok, " ", "")
	return p.ParseValue(tok)
}

func repValue(v domain.Value) float64 {
	switch v.Kind {
	case domain.ValueRange:
		return v.Low
	default:
		return v.Number
	}
}

func flagBP(sys, dia domain.Value) domain.Flag {
	s, d := repValue(sys), repValue(dia)
	switch {
	case s >= 180 || d >= 110:
		return domain.FlagCritical
	case s >= 140 || d >= 90:
		return domain.FlagHigh
	case s < 90 || d < 60:
		return domain.FlagLow
	default:
		return domain.FlagNone
	}
}

func parseFloat(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func flagHR(n float64) domain.Flag {
	switch {
	case n < 50:
		return domain.FlagLow
	case n > 100:
		return domain.FlagHigh
	default:
		return domain.FlagNone
	}
}

func flagSpO2(n float64) domain.Flag {
	switch {
	case n < 90:
		return domain.FlagCritical
	case n < 95:
		return domain.FlagLow
	default:
		return domain.FlagNone
	}
}
