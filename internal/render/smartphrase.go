package render

import (
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

// smartPhraseCatalog is the opt-in macro expansion table (§4.9, §9 "keep
// the set small and testable"). Only ".vitals" is implemented: it expands
// to every extracted vital joined into one comma-separated line; it does
// not pick out a single vitals line of the note.
var smartPhraseCatalog = []string{".vitals"}

// expandSmartPhrases replaces any catalog shorthand literal in text with
// its expansion. Disabled-mode callers never reach this function, so
// shorthand is left as a literal when SmartPhrase is off (§4.9).
func expandSmartPhrases(text string, parsed domain.ParsedNote) string {
	if !strings.Contains(text, ".vitals") {
		return text
	}
	expansion := lastVitalsLine(parsed.Vitals)
	if expansion == "" {
		return text
	}
	return strings.ReplaceAll(text, ".vitals", expansion)
}

func lastVitalsLine(vitals []domain.Vital) string {
	if len(vitals) == 0 {
		return ""
	}
	var parts []string
	for _, v := range vitals {
		var value string
		if v.Kind == domain.VitalBP {
			value = v.Systolic.String() + "/" + v.Diastolic.String()
		} else {
			value = v.Value.String()
		}
		parts = append(parts, strings.TrimSpace(string(v.Kind)+" "+value+v.Unit))
	}
	return strings.Join(parts, ", ")
}
