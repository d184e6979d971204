// Package plan implements the Evidence-Based Plan Generator (§4.8): one
// block per recognized diagnosis key, in diagnosis-confidence order,
// with deduplicated bullets and literal guideline-class tags.
package plan

import (
	"sort"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

// diagnosisKeyAliases maps loosely-worded canonical diagnosis text to the
// cardiology_diagnoses.json id it recognizes. Matching is substring,
// case-insensitive, checked in table order so more specific keys (nstemi)
// are tried before looser ones that could also match (stemi).
var diagnosisKeyAliases = []struct {
	id      string
	matches []string
}{
	{"nstemi", []string{"nstemi", "non-st elevation", "non st elevation myocardial infarction"}},
	{"stemi", []string{"stemi", "st elevation", "st-elevation myocardial infarction"}},
	{"afib", []string{"afib", "atrial fibrillation"}},
	{"hfref", []string{"hfref", "heart failure with reduced ejection fraction", "systolic heart failure"}},
	{"hypertensive_emergency", []string{"hypertensive emergency", "hypertensive crisis"}},
	{"pe", []string{"pulmonary embolism", "pe "}},
}

func keyFor(canonical string) (string, bool) {
	lc := strings.ToLower(canonical)
	for _, row := range diagnosisKeyAliases {
		for _, m := range row.matches {
			if strings.Contains(lc, m) {
				return row.id, true
			}
		}
	}
	return "", false
}

// GeneratePlan builds the plan text for the diagnoses that recognize a
// cardiology_diagnoses.json key, in diagnosis-confidence order. It
// returns an empty string (and false) if no diagnosis maps to a
// recognized key (§4.8 "Emits nothing if no recognized key maps").
func GeneratePlan(diagnoses []domain.Diagnosis, tables *reference.Tables) (string, bool) {
	type matched struct {
		id         string
		confidence float64
	}
	var ordered []matched
	seen := make(map[string]bool)
	for _, d := range diagnoses {
		id, ok := keyFor(d.Canonical)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, matched{id: id, confidence: d.Confidence})
	}
	if len(ordered) == 0 {
		return "", false
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].confidence > ordered[j].confidence
	})

	var blocks []string
	for _, m := range ordered {
		dx, ok := tables.DiagnosisByID(m.id)
		if !ok {
			continue
		}
		blocks = append(blocks, renderBlock(dx))
	}
	if len(blocks) == 0 {
		return "", false
	}
	return strings.Join(blocks, "\n\n"), true
}

func renderBlock(dx reference.CardiologyDiagnosis) string {
	var sb strings.Builder
	sb.WriteString(dx.Name)
	sb.WriteString("\n")

	seenBullets := make(map[string]bool)
	writeBullets := func(label string, items []string) {
		var fresh []string
		for _, item := range items {
			if seenBullets[item] {
				continue
			}
			seenBullets[item] = true
			fresh = append(fresh, item)
		}
		if len(fresh) == 0 {
			return
		}
		sb.WriteString(label)
		sb.WriteString(":\n")
		for _, item := range fresh {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	writeBullets("Workup", dx.Workup)
	writeBullets("Management", dx.Management)
	writeBullets("Pearls", dx.Pearls)

	if len(dx.Guidelines) > 0 {
		sb.WriteString("Guidelines: ")
		sb.WriteString(strings.Join(dx.Guidelines, "; "))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
