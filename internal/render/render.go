// Package render implements the Template Renderer (§4.9): normalizes a
// ParsedNote into a per-slot text map and composes it into a
// deterministic, line-oriented document per the chosen template.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/plan"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

const (
	placeholderDash    = "—"
	placeholderPending = "Not documented"
)

// Render composes a RenderedNote from parsed per options (§4.9/§4.10's
// render_note). It never fails on a well-typed ParsedNote: missing slots
// render as explicit placeholders. tables supplies the evidence-based
// plan content (§4.8) folded into the Plan slot.
func Render(parsed domain.ParsedNote, opts domain.Options, tables *reference.Tables) domain.RenderedNote {
	tmpl := TemplateFor(opts.TemplateID)
	normalized, unmapped := normalizeSections(parsed)
	evidencePlan, _ := plan.GeneratePlan(parsed.Diagnoses, tables)

	var sb strings.Builder
	var order []domain.SectionTag
	first := true
	for _, slot := range tmpl.Slots {
		body := fillSlot(slot, parsed, normalized, opts, evidencePlan)
		if !first {
			sb.WriteString("\n")
		}
		first = false
		sb.WriteString(slotLabels[slot])
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
		if tag, ok := slotToTag(slot); ok {
			order = append(order, tag)
		}
	}

	unmappedOut := map[string]string{}
	if opts.IncludeUnmapped && len(unmapped) > 0 {
		sb.WriteString("\nUnmapped:\n")
		keys := make([]string, 0, len(unmapped))
		for k := range unmapped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(unmapped[k])
			sb.WriteString("\n")
			unmappedOut[k] = unmapped[k]
		}
	}

	return domain.RenderedNote{
		TemplateID:      tmpl.ID,
		Text:            strings.TrimRight(sb.String(), "\n") + "\n",
		SectionOrder:    order,
		UnmappedContent: unmappedOut,
	}
}

func slotToTag(slot Slot) (domain.SectionTag, bool) {
	for tag, s := range sectionNormalization {
		if s == slot {
			return tag, true
		}
	}
	return domain.Unknown, false
}

// normalizeSections implements normalize_sections(parsed): source section
// raw text keyed by slot, plus anything recorded under the Unknown tag
// kept for the Unmapped appendix (§4.9).
func normalizeSections(parsed domain.ParsedNote) (map[Slot]string, map[string]string) {
	normalized := make(map[Slot]string)
	unmapped := make(map[string]string)

	for tag, section := range parsed.Sections {
		if tag == domain.Unknown {
			header := section.SourceHeaderText
			if header == "" {
				header = "Unrecognized"
			}
			unmapped[header] = section.RawText
			continue
		}
		slot, ok := sectionNormalization[tag]
		if !ok {
			continue
		}
		normalized[slot] = section.RawText
	}
	return normalized, unmapped
}

func fillSlot(slot Slot, parsed domain.ParsedNote, normalized map[Slot]string, opts domain.Options, evidencePlan string) string {
	var text string
	switch slot {
	case SlotDemographics:
		text = renderDemographics(parsed.Patient)
	case SlotVitals:
		text = renderVitals(parsed.Vitals, opts)
	case SlotLabs:
		text = renderLabs(parsed.Labs)
	case SlotMedications:
		text = renderMedications(parsed.Medications)
	case SlotAllergies:
		text = renderAllergies(parsed.Allergies, parsed.NKDA)
	case SlotAssessment:
		text = renderAssessment(parsed.Diagnoses, parsed.SafetyWarnings)
	case SlotPlan:
		text = renderPlan(normalized[SlotPlan], evidencePlan, parsed.SafetyWarnings)
	default:
		text = normalized[slot]
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = placeholderPending
	}
	if opts.SmartPhrase {
		text = expandSmartPhrases(text, parsed)
	}
	return text
}

func renderDemographics(p domain.Patient) string {
	age := placeholderDash
	if p.Age != nil {
		age = fmt.Sprintf("%d", *p.Age)
	}
	gender := p.Gender
	if gender == "" {
		gender = placeholderDash
	}
	mrn := p.MRN
	if mrn == "" {
		mrn = placeholderDash
	}
	dob := p.DOB
	if dob == "" {
		dob = placeholderDash
	}
	return fmt.Sprintf("Age: %s  Gender: %s  MRN: %s  DOB: %s", age, gender, mrn, dob)
}

func renderVitals(vitals []domain.Vital, opts domain.Options) string {
	if len(vitals) == 0 {
		return ""
	}
	var lines []string
	for _, v := range vitals {
		lines = append(lines, renderVitalLine(v, opts.LocaleUnits))
	}
	return strings.Join(lines, "\n")
}

// renderVitalLine formats one vital. locale only affects Temp, the one
// vital whose extracted unit genuinely varies by convention (°F vs °C);
// weight/height/other units are rendered as extracted (§4.9's
// "locale_units affects rendering, not parsing").
func renderVitalLine(v domain.Vital, locale domain.LocaleUnits) string {
	var value string
	unit := v.Unit
	switch {
	case v.Kind == domain.VitalBP:
		value = fmt.Sprintf("%s/%s", v.Systolic.String(), v.Diastolic.String())
	case v.Kind == domain.VitalTemp && v.Value.Kind == domain.ValueExact:
		n, u := convertTemp(v.Value.Number, unit, locale)
		value = trimFloat(n)
		unit = u
	default:
		value = v.Value.String()
	}
	line := fmt.Sprintf("%s: %s", string(v.Kind), strings.TrimSpace(value+" "+unit))
	if v.Flag != domain.FlagNone && v.Flag != "" {
		line += fmt.Sprintf(" (%s)", v.Flag)
	}
	return line
}

func convertTemp(n float64, unit string, locale domain.LocaleUnits) (float64, string) {
	isF := strings.Contains(unit, "F")
	switch {
	case locale == domain.LocaleSI && isF:
		return (n - 32) * 5 / 9, "°C"
	case locale == domain.LocaleUS && strings.Contains(unit, "C"):
		return n*9/5 + 32, "°F"
	default:
		return n, unit
	}
}

func renderLabs(labs []domain.Lab) string {
	if len(labs) == 0 {
		return ""
	}
	var lines []string
	for _, l := range labs {
		line := fmt.Sprintf("%s: %s %s", l.NameCanonical, l.Value.String(), l.Unit)
		if l.RefLow != nil && l.RefHigh != nil {
			line += fmt.Sprintf(" [ref %s-%s]", trimFloat(*l.RefLow), trimFloat(*l.RefHigh))
		}
		if l.Flag != domain.FlagNone && l.Flag != "" {
			line += fmt.Sprintf(" (%s)", l.Flag)
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.Join(lines, "\n")
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func renderMedications(meds []domain.Medication) string {
	if len(meds) == 0 {
		return ""
	}
	var lines []string
	for _, m := range meds {
		parts := []string{m.Name}
		if m.Dose != "" {
			parts = append(parts, m.Dose+m.Unit)
		}
		if m.Route != "" {
			parts = append(parts, m.Route)
		}
		if m.Frequency != "" {
			parts = append(parts, m.Frequency)
		}
		lines = append(lines, "- "+strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

func renderAllergies(allergies []domain.Allergy, nkda bool) string {
	if nkda {
		return "NKDA"
	}
	if len(allergies) == 0 {
		return ""
	}
	var lines []string
	for _, a := range allergies {
		if a.Reaction != "" {
			lines = append(lines, fmt.Sprintf("- %s (%s)", a.Substance, a.Reaction))
		} else {
			lines = append(lines, "- "+a.Substance)
		}
	}
	return strings.Join(lines, "\n")
}

func renderAssessment(diagnoses []domain.Diagnosis, warnings []domain.SafetyWarning) string {
	if len(diagnoses) == 0 {
		return ""
	}
	var lines []string
	for i, d := range diagnoses {
		label := d.Text
		if d.Acuity != domain.AcuityUnspecified {
			label = fmt.Sprintf("%s (%s)", d.Text, d.Acuity)
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, label))
	}
	for _, w := range warnings {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(w.Severity)), w.Code, w.Message))
	}
	return strings.Join(lines, "\n")
}

func renderPlan(explicit, evidencePlan string, warnings []domain.SafetyWarning) string {
	seen := make(map[string]bool)
	var lines []string
	add := func(line string) {
		key := strings.ToLower(strings.TrimSpace(line))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		lines = append(lines, line)
	}

	for _, raw := range strings.Split(explicit, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		add(raw)
	}
	for _, raw := range strings.Split(evidencePlan, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		add(raw)
	}
	for _, w := range warnings {
		if w.Action != "" {
			add("- " + w.Action)
		}
	}
	return strings.Join(lines, "\n")
}
