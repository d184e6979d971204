package extract

import (
	"regexp"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/pkg/clintext"
)

var (
	medBulletPattern = regexp.MustCompile(`^[-*•+]\s*|^\d+[.)]\s*`)
	medRoutePattern  = regexp.MustCompile(`(?i)\b(PO|IV|IM|SC|SQ|SL|PR|topical|inhaled|transdermal)\b`)
	medCorePattern   = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z0-9/\-]*(?:\s+[A-Za-z][A-Za-z0-9/\-]*){0,3}?)\s+(\d+(?:\.\d+)?)\s*(mg|mcg|g|units?|ml|meq)\b\s*(.*)$`)
)

// Medications extracts medication entries from text (typically the
// Medications section body). Each line or bullet is treated as one
// candidate entry; entries that don't fit the name-dose-unit shape are
// skipped rather than reported as malformed, since free-text medication
// lines vary widely (§4.3).
func Medications(text string) ([]domain.Medication, []domain.Warning) {
	var out []domain.Medication
	var warnings []domain.Warning

	for _, raw := range splitMedLines(text) {
		line := medBulletPattern.ReplaceAllString(strings.TrimSpace(raw), "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := medCorePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		dose := m[2]
		unit := strings.ToLower(m[3])
		rest := strings.TrimSpace(m[4])

		route := ""
		if rm := medRoutePattern.FindString(rest); rm != "" {
			route = strings.ToUpper(rm)
			rest = strings.TrimSpace(medRoutePattern.ReplaceAllString(rest, ""))
		}

		freq := clintext.NormalizeFrequency(rest)

		out = append(out, domain.Medication{
			Name:      name,
			Dose:      dose,
			Unit:      unit,
			Route:     route,
			Frequency: freq,
			Raw:       strings.TrimSpace(raw),
		})
	}

	return out, warnings
}

// splitMedLines tolerates one-per-line, semicolon-delimited, and bulleted
// layouts for the Medications section body.
func splitMedLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, part := range strings.Split(line, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
