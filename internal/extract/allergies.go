package extract

import (
	"regexp"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

var (
	nkdaPattern      = regexp.MustCompile(`(?i)\bNKDA\b|\bno known (drug )?allergies\b|\bno known allergies\b|\bnkda\b`)
	allergyBulletPattern = regexp.MustCompile(`^[-*•+]\s*|^\d+[.)]\s*`)
	allergyPairPattern   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 \-]*?)\s*[:\-—]\s*(.+)$`)
	allergyParenPattern  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 \-]*?)\s*\((.+)\)\s*$`)
)

// Allergies extracts allergy entries from text (typically the Allergies
// section body). A line matching NKDA/"no known (drug) allergies" sets
// NKDA=true and yields no Allergy records, per §4.3's explicit
// "NKDA suppresses entity rows" rule.
func Allergies(text string) ([]domain.Allergy, bool) {
	if nkdaPattern.MatchString(text) {
		return nil, true
	}

	var out []domain.Allergy
	for _, raw := range strings.Split(text, "\n") {
		line := allergyBulletPattern.ReplaceAllString(strings.TrimSpace(raw), "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := allergyParenPattern.FindStringSubmatch(line); m != nil {
			out = append(out, domain.Allergy{
				Substance: strings.TrimSpace(m[1]),
				Reaction:  strings.TrimSpace(m[2]),
			})
			continue
		}
		if m := allergyPairPattern.FindStringSubmatch(line); m != nil {
			out = append(out, domain.Allergy{
				Substance: strings.TrimSpace(m[1]),
				Reaction:  strings.TrimSpace(m[2]),
			})
			continue
		}
		out = append(out, domain.Allergy{Substance: line})
	}

	return out, false
}
