package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

var (
	ageGenderShortPattern = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:yo|y/o|yrs?)\b\s*(M|F|male|female)?\b`)
	ageGenderLongPattern  = regexp.MustCompile(`(?i)\b(\d{1,3})[\s-]year[\s-]old\s*(male|female|man|woman|M|F)?\b`)
	genderOnlyPattern     = regexp.MustCompile(`(?i)\bgender\s*:?\s*(male|female|M|F)\b`)
	mrnPattern            = regexp.MustCompile(`(?i)\bMRN\s*:?\s*([A-Za-z0-9\-]+)`)
	dobPattern            = regexp.MustCompile(`(?i)\bDOB\s*:?\s*([\d/\-]+)`)
)

// Demographics extracts patient age, gender, MRN, and DOB from text
// (typically the note header or Subjective section), tolerating both
// "72 yo M" shorthand and "65-year-old female" prose forms (§4.3).
func Demographics(text string) domain.Patient {
	p := domain.Patient{}

	if m := ageGenderShortPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			age := n
			p.Age = &age
		}
		p.Gender = normalizeGender(m[2])
	} else if m := ageGenderLongPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			age := n
			p.Age = &age
		}
		p.Gender = normalizeGender(m[2])
	}

	if p.Gender == "" {
		if m := genderOnlyPattern.FindStringSubmatch(text); m != nil {
			p.Gender = normalizeGender(m[1])
		}
	}

	if m := mrnPattern.FindStringSubmatch(text); m != nil {
		p.MRN = strings.TrimSpace(m[1])
	}
	if m := dobPattern.FindStringSubmatch(text); m != nil {
		p.DOB = strings.TrimSpace(m[1])
	}

	return p
}

func normalizeGender(tok string) string {
	switch strings.ToLower(strings.TrimSpace(tok)) {
	case "m", "male", "man":
		return "M"
	case "f", "female", "woman":
		return "F"
	default:
		return ""
	}
}
