package extract

import (
	"regexp"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

var (
	dxBulletPattern = regexp.MustCompile(`^[-*•+]\s*|^\d+[.)]\s*`)
	acutePattern    = regexp.MustCompile(`(?i)\bacute\b|\bnew(?:ly)?\s+diagnosed\b`)
	chronicPattern  = regexp.MustCompile(`(?i)\bchronic\b|\blongstanding\b|\bstable\b`)
)

// baseConfidence reflects how trustworthy each source section is as
// evidence of an active diagnosis (§4.6): Assessment lines are the
// clinician's own conclusion, HPI narrates history, ROS is the weakest
// signal (a symptom review, not a diagnosis list).
func baseConfidence(src domain.DiagnosisSource) float64 {
	switch src {
	case domain.SourceAssessment:
		return 0.85
	case domain.SourceHPI:
		return 0.6
	case domain.SourceROS:
		return 0.5
	default:
		return 0.4
	}
}

// Diagnoses extracts candidate diagnoses from one section body, tagging
// each with its source and gating the set through the allow/deny lists
// in tables (§4.6, §8 "Allowlist"/"Blocklist" properties).
func Diagnoses(text string, src domain.DiagnosisSource, tables *reference.Tables) ([]domain.Diagnosis, []domain.Warning) {
	var out []domain.Diagnosis
	var warnings []domain.Warning

	for _, candidate := range splitCandidates(text) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if !tables.IsAllowed(candidate) {
			continue
		}

		acuity := domain.AcuityUnspecified
		switch {
		case acutePattern.MatchString(candidate):
			acuity = domain.AcuityAcute
		case chronicPattern.MatchString(candidate):
			acuity = domain.AcuityChronic
		}

		out = append(out, domain.Diagnosis{
			Text:       candidate,
			Canonical:  canonicalizeDiagnosis(candidate),
			Acuity:     acuity,
			Confidence: baseConfidence(src),
			Source:     src,
		})
	}

	return out, warnings
}

// splitCandidates breaks a section body into candidate diagnosis phrases:
// one per bullet/numbered line, or one per comma/semicolon-delimited
// clause on a plain prose line.
func splitCandidates(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := dxBulletPattern.ReplaceAllString(strings.TrimSpace(raw), "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, part := range splitClauses(line) {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func splitClauses(line string) []string {
	line = strings.TrimRight(line, ".")
	var parts []string
	for _, p := range strings.Split(line, ";") {
		parts = append(parts, strings.Split(p, ",")...)
	}
	return parts
}

// canonicalizeDiagnosis lowercases and trims a diagnosis phrase for
// stable downstream comparison/dedup in the disambiguator.
func canonicalizeDiagnosis(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
