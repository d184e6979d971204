// Package disambiguate implements the Diagnosis Disambiguator (§4.6):
// negation pruning, acute/chronic preference, vital-support re-ranking,
// and the final stable sort.
package disambiguate

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

var qualifierPrefix = regexp.MustCompile(`(?i)^(acute|chronic|subacute|unspecified)\s+(on\s+chronic\s+)?`)

// stem strips a leading acuity qualifier so "Acute Heart Failure" and
// "Chronic Heart Failure" compare equal.
func stem(canonical string) string {
	s := qualifierPrefix.ReplaceAllString(strings.ToLower(strings.TrimSpace(canonical)), "")
	return strings.TrimSpace(s)
}

var (
	afibPattern        = regexp.MustCompile(`(?i)atrial fibrillation|tachyarrhythmia|afib`)
	hypertensivePattern = regexp.MustCompile(`(?i)hypertensive emergency`)
)

// Disambiguate removes negated diagnoses, resolves acute/chronic
// conflicts, re-ranks by vital support, and returns a stably sorted
// result. Acuity affects ranking only through the acute/chronic pair
// rule; temporal context markers are not used for re-ranking.
func Disambiguate(diagnoses []domain.Diagnosis, context []domain.ContextMarker, vitals []domain.Vital) []domain.Diagnosis {
	kept := pruneNegated(diagnoses, context)
	kept = resolveAcuityPairs(kept)
	kept = applyVitalSupport(kept, vitals)

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Source.SourceRank() != b.Source.SourceRank() {
			return a.Source.SourceRank() < b.Source.SourceRank()
		}
		return a.Canonical < b.Canonical
	})
	return kept
}

// pruneNegated drops any diagnosis whose stem falls within a negation
// marker's bound entity phrase (§4.6 "Remove any diagnosis whose stem is
// covered by a negation marker").
func pruneNegated(diagnoses []domain.Diagnosis, context []domain.ContextMarker) []domain.Diagnosis {
	var negated []string
	for _, c := range context {
		if c.Kind == domain.ContextNegation {
			negated = append(negated, strings.ToLower(c.Entity))
		}
	}
	if len(negated) == 0 {
		return diagnoses
	}

	var out []domain.Diagnosis
	for _, d := range diagnoses {
		s := stem(d.Canonical)
		covered := false
		for _, n := range negated {
			if s != "" && (strings.Contains(n, s) || strings.Contains(s, n)) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, d)
		}
	}
	return out
}

// resolveAcuityPairs finds {Acute X, Chronic X} pairs sharing a stem and
// keeps the Acute variant with a +0.2 confidence boost, dropping Chronic
// (§4.6). Multiple Acute/Unspecified entries for the same stem are kept
// as-is; only a genuine Acute/Chronic pair triggers the resolution.
func resolveAcuityPairs(diagnoses []domain.Diagnosis) []domain.Diagnosis {
	byStem := make(map[string][]int)
	for i, d := range diagnoses {
		s := stem(d.Canonical)
		byStem[s] = append(byStem[s], i)
	}

	drop := make(map[int]bool)
	boost := make(map[int]bool)
	for _, idxs := range byStem {
		if len(idxs) < 2 {
			continue
		}
		var acuteIdx, chronicIdx = -1, -1
		for _, i := range idxs {
			switch diagnoses[i].Acuity {
			case domain.AcuityAcute:
				if acuteIdx == -1 || diagnoses[i].Confidence > diagnoses[acuteIdx].Confidence {
					acuteIdx = i
				}
			case domain.AcuityChronic:
				if chronicIdx == -1 || diagnoses[i].Confidence > diagnoses[chronicIdx].Confidence {
					chronicIdx = i
				}
			}
		}
		if acuteIdx >= 0 && chronicIdx >= 0 {
			boost[acuteIdx] = true
			drop[chronicIdx] = true
		}
	}

	var out []domain.Diagnosis
	for i, d := range diagnoses {
		if drop[i] {
			continue
		}
		if boost[i] {
			d.Confidence += 0.2
			if d.Confidence > 1.0 {
				d.Confidence = 1.0
			}
		}
		out = append(out, d)
	}
	return out
}

// applyVitalSupport boosts diagnoses whose canonical text names a
// condition corroborated by an abnormal vital (§4.6).
func applyVitalSupport(diagnoses []domain.Diagnosis, vitals []domain.Vital) []domain.Diagnosis {
	hrHigh := false
	bpCritical := false
	for _, v := range vitals {
		switch v.Kind {
		case domain.VitalHR:
			if v.Value.Kind == domain.ValueExact && v.Value.Number > 100 {
				hrHigh = true
			}
		case domain.VitalBP:
			if v.Flag == domain.FlagCritical {
				bpCritical = true
			}
		}
	}

	out := make([]domain.Diagnosis, len(diagnoses))
	for i, d := range diagnoses {
		if hrHigh && afibPattern.MatchString(d.Canonical) {
			d.Confidence += 0.1
		}
		if bpCritical && hypertensivePattern.MatchString(d.Canonical) {
			d.Confidence += 0.1
		}
		if d.Confidence > 1.0 {
			d.Confidence = 1.0
		}
		out[i] = d
	}
	return out
}
