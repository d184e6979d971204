// Package section implements the synonym/header scorer (§4.2) and the
// section detector / smart parser (§4.4).
package section

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

// signalEntry is one row of the closed SIGNAL_WORDS table: a canonical
// phrase, the section tag it maps to, and a per-phrase weight used as
// the exact-match score.
type signalEntry struct {
	phrase string
	tag    domain.SectionTag
	weight float64
	tokens []string
}

// SIGNAL_WORDS is the closed header-phrase-to-tag table backing the
// scorer. Phrases are matched case-insensitively with punctuation
// stripped.
var signalWords = buildSignalWords([]struct {
	phrase string
	tag    domain.SectionTag
	weight float64
}{
	{"subjective", domain.Subjective, 0.95},
	{"chief complaint", domain.Subjective, 0.95},
	{"cc", domain.Subjective, 0.9},
	{"history of present illness", domain.HPI, 0.97},
	{"hpi", domain.HPI, 0.95},
	{"present illness", domain.HPI, 0.85},
	{"objective", domain.Objective, 0.95},
	{"exam", domain.Objective, 0.85},
	{"physical exam", domain.Objective, 0.93},
	{"physical examination", domain.Objective, 0.95},
	{"pe", domain.Objective, 0.8},
	{"past medical history", domain.PMH, 0.96},
	{"pmh", domain.PMH, 0.95},
	{"medical history", domain.PMH, 0.85},
	{"past surgical history", domain.PSH, 0.96},
	{"psh", domain.PSH, 0.95},
	{"surgical history", domain.PSH, 0.85},
	{"family history", domain.FamilyHistory, 0.96},
	{"fh", domain.FamilyHistory, 0.9},
	{"social history", domain.SocialHistory, 0.96},
	{"sh", domain.SocialHistory, 0.85},
	{"review of systems", domain.ROS, 0.96},
	{"ros", domain.ROS, 0.95},
	{"systems review", domain.ROS, 0.8},
	{"medications", domain.MedicationsTag, 0.96},
	{"meds", domain.MedicationsTag, 0.9},
	{"current medications", domain.MedicationsTag, 0.95},
	{"home medications", domain.MedicationsTag, 0.93},
	{"allergies", domain.AllergiesTag, 0.96},
	{"allergy", domain.AllergiesTag, 0.93},
	{"drug allergies", domain.AllergiesTag, 0.95},
	{"vitals", domain.VitalsTag, 0.96},
	{"vital signs", domain.VitalsTag, 0.96},
	{"vs", domain.VitalsTag, 0.85},
	{"labs", domain.LabsTag, 0.96},
	{"laboratory", domain.LabsTag, 0.9},
	{"laboratory results", domain.LabsTag, 0.95},
	{"lab results", domain.LabsTag, 0.93},
	{"imaging", domain.Imaging, 0.95},
	{"radiology", domain.Imaging, 0.9},
	{"ekg", domain.Imaging, 0.75},
	{"echo", domain.Imaging, 0.75},
	{"assessment", domain.Assessment, 0.96},
	{"impression", domain.Assessment, 0.93},
	{"assessment and plan", domain.Assessment, 0.95},
	{"a/p", domain.Assessment, 0.9},
	{"a&p", domain.Assessment, 0.9},
	{"diagnosis", domain.Assessment, 0.85},
	{"diagnoses", domain.Assessment, 0.85},
	{"plan", domain.Plan, 0.96},
	{"plan of care", domain.Plan, 0.93},
	{"recommendations", domain.Plan, 0.85},
})

func buildSignalWords(rows []struct {
	phrase string
	tag    domain.SectionTag
	weight float64
}) []signalEntry {
	out := make([]signalEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, signalEntry{
			phrase: r.phrase,
			tag:    r.tag,
			weight: r.weight,
			tokens: tokenize(r.phrase),
		})
	}
	return out
}

var punctuationPattern = regexp.MustCompile(`[^a-z0-9&/ ]`)

// normalizeHeader lowercases, strips punctuation (keeping & and / which
// carry meaning for A/P and A&P), and collapses whitespace.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctuationPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func tokenize(s string) []string {
	return strings.Fields(normalizeHeader(s))
}

// Score is the result of scoring a candidate header string against the
// signal table.
type Score struct {
	Canonical domain.SectionTag
	Value     float64
}

// ScoreMatch scores a candidate header string, optionally boosted by a
// sample of the section body when the caller has one available (§4.2).
func ScoreMatch(headerText string, bodySample string) Score {
	norm := normalizeHeader(headerText)
	if norm == "" {
		return Score{Canonical: domain.Unknown, Value: 0}
	}
	headerTokens := strings.Fields(norm)

	// Exact match.
	for _, e := range signalWords {
		if e.phrase == norm {
			return boost(Score{Canonical: e.tag, Value: maxF(e.weight, 0.9)}, e.tag, bodySample)
		}
	}

	// Candidate token-subset matches, scored by covered-token ratio.
	type candidate struct {
		entry signalEntry
		score float64
	}
	var candidates []candidate
	headerSet := toSet(headerTokens)
	for _, e := range signalWords {
		covered := 0
		for _, t := range e.tokens {
			if headerSet[t] {
				covered++
			}
		}
		if covered == 0 {
			continue
		}
		ratio := float64(covered) / float64(len(e.tokens))
		if ratio < 1.0 && covered == len(e.tokens) {
			ratio = 1.0
		}
		if ratio <= 0 {
			continue
		}
		score := 0.6 + 0.29*ratio
		if score > 0.89 {
			score = 0.89
		}
		candidates = append(candidates, candidate{entry: e, score: score})
	}

	if len(candidates) == 0 {
		return Score{Canonical: domain.Unknown, Value: 0}
	}

	// Ties: (1) higher specificity (more tokens), (2) lexicographic
	// canonical name.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if len(candidates[i].entry.tokens) != len(candidates[j].entry.tokens) {
			return len(candidates[i].entry.tokens) > len(candidates[j].entry.tokens)
		}
		return candidates[i].entry.tag < candidates[j].entry.tag
	})

	best := candidates[0]
	return boost(Score{Canonical: best.entry.tag, Value: best.score}, best.entry.tag, bodySample)
}

func toSet(tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		out[t] = true
	}
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

var (
	bpBodyPattern  = regexp.MustCompile(`(?i)\bBP\b\s*\d{2,3}\s*/\s*\d{2,3}`)
	labBodyPattern = regexp.MustCompile(`(?i)\b(troponin|creatinine|glucose|hgb|hct|wbc|platelets|bnp|inr)\b\s*[:\s]`)
)

// boost applies the body-sample confidence adjustment described in §4.2:
// a BP-shaped body boosts Vitals, lab-name-shaped body boosts Labs.
func boost(s Score, tag domain.SectionTag, bodySample string) Score {
	if bodySample == "" {
		return s
	}
	switch tag {
	case domain.VitalsTag:
		if bpBodyPattern.MatchString(bodySample) {
			s.Value = minF(1.0, s.Value+0.05)
		}
	case domain.LabsTag:
		if labBodyPattern.MatchString(bodySample) {
			s.Value = minF(1.0, s.Value+0.05)
		}
	}
	return s
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
