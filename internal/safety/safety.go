// Package safety implements the Clinical Safety Validator (§4.7): a
// closed table of named rules, each evaluated independently against the
// parsed note's medications, labs, and vitals, in the map[string]*Rule +
// Evaluator-func pattern this module's rule-engine idiom is grounded on.
package safety

import (
	"sort"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

// Rule is one named safety-validation rule.
type Rule struct {
	Code      string
	Severity  domain.WarningSeverity
	Evaluator func(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning
}

var anticoagulants = []string{"warfarin", "apixaban", "rivaroxaban", "dabigatran", "enoxaparin", "heparin", "edoxaban"}
var renalDrugs = []string{"metformin", "gabapentin", "digoxin", "enoxaparin", "dabigatran", "spironolactone"}
var potassiumRetaining = []string{"lisinopril", "losartan", "valsartan", "enalapril", "spironolactone", "eplerenone", "ramipril", "candesartan", "benazepril"}
var rateLimiting = []string{"metoprolol", "carvedilol", "atenolol", "diltiazem", "verapamil", "amiodarone", "bisoprolol"}

// drugClashes is a small canonical set of known-significant interactions,
// each pair matched case-insensitively by substring against Medication
// names (§4.7 "Drug-drug clash list").
var drugClashes = []struct {
	a, b, message string
}{
	{"warfarin", "aspirin", "Warfarin plus aspirin raises bleeding risk"},
	{"warfarin", "ibuprofen", "Warfarin plus NSAID raises bleeding risk"},
	{"digoxin", "amiodarone", "Amiodarone increases digoxin levels"},
	{"lisinopril", "losartan", "Concurrent ACEi and ARB is not recommended"},
	{"metoprolol", "verapamil", "Combined beta-blocker and non-dihydropyridine CCB risks bradycardia/heart block"},
}

func containsAny(name string, list []string) bool {
	lc := strings.ToLower(name)
	for _, d := range list {
		if strings.Contains(lc, d) {
			return true
		}
	}
	return false
}

func medIndexesMatching(meds []domain.Medication, list []string) []int {
	var idxs []int
	for i, m := range meds {
		if containsAny(m.Name, list) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func labValue(l domain.Lab) float64 {
	switch l.Value.Kind {
	case domain.ValueRange:
		return l.Value.Low
	default:
		return l.Value.Number
	}
}

// rules is the closed rule table, built once.
var rules = buildRules()

func buildRules() map[string]*Rule {
	m := make(map[string]*Rule)

	m["ANTI_COAG_LOW_PLT"] = &Rule{
		Code:     "ANTI_COAG_LOW_PLT",
		Severity: domain.SeverityHigh,
		Evaluator: func(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning {
			medIdxs := medIndexesMatching(meds, anticoagulants)
			if len(medIdxs) == 0 {
				return nil
			}
			var labIdxs []int
			for i, l := range labs {
				if l.NameCanonical == "Platelets" && labValue(l) < 50 {
					labIdxs = append(labIdxs, i)
				}
			}
			if len(labIdxs) == 0 {
				return nil
			}
			return []domain.SafetyWarning{{
				Severity: domain.SeverityHigh,
				Code:     "ANTI_COAG_LOW_PLT",
				Message:  "Patient is on anticoagulation with platelet count below 50 x10^9/L",
				Action:   "Reassess anticoagulation; consider hematology consult",
				Triggers: triggerRefs("medication", medIdxs, "lab", labIdxs),
			}}
		},
	}

	m["RENAL_DOSE_REVIEW"] = &Rule{
		Code:     "RENAL_DOSE_REVIEW",
		Severity: domain.SeverityHigh,
		Evaluator: func(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning {
			var labIdxs []int
			for i, l := range labs {
				if l.NameCanonical == "Creatinine" && labValue(l) > 1.8 {
					labIdxs = append(labIdxs, i)
				}
			}
			if len(labIdxs) == 0 {
				return nil
			}
			medIdxs := medIndexesMatching(meds, renalDrugs)
			if len(medIdxs) == 0 {
				return nil
			}
			return []domain.SafetyWarning{{
				Severity: domain.SeverityHigh,
				Code:     "RENAL_DOSE_REVIEW",
				Message:  "Elevated creatinine with a renally-eliminated medication on the list",
				Action:   "Review dosing against current renal function",
				Triggers: triggerRefs("medication", medIdxs, "lab", labIdxs),
			}}
		},
	}

	m["HYPERK_RISK"] = &Rule{
		Code:     "HYPERK_RISK",
		Severity: domain.SeverityHigh,
		Evaluator: func(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning {
			var labIdxs []int
			for i, l := range labs {
				if l.NameCanonical == "K" && labValue(l) >= 5.5 {
					labIdxs = append(labIdxs, i)
				}
			}
			if len(labIdxs) == 0 {
				return nil
			}
			medIdxs := medIndexesMatching(meds, potassiumRetaining)
			if len(medIdxs) == 0 {
				return nil
			}
			return []domain.SafetyWarning{{
				Severity: domain.SeverityHigh,
				Code:     "HYPERK_RISK",
				Message:  "Hyperkalemia with a potassium-retaining medication (ACEi/ARB/MRA)",
				Action:   "Recheck potassium and consider holding the offending agent",
				Triggers: triggerRefs("medication", medIdxs, "lab", labIdxs),
			}}
		},
	}

	m["BRADY_RATE_CTRL"] = &Rule{
		Code:     "BRADY_RATE_CTRL",
		Severity: domain.SeverityMedium,
		Evaluator: func(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning {
			var vitalIdxs []int
			for i, v := range vitals {
				if v.Kind == domain.VitalHR && v.Value.Kind == domain.ValueExact && v.Value.Number < 50 {
					vitalIdxs = append(vitalIdxs, i)
				}
			}
			if len(vitalIdxs) == 0 {
				return nil
			}
			message := "Bradycardia noted"
			medIdxs := medIndexesMatching(meds, rateLimiting)
			if len(medIdxs) > 0 {
				message = "Bradycardia with a rate-limiting medication on board"
			}
			return []domain.SafetyWarning{{
				Severity: domain.SeverityMedium,
				Code:     "BRADY_RATE_CTRL",
				Message:  message,
				Action:   "Reassess rate-control dosing",
				Triggers: triggerRefs("medication", medIdxs, "vital", vitalIdxs),
			}}
		},
	}

	m["DRUG_DRUG_CLASH"] = &Rule{
		Code:     "DRUG_DRUG_CLASH",
		Severity: domain.SeverityMedium,
		Evaluator: func(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning {
			var out []domain.SafetyWarning
			for _, pair := range drugClashes {
				aIdxs := medIndexesMatching(meds, []string{pair.a})
				bIdxs := medIndexesMatching(meds, []string{pair.b})
				if len(aIdxs) == 0 || len(bIdxs) == 0 {
					continue
				}
				out = append(out, domain.SafetyWarning{
					Severity: domain.SeverityMedium,
					Code:     "DRUG_DRUG_CLASH",
					Message:  pair.message,
					Action:   "Review concurrent therapy",
					Triggers: triggerRefs("medication", append(append([]int{}, aIdxs...), bIdxs...), "", nil),
				})
			}
			return out
		},
	}

	return m
}

func triggerRefs(kindA string, idxsA []int, kindB string, idxsB []int) []domain.TriggerRef {
	var out []domain.TriggerRef
	for _, i := range idxsA {
		out = append(out, domain.TriggerRef{Kind: kindA, Index: i})
	}
	for _, i := range idxsB {
		out = append(out, domain.TriggerRef{Kind: kindB, Index: i})
	}
	return out
}

// ValidateSafety evaluates every rule in the table against the parsed
// note's medications, labs, and vitals, then sorts and deduplicates the
// result (§4.7: "sorted by (severity desc, code asc); duplicates
// collapsed by code").
func ValidateSafety(meds []domain.Medication, labs []domain.Lab, vitals []domain.Vital) []domain.SafetyWarning {
	var out []domain.SafetyWarning
	codes := sortedRuleCodes()
	for _, code := range codes {
		out = append(out, rules[code].Evaluator(meds, labs, vitals)...)
	}

	byCode := make(map[string]domain.SafetyWarning)
	var order []string
	for _, w := range out {
		if existing, ok := byCode[w.Code]; ok {
			existing.Triggers = dedupeTriggers(append(existing.Triggers, w.Triggers...))
			byCode[w.Code] = existing
			continue
		}
		byCode[w.Code] = w
		order = append(order, w.Code)
	}

	result := make([]domain.SafetyWarning, 0, len(order))
	for _, code := range order {
		result = append(result, byCode[code])
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Severity.Rank() != result[j].Severity.Rank() {
			return result[i].Severity.Rank() < result[j].Severity.Rank()
		}
		return result[i].Code < result[j].Code
	})
	return result
}

func dedupeTriggers(in []domain.TriggerRef) []domain.TriggerRef {
	seen := make(map[domain.TriggerRef]bool)
	var out []domain.TriggerRef
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func sortedRuleCodes() []string {
	codes := make([]string, 0, len(rules))
	for c := range rules {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
