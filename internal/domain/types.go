// Package domain contains the core data model for the clinical note
// parsing and rendering pipeline: normalized text, sections, extracted
// entities, clinical context, safety warnings, and the parsed/rendered
// note envelopes. Types here carry no behavior beyond validation and
// formatting helpers — the pipeline stages in sibling packages own the
// logic that produces and consumes them.
package domain

import "fmt"

// SectionTag is a canonical label for a portion of a clinical note.
type SectionTag string

const (
	Subjective     SectionTag = "Subjective"
	Objective      SectionTag = "Objective"
	HPI            SectionTag = "HPI"
	PMH            SectionTag = "PMH"
	PSH            SectionTag = "PSH"
	FamilyHistory  SectionTag = "FamilyHistory"
	SocialHistory  SectionTag = "SocialHistory"
	ROS            SectionTag = "ROS"
	MedicationsTag SectionTag = "Medications"
	AllergiesTag   SectionTag = "Allergies"
	VitalsTag      SectionTag = "Vitals"
	LabsTag        SectionTag = "Labs"
	Imaging        SectionTag = "Imaging"
	Assessment     SectionTag = "Assessment"
	Plan           SectionTag = "Plan"
	Unknown        SectionTag = "Unknown"
)

// IsValid reports whether the tag is one of the closed set of canonical
// section tags.
func (t SectionTag) IsValid() bool {
	switch t {
	case Subjective, Objective, HPI, PMH, PSH, FamilyHistory, SocialHistory,
		ROS, MedicationsTag, AllergiesTag, VitalsTag, LabsTag, Imaging,
		Assessment, Plan, Unknown:
		return true
	default:
		return false
	}
}

func (t SectionTag) String() string { return string(t) }

// VitalKind enumerates the vital-sign measurement types the extractor
// recognizes.
type VitalKind string

const (
	VitalBP     VitalKind = "BP"
	VitalHR     VitalKind = "HR"
	VitalRR     VitalKind = "RR"
	VitalTemp   VitalKind = "Temp"
	VitalSpO2   VitalKind = "SpO2"
	VitalWeight VitalKind = "Weight"
	VitalHeight VitalKind = "Height"
	VitalBMI    VitalKind = "BMI"
)

func (k VitalKind) IsValid() bool {
	switch k {
	case VitalBP, VitalHR, VitalRR, VitalTemp, VitalSpO2, VitalWeight, VitalHeight, VitalBMI:
		return true
	default:
		return false
	}
}

// Flag enumerates the abnormal-result markers shared by vitals and labs.
type Flag string

const (
	FlagNone     Flag = "None"
	FlagHigh     Flag = "High"
	FlagLow      Flag = "Low"
	FlagCritical Flag = "Critical"
	FlagStar     Flag = "Star"
)

func (f Flag) IsValid() bool {
	switch f {
	case FlagNone, FlagHigh, FlagLow, FlagCritical, FlagStar:
		return true
	default:
		return false
	}
}

// Acuity classifies how current/ongoing a diagnosis is.
type Acuity string

const (
	AcuityAcute      Acuity = "Acute"
	AcuityChronic    Acuity = "Chronic"
	AcuityUnspecified Acuity = "Unspecified"
)

func (a Acuity) IsValid() bool {
	switch a {
	case AcuityAcute, AcuityChronic, AcuityUnspecified:
		return true
	default:
		return false
	}
}

// DiagnosisSource records which section a diagnosis candidate was found in.
type DiagnosisSource string

const (
	SourceAssessment DiagnosisSource = "Assessment"
	SourceROS        DiagnosisSource = "ROS"
	SourceHPI        DiagnosisSource = "HPI"
)

// rank orders sources by trustworthiness for disambiguation
// (Assessment > HPI > ROS, per spec §4.6).
func (s DiagnosisSource) rank() int {
	switch s {
	case SourceAssessment:
		return 0
	case SourceHPI:
		return 1
	case SourceROS:
		return 2
	default:
		return 3
	}
}

// SourceRank exposes the disambiguation ordering rank for a diagnosis
// source (lower sorts first / is more trusted).
func (s DiagnosisSource) SourceRank() int { return s.rank() }

// ContextKind enumerates clinical-context marker categories.
type ContextKind string

const (
	ContextTemporal  ContextKind = "Temporal"
	ContextSeverity  ContextKind = "Severity"
	ContextCausality ContextKind = "Causality"
	ContextNegation  ContextKind = "Negation"
)

// WarningSeverity enumerates safety-warning severities.
type WarningSeverity string

const (
	SeverityLow      WarningSeverity = "Low"
	SeverityMedium   WarningSeverity = "Medium"
	SeverityHigh     WarningSeverity = "High"
	SeverityCritical WarningSeverity = "Critical"
)

// rank orders severities from most to least severe for stable sorting
// (Critical, High, Medium, Low).
func (s WarningSeverity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Rank exposes the severity ordering rank (lower sorts first, i.e. more
// severe warnings come first).
func (s WarningSeverity) Rank() int { return s.rank() }

// ValueKind discriminates the tagged variant stored in a Lab's or Vital's
// Value field, per §9's guidance to represent "sometimes numeric, sometimes
// comparator-bearing" fields as a closed sum type instead of interface{}.
type ValueKind string

const (
	ValueExact      ValueKind = "Exact"
	ValueComparator ValueKind = "Comparator"
	ValueRange      ValueKind = "Range"
)

// Comparator is the operator in a Comparator-kind Value (e.g. "<0.5").
type Comparator string

const (
	ComparatorLT Comparator = "<"
	ComparatorGT Comparator = ">"
	ComparatorLE Comparator = "<="
	ComparatorGE Comparator = ">="
)

// Value is a closed tagged variant for numeric clinical measurements:
// an exact number, a comparator-bound number (e.g. "<0.5"), or a
// min-max range (e.g. "120-140").
type Value struct {
	Kind       ValueKind
	Number     float64
	Comparator Comparator
	Low        float64
	High       float64
}

// ExactValue builds an exact numeric Value.
func ExactValue(n float64) Value { return Value{Kind: ValueExact, Number: n} }

// ComparatorValue builds a comparator-bound Value, e.g. "<0.5".
func ComparatorValue(op Comparator, n float64) Value {
	return Value{Kind: ValueComparator, Comparator: op, Number: n}
}

// RangeValue builds a min-max range Value.
func RangeValue(low, high float64) Value {
	return Value{Kind: ValueRange, Low: low, High: high}
}

// String renders the Value the way it would appear in a rendered note.
func (v Value) String() string {
	switch v.Kind {
	case ValueExact:
		return trimFloat(v.Number)
	case ValueComparator:
		return string(v.Comparator) + trimFloat(v.Number)
	case ValueRange:
		return fmt.Sprintf("%s-%s", trimFloat(v.Low), trimFloat(v.High))
	default:
		return ""
	}
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
