package render

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
)

func loadTestTables(t *testing.T) *reference.Tables {
	t.Helper()
	tables, err := reference.Load(filepath.Join("..", "..", "data"))
	require.NoError(t, err)
	return tables
}

func TestRender_PlaceholderForMissingSlot(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{Sections: map[domain.SectionTag]domain.Section{}}
	opts, _ := domain.DefaultOptions().Normalize()
	out := Render(parsed, opts, tables)
	assert.Contains(t, out.Text, "Not documented")
}

func TestRender_VitalsAndBPFormatting(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{
		Sections: map[domain.SectionTag]domain.Section{},
		Vitals: []domain.Vital{
			{Kind: domain.VitalBP, Systolic: domain.ExactValue(150), Diastolic: domain.ExactValue(90), Flag: domain.FlagHigh},
		},
	}
	opts, _ := domain.DefaultOptions().Normalize()
	out := Render(parsed, opts, tables)
	assert.Contains(t, out.Text, "150/90")
}

func TestRender_NKDARendersInAllergies(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{Sections: map[domain.SectionTag]domain.Section{}, NKDA: true}
	opts, _ := domain.DefaultOptions().Normalize()
	out := Render(parsed, opts, tables)
	assert.Contains(t, out.Text, "NKDA")
}

func TestRender_AssessmentIncludesSafetyWarnings(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{
		Sections:  map[domain.SectionTag]domain.Section{},
		Diagnoses: []domain.Diagnosis{{Text: "Hypertension", Canonical: "hypertension", Acuity: domain.AcuityUnspecified}},
		SafetyWarnings: []domain.SafetyWarning{
			{Severity: domain.SeverityHigh, Code: "HYPERK_RISK", Message: "Hyperkalemia risk"},
		},
	}
	opts, _ := domain.DefaultOptions().Normalize()
	out := Render(parsed, opts, tables)
	assert.Contains(t, out.Text, "HYPERK_RISK")
	assert.Contains(t, out.Text, "Hypertension")
}

func TestRender_PlanMergesExplicitEvidenceAndSafetyActions(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{
		Sections: map[domain.SectionTag]domain.Section{
			domain.Plan: {Tag: domain.Plan, RawText: "- Aspirin 325mg"},
		},
		Diagnoses: []domain.Diagnosis{{Text: "STEMI", Canonical: "stemi", Confidence: 0.9}},
		SafetyWarnings: []domain.SafetyWarning{
			{Severity: domain.SeverityHigh, Code: "ANTI_COAG_LOW_PLT", Action: "Reassess anticoagulation"},
		},
	}
	opts, _ := domain.DefaultOptions().Normalize()
	out := Render(parsed, opts, tables)
	assert.Contains(t, out.Text, "Aspirin 325mg")
	assert.Contains(t, out.Text, "Reassess anticoagulation")
}

func TestRender_UnmappedAppendixIncludedWhenOptedIn(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{
		Sections: map[domain.SectionTag]domain.Section{
			domain.Unknown: {Tag: domain.Unknown, RawText: "Some stray paragraph", SourceHeaderText: "Misc"},
		},
	}
	opts, _ := domain.DefaultOptions().Normalize()
	opts.IncludeUnmapped = true
	out := Render(parsed, opts, tables)
	assert.True(t, strings.Contains(out.Text, "Unmapped:"))
	assert.Contains(t, out.Text, "Some stray paragraph")
}

func TestRender_LocaleConvertsTempToCelsius(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{
		Sections: map[domain.SectionTag]domain.Section{},
		Vitals: []domain.Vital{
			{Kind: domain.VitalTemp, Value: domain.ExactValue(98.6), Unit: "°F"},
		},
	}
	opts, _ := domain.DefaultOptions().Normalize()
	opts.LocaleUnits = domain.LocaleSI
	out := Render(parsed, opts, tables)
	assert.Contains(t, out.Text, "37")
	assert.Contains(t, out.Text, "°C")
}

func TestRender_TemplateDeterminesSlotOrder(t *testing.T) {
	tables := loadTestTables(t)
	parsed := domain.ParsedNote{Sections: map[domain.SectionTag]domain.Section{}}
	opts, _ := domain.DefaultOptions().Normalize()
	opts.TemplateID = domain.TemplateProgress
	out := Render(parsed, opts, tables)
	assert.Equal(t, domain.TemplateProgress, out.TemplateID)

	ccIdx := strings.Index(out.Text, "Chief Complaint:")
	vitalsIdx := strings.Index(out.Text, "Vitals:")
	assert.Less(t, ccIdx, vitalsIdx)
}
