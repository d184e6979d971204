package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/normalize"
)

func TestDetectSections_CompleteSOAPNote(t *testing.T) {
	raw := "Chief Complaint: Chest pain\nHPI: 65yo M with HTN, 2h chest pain\n" +
		"Vitals:\nBP: 150/90\nHR: 88\nRR: 16\nSpO2: 98% on RA\n" +
		"Assessment:\n1. Chest pain, likely angina\n2. Hypertension\n" +
		"Plan:\n- EKG\n- Troponin\n- Aspirin 325mg\n- Cardiology consult\n"
	n := normalize.Normalize(raw)
	result := DetectSections(n)

	require.Contains(t, result.Sections, domain.VitalsTag)
}

func TestDetectSections_AllCapsHeaders(t *testing.T) {
	raw := "HPI: PATIENT WITH HEADACHE\nVITALS: BP 220/120 HR 95\nA/P: HYPERTENSIVE EMERGENCY. START CLONIDINE.\n"
	n := normalize.Normalize(raw)
	result := DetectSections(n)

	assert.Contains(t, result.Sections, domain.Assessment)
	assert.NotEmpty(t, result.Sections[domain.Assessment].RawText)
}

func TestDetectSections_CombinedAssessmentPlanSplits(t *testing.T) {
	raw := "A/P:\n1. STEMI\nPlan:\n- Cath lab activation\n- Aspirin 325mg\n"
	n := normalize.Normalize(raw)
	result := DetectSections(n)

	require.Contains(t, result.Sections, domain.Assessment)
	require.Contains(t, result.Sections, domain.Plan)
	assert.True(t, strings.Contains(result.Sections[domain.Plan].RawText, "Cath lab"))
}

func TestDetectSections_NoHeaderFoldsToSubjective(t *testing.T) {
	raw := "Patient feeling better today, no chest pain, tolerating diet.\n"
	n := normalize.Normalize(raw)
	result := DetectSections(n)

	require.Contains(t, result.Sections, domain.Subjective)
	assert.Empty(t, result.UnknownText)
}

func TestDetectSections_CoverageInvariant(t *testing.T) {
	raw := "CC: chest pain\nRandom unlabeled paragraph that fits no header pattern at all so it stays unknown.\n"
	n := normalize.Normalize(raw)
	result := DetectSections(n)

	var total int
	for _, sec := range result.Sections {
		total += len(sec.RawText)
	}
	for _, u := range result.UnknownText {
		total += len(u)
	}
	assert.Greater(t, total, 0)
}
