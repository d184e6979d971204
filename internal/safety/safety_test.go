package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

func TestValidateSafety_Scenario4AllFourWarnings(t *testing.T) {
	meds := []domain.Medication{
		{Name: "Warfarin", Dose: "5", Unit: "mg"},
		{Name: "Spironolactone", Dose: "25", Unit: "mg"},
		{Name: "Metoprolol", Dose: "25", Unit: "mg"},
	}
	labs := []domain.Lab{
		{NameCanonical: "Platelets", Value: domain.ExactValue(45)},
		{NameCanonical: "Creatinine", Value: domain.ExactValue(2.5)},
		{NameCanonical: "K", Value: domain.ExactValue(5.5)},
	}
	vitals := []domain.Vital{
		{Kind: domain.VitalHR, Value: domain.ExactValue(48)},
	}

	warnings := ValidateSafety(meds, labs, vitals)

	codes := make(map[string]bool)
	for _, w := range warnings {
		codes[w.Code] = true
	}
	assert.True(t, codes["ANTI_COAG_LOW_PLT"])
	assert.True(t, codes["RENAL_DOSE_REVIEW"])
	assert.True(t, codes["HYPERK_RISK"])
	assert.True(t, codes["BRADY_RATE_CTRL"])
	assert.GreaterOrEqual(t, len(warnings), 4)
}

func TestValidateSafety_SortedBySeverityThenCode(t *testing.T) {
	meds := []domain.Medication{{Name: "Warfarin"}, {Name: "Spironolactone"}, {Name: "Metoprolol"}}
	labs := []domain.Lab{
		{NameCanonical: "Platelets", Value: domain.ExactValue(45)},
		{NameCanonical: "K", Value: domain.ExactValue(5.8)},
	}
	vitals := []domain.Vital{{Kind: domain.VitalHR, Value: domain.ExactValue(45)}}
	warnings := ValidateSafety(meds, labs, vitals)

	for i := 1; i < len(warnings); i++ {
		prevRank := warnings[i-1].Severity.Rank()
		curRank := warnings[i].Severity.Rank()
		assert.True(t, prevRank <= curRank)
		if prevRank == curRank {
			assert.True(t, warnings[i-1].Code <= warnings[i].Code)
		}
	}
}

func TestValidateSafety_NoTriggersNoWarnings(t *testing.T) {
	meds := []domain.Medication{{Name: "Aspirin"}}
	labs := []domain.Lab{{NameCanonical: "K", Value: domain.ExactValue(4.0)}}
	vitals := []domain.Vital{{Kind: domain.VitalHR, Value: domain.ExactValue(72)}}
	warnings := ValidateSafety(meds, labs, vitals)
	assert.Empty(t, warnings)
}

func TestValidateSafety_DrugDrugClash(t *testing.T) {
	meds := []domain.Medication{{Name: "Warfarin"}, {Name: "Aspirin"}}
	warnings := ValidateSafety(meds, nil, nil)
	found := false
	for _, w := range warnings {
		if w.Code == "DRUG_DRUG_CLASH" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateSafety_Deterministic(t *testing.T) {
	meds := []domain.Medication{{Name: "Warfarin"}, {Name: "Spironolactone"}}
	labs := []domain.Lab{{NameCanonical: "Platelets", Value: domain.ExactValue(40)}}
	a := ValidateSafety(meds, labs, nil)
	b := ValidateSafety(meds, labs, nil)
	assert.Equal(t, a, b)
}
