package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

func TestVitals_BloodPressure(t *testing.T) {
	vitals, _ := Vitals("BP: 150/90\nHR: 88\nRR: 16\nSpO2: 98% on RA\n")
	require.Len(t, vitals, 4)

	bp := vitals[0]
	assert.Equal(t, domain.VitalBP, bp.Kind)
	assert.Equal(t, "150", bp.Systolic.String())
	assert.Equal(t, "90", bp.Diastolic.String())
	assert.Equal(t, domain.FlagHigh, bp.Flag)
}

func TestVitals_CriticalBP(t *testing.T) {
	vitals, _ := Vitals("VITALS: BP 220/120 HR 95\n")
	require.NotEmpty(t, vitals)
	assert.Equal(t, domain.VitalBP, vitals[0].Kind)
	assert.Equal(t, domain.FlagCritical, vitals[0].Flag)
}

func TestVitals_SpO2Flags(t *testing.T) {
	vitals, _ := Vitals("SpO2: 88%\n")
	require.Len(t, vitals, 1)
	assert.Equal(t, domain.FlagCritical, vitals[0].Flag)
}

func TestVitals_Temperature(t *testing.T) {
	vitals, _ := Vitals("Temp: 101.2 F\n")
	require.Len(t, vitals, 1)
	assert.Equal(t, domain.VitalTemp, vitals[0].Kind)
	assert.Equal(t, "°F", vitals[0].Unit)
}

func TestVitals_NoMatchesReturnsEmpty(t *testing.T) {
	vitals, warnings := Vitals("Patient resting comfortably.")
	assert.Empty(t, vitals)
	assert.Empty(t, warnings)
}
