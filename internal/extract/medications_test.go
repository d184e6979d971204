package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedications_BasicLine(t *testing.T) {
	meds, _ := Medications("Aspirin 325mg PO daily")
	require.Len(t, meds, 1)
	assert.Equal(t, "Aspirin", meds[0].Name)
	assert.Equal(t, "325", meds[0].Dose)
	assert.Equal(t, "mg", meds[0].Unit)
	assert.Equal(t, "PO", meds[0].Route)
	assert.Equal(t, "daily", meds[0].Frequency)
}

func TestMedications_BulletedAndSemicolonList(t *testing.T) {
	meds, _ := Medications("- Metoprolol 25mg PO BID; Lisinopril 10mg PO daily\n- Warfarin 5mg PO daily")
	require.Len(t, meds, 3)
	names := []string{meds[0].Name, meds[1].Name, meds[2].Name}
	assert.Contains(t, names, "Metoprolol")
	assert.Contains(t, names, "Lisinopril")
	assert.Contains(t, names, "Warfarin")
}

func TestMedications_UnparseableLineSkipped(t *testing.T) {
	meds, _ := Medications("Continue home medications as tolerated")
	assert.Empty(t, meds)
}

func TestMedications_FrequencyNormalization(t *testing.T) {
	meds, _ := Medications("Amiodarone 200mg PO q8h")
	require.Len(t, meds, 1)
	assert.Equal(t, "tid", meds[0].Frequency)
}
