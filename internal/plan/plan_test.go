package plan

import (
	"path/filepath"
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

func TestGeneratePlan_STEMIMatch(t *testing.T) {
	tables := loadTestTables(t)
	dx := []domain.Diagnosis{{Canonical: "stemi", Confidence: 0.9}}
	text, ok := GeneratePlan(dx, tables)
	require.True(t, ok)
	assert.NotEmpty(t, text)
}

func TestGeneratePlan_NoRecognizedKeyEmitsNothing(t *testing.T) {
	tables := loadTestTables(t)
	dx := []domain.Diagnosis{{Canonical: "syncope", Confidence: 0.5}}
	text, ok := GeneratePlan(dx, tables)
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestGeneratePlan_OrdersByConfidence(t *testing.T) {
	tables := loadTestTables(t)
	dx := []domain.Diagnosis{
		{Canonical: "atrial fibrillation", Confidence: 0.5},
		{Canonical: "stemi", Confidence: 0.9},
	}
	text, ok := GeneratePlan(dx, tables)
	require.True(t, ok)
	stemiIdx := indexOf(text, "ST-Elevation Myocardial Infarction")
	afibIdx := indexOf(text, "Atrial Fibrillation")
	require.NotEqual(t, -1, stemiIdx)
	require.NotEqual(t, -1, afibIdx)
	assert.Less(t, stemiIdx, afibIdx)
}

func TestGeneratePlan_DedupesAcrossMultipleMatches(t *testing.T) {
	tables := loadTestTables(t)
	dx := []domain.Diagnosis{
		{Canonical: "stemi", Confidence: 0.9},
		{Canonical: "st elevation myocardial infarction", Confidence: 0.8},
	}
	text, ok := GeneratePlan(dx, tables)
	require.True(t, ok)
	assert.NotEmpty(t, text)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
