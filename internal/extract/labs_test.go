package extract

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

func TestLabs_BasicPanel(t *testing.T) {
	tables := loadTestTables(t)
	labs, _ := Labs("Platelets 45, Creatinine 2.5, Potassium 5.5", tables)
	require.Len(t, labs, 3)

	names := map[string]bool{}
	for _, l := range labs {
		names[l.NameCanonical] = true
	}
	assert.True(t, names["K"])
}

func TestLabs_AdminLinesExcluded(t *testing.T) {
	tables := loadTestTables(t)
	labs, _ := Labs("Date: 03/14/2024\nMRN: 12345\nPotassium 5.5", tables)
	require.Len(t, labs, 1)
	assert.Equal(t, "K", labs[0].NameCanonical)
}

func TestLabs_FlagSuffix(t *testing.T) {
	tables := loadTestTables(t)
	labs, _ := Labs("Potassium 5.8 H", tables)
	require.Len(t, labs, 1)
	assert.Equal(t, domain.FlagHigh, labs[0].Flag)
}

func TestLabs_UnknownNameSkipped(t *testing.T) {
	tables := loadTestTables(t)
	labs, _ := Labs("Unobtainium 99", tables)
	assert.Empty(t, labs)
}

func TestLabs_ReferenceRangeAppliedWhenAbsent(t *testing.T) {
	tables := loadTestTables(t)
	labs, _ := Labs("Potassium 5.8", tables)
	require.Len(t, labs, 1)
	assert.Equal(t, domain.FlagHigh, labs[0].Flag)
	assert.NotNil(t, labs[0].RefHigh)
}
