package reference

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataDir() string {
	return filepath.Join("..", "..", "data")
}

func TestLoad_AllFourTables(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	assert.NotEmpty(t, tables.DiagnosisAllowlist)
	assert.NotEmpty(t, tables.DiagnosisBlocklist)
	assert.NotEmpty(t, tables.LabsReference)
	assert.NotEmpty(t, tables.CardiologyDx)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestCanonicalLabName_ResolvesAlias(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	canonical, ok := tables.CanonicalLabName("trop")
	require.True(t, ok)
	assert.Equal(t, "Troponin", canonical)

	canonical, ok = tables.CanonicalLabName("  HS-Troponin ")
	require.True(t, ok)
	assert.Equal(t, "Troponin", canonical)
}

func TestCanonicalLabName_UnknownAlias(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	_, ok := tables.CanonicalLabName("not a real lab")
	assert.False(t, ok)
}

func TestLabRange(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	ref, ok := tables.LabRange("Troponin")
	require.True(t, ok)
	require.NotNil(t, ref.High)
	assert.Equal(t, 0.04, *ref.High)
	assert.Equal(t, "ng/mL", ref.Units)
}

func TestDiagnosisByID(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	for _, dx := range tables.CardiologyDx {
		found, ok := tables.DiagnosisByID(dx.ID)
		require.True(t, ok)
		assert.Equal(t, dx.Name, found.Name)
		return
	}
	t.Fatal("no cardiology diagnoses loaded from fixture data")
}

func TestIsAllowed_AllowlistMatch(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	assert.True(t, tables.IsAllowed("suspected unstable angina"))
}

func TestIsAllowed_BlocklistWins(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	assert.True(t, tables.IsAllowed("hypertension"))

	blocked := tables.WithOverrides(nil, append([]string{}, "hypertension*"))
	assert.False(t, blocked.IsAllowed("hypertension"))
}

func TestIsAllowed_NoMatch(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	assert.False(t, tables.IsAllowed("completely unrelated phrase"))
}

func TestWithOverrides_NilLeavesTablesUnchanged(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	same := tables.WithOverrides(nil, nil)
	assert.Same(t, tables, same)
}

func TestWithOverrides_ReplacesListsIndependently(t *testing.T) {
	tables, err := Load(testDataDir())
	require.NoError(t, err)

	override := tables.WithOverrides([]string{"custom diagnosis"}, nil)
	assert.Equal(t, []string{"custom diagnosis"}, override.DiagnosisAllowlist)
	assert.Equal(t, tables.DiagnosisBlocklist, override.DiagnosisBlocklist)
	assert.True(t, override.IsAllowed("custom diagnosis"))
	assert.False(t, override.IsAllowed("angina"))
}
