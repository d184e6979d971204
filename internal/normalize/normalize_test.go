package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CleansCRLFAndSmartQuotes(t *testing.T) {
	raw := "Patient’s BP\r\nis “normal”\r\n"
	n := Normalize(raw)
	assert.NotContains(t, n.Cleaned, "\r")
	assert.Contains(t, n.Cleaned, "Patient's BP")
	assert.Contains(t, n.Cleaned, `"normal"`)
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := "Chief Complaint:   Chest   pain\r\n\r\n\r\nHPI: 65yo M\n"
	first := Normalize(raw)
	second := Normalize(first.Cleaned)
	assert.Equal(t, first.Cleaned, second.Cleaned)
}

func TestNormalize_LineOffsetsReferenceCleaned(t *testing.T) {
	raw := "line one\nline two\nline three"
	n := Normalize(raw)
	require.Len(t, n.Lines, 3)
	for _, l := range n.Lines {
		assert.Equal(t, l.Text, n.Cleaned[l.Offset:l.Offset+len(l.Text)])
	}
}

func TestNormalize_ExtractsDates(t *testing.T) {
	n := Normalize("Seen on 03/14/2024 and again 2024-03-20, follow-up Mar 25, 2024.")
	require.Len(t, n.Dates, 3)
	assert.Equal(t, "2024-03-14", n.Dates[0].ISO)
	assert.Equal(t, "2024-03-20", n.Dates[1].ISO)
	assert.Equal(t, "2024-03-25", n.Dates[2].ISO)
}

func TestNormalize_TwoDigitYearPivot(t *testing.T) {
	n := Normalize("DOB 01/02/65")
	require.Len(t, n.Dates, 1)
	assert.Equal(t, "1965-01-02", n.Dates[0].ISO)

	n = Normalize("DOB 01/02/05")
	require.Len(t, n.Dates, 1)
	assert.Equal(t, "2005-01-02", n.Dates[0].ISO)
}
