package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"exact integer", ExactValue(88), "88"},
		{"exact fractional", ExactValue(98.6), "98.6"},
		{"comparator", ComparatorValue(ComparatorLT, 0.04), "<0.04"},
		{"range", RangeValue(120, 140), "120-140"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestSectionTag_IsValid(t *testing.T) {
	assert.True(t, Assessment.IsValid())
	assert.True(t, Unknown.IsValid())
	assert.False(t, SectionTag("Bogus").IsValid())
}

func TestWarningSeverity_Rank(t *testing.T) {
	assert.Less(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityLow.Rank())
}

func TestDiagnosisSource_SourceRank(t *testing.T) {
	assert.Less(t, SourceAssessment.SourceRank(), SourceHPI.SourceRank())
	assert.Less(t, SourceHPI.SourceRank(), SourceROS.SourceRank())
}
