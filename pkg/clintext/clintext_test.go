package clintext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

func TestParser_ParseValue(t *testing.T) {
	p := NewParser()

	v, ok := p.ParseValue("0.04")
	assert.True(t, ok)
	assert.Equal(t, domain.ValueExact, v.Kind)
	assert.Equal(t, 0.04, v.Number)

	v, ok = p.ParseValue("<0.5")
	assert.True(t, ok)
	assert.Equal(t, domain.ValueComparator, v.Kind)
	assert.Equal(t, domain.ComparatorLT, v.Comparator)

	v, ok = p.ParseValue("120-140")
	assert.True(t, ok)
	assert.Equal(t, domain.ValueRange, v.Kind)
	assert.Equal(t, 120.0, v.Low)
	assert.Equal(t, 140.0, v.High)

	_, ok = p.ParseValue("not-a-number")
	assert.False(t, ok)
}

func TestValidator_InPlausibleRange(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.InPlausibleRange(domain.ExactValue(88), 0, 200))
	assert.False(t, v.InPlausibleRange(domain.ExactValue(900), 0, 200))
	assert.True(t, v.InPlausibleRange(domain.RangeValue(120, 140), 0, 200))
}

func TestNormalizeFrequency(t *testing.T) {
	tests := []struct{ raw, want string }{
		{"qd", "daily"},
		{"BID", "bid"},
		{"q8h", "tid"},
		{"at bedtime", "qhs"},
		{"prn", "prn"},
		{"unrecognized schedule", "unrecognized schedule"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFrequency(tt.raw))
	}
}

func TestNormalizeDegree(t *testing.T) {
	assert.Equal(t, "F", NormalizeDegree("F"))
	assert.Equal(t, "C", NormalizeDegree("celsius"))
	assert.Equal(t, "", NormalizeDegree(""))
}
