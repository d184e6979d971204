package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemographics_ShortForm(t *testing.T) {
	p := Demographics("72 yo M with chest pain")
	require.NotNil(t, p.Age)
	assert.Equal(t, 72, *p.Age)
	assert.Equal(t, "M", p.Gender)
}

func TestDemographics_LongForm(t *testing.T) {
	p := Demographics("65-year-old female presents with dyspnea")
	require.NotNil(t, p.Age)
	assert.Equal(t, 65, *p.Age)
	assert.Equal(t, "F", p.Gender)
}

func TestDemographics_MRNAndDOB(t *testing.T) {
	p := Demographics("MRN: 445566 DOB: 01/02/1950")
	assert.Equal(t, "445566", p.MRN)
	assert.Equal(t, "01/02/1950", p.DOB)
}

func TestDemographics_NoMatch(t *testing.T) {
	p := Demographics("Patient stable, no complaints.")
	assert.Nil(t, p.Age)
	assert.Empty(t, p.Gender)
}
