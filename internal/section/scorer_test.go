package section

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

func TestScoreMatch_ExactSignalPhrase(t *testing.T) {
	sc := ScoreMatch("Assessment", "")
	assert.Equal(t, domain.Assessment, sc.Canonical)
	assert.GreaterOrEqual(t, sc.Value, 0.9)
}

func TestScoreMatch_Abbreviation(t *testing.T) {
	sc := ScoreMatch("HPI", "")
	assert.Equal(t, domain.HPI, sc.Canonical)
}

func TestScoreMatch_Synonym(t *testing.T) {
	sc := ScoreMatch("Assessment and Plan", "")
	assert.Equal(t, domain.Assessment, sc.Canonical)
}

func TestScoreMatch_Unrecognized(t *testing.T) {
	sc := ScoreMatch("Banana Smoothie Notes", "")
	assert.Equal(t, domain.Unknown, sc.Canonical)
	assert.Equal(t, 0.0, sc.Value)
}

func TestScoreMatch_BodyBoostsVitals(t *testing.T) {
	withoutBody := ScoreMatch("VS", "")
	withBody := ScoreMatch("VS", "BP 120/80\nHR 72\n")
	assert.Equal(t, domain.VitalsTag, withBody.Canonical)
	assert.GreaterOrEqual(t, withBody.Value, withoutBody.Value)
}
