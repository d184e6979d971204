package clinicalcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

func TestExtractContext_Temporal(t *testing.T) {
	markers := ExtractContext("Acute chest pain radiating to the left arm.")
	require.NotEmpty(t, markers)
	found := false
	for _, m := range markers {
		if m.Kind == domain.ContextTemporal && m.Modifier == "acute" {
			found = true
			assert.Contains(t, m.Entity, "chest pain")
		}
	}
	assert.True(t, found)
}

func TestExtractContext_Negation(t *testing.T) {
	markers := ExtractContext("Denies chest pain or shortness of breath.")
	var negs []domain.ContextMarker
	for _, m := range markers {
		if m.Kind == domain.ContextNegation {
			negs = append(negs, m)
		}
	}
	require.Len(t, negs, 1)
	assert.Contains(t, negs[0].Entity, "chest pain")
}

func TestExtractContext_Severity(t *testing.T) {
	markers := ExtractContext("Severe mitral regurgitation noted on echo.")
	found := false
	for _, m := range markers {
		if m.Kind == domain.ContextSeverity {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExtractContext_Causality(t *testing.T) {
	markers := ExtractContext("Acute kidney injury secondary to dehydration.")
	var causal []domain.ContextMarker
	for _, m := range markers {
		if m.Kind == domain.ContextCausality {
			causal = append(causal, m)
		}
	}
	require.Len(t, causal, 1)
	assert.Contains(t, causal[0].Entity, "Acute kidney injury")
	assert.Contains(t, causal[0].Modifier, "dehydration")
}

func TestExtractContext_NoMatches(t *testing.T) {
	markers := ExtractContext("Patient ambulates independently.")
	assert.Empty(t, markers)
}
