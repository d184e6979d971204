// Package clinicalcontext implements the Clinical Context Extractor
// (§5): temporal, severity, causality, and negation markers, each bound
// to the nearby entity phrase that it modifies within a bounded
// character window.
package clinicalcontext

import (
	"regexp"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

// windowChars is the bounded character window markers bind across
// (§5's "e.g. 60 chars").
const windowChars = 60

var (
	temporalPattern = regexp.MustCompile(`(?i)\b(acute|chronic|subacute|new-onset|new onset|worsening|stable|improving)\b`)
	severityPattern = regexp.MustCompile(`(?i)\b(mild|moderate|severe|critical)\b`)
	negationPattern = regexp.MustCompile(`(?i)\b(no|denies|denying|without|negative for)\b`)
	causalityPattern = regexp.MustCompile(`(?i)\b(due to|secondary to|because of|from)\b`)

	sentenceBoundary = regexp.MustCompile(`[.\n]`)
)

// ExtractContext scans text for temporal, severity, causality, and
// negation cues and binds each to the entity phrase it modifies.
func ExtractContext(text string) []domain.ContextMarker {
	var out []domain.ContextMarker
	out = append(out, scanForward(text, temporalPattern, domain.ContextTemporal)...)
	out = append(out, scanForward(text, severityPattern, domain.ContextSeverity)...)
	out = append(out, scanForward(text, negationPattern, domain.ContextNegation)...)
	out = append(out, scanCausality(text)...)
	return out
}

// scanForward handles the temporal/severity/negation cues, each of which
// modifies the entity phrase following it within windowChars, never
// crossing a sentence boundary (§5).
func scanForward(text string, pattern *regexp.Regexp, kind domain.ContextKind) []domain.ContextMarker {
	var out []domain.ContextMarker
	for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
		markerStart, markerEnd := loc[0], loc[1]
		modifier := strings.ToLower(text[loc[2]:loc[3]])

		windowEnd := markerEnd + windowChars
		if windowEnd > len(text) {
			windowEnd = len(text)
		}
		following := text[markerEnd:windowEnd]
		if b := sentenceBoundary.FindStringIndex(following); b != nil {
			following = following[:b[0]]
		}
		entity := strings.TrimSpace(following)
		if entity == "" {
			continue
		}

		out = append(out, domain.ContextMarker{
			Kind:     kind,
			Entity:   entity,
			Modifier: modifier,
			Span:     domain.Span{Start: markerStart, End: markerEnd + len(following)},
		})
	}
	return out
}

// scanCausality handles "X due to Y" / "X secondary to Y" phrases: the
// entity is the effect preceding the phrase, the modifier is the cause
// following it (§5).
func scanCausality(text string) []domain.ContextMarker {
	var out []domain.ContextMarker
	for _, loc := range causalityPattern.FindAllStringSubmatchIndex(text, -1) {
		phraseStart, phraseEnd := loc[0], loc[1]

		beforeStart := phraseStart - windowChars
		if beforeStart < 0 {
			beforeStart = 0
		}
		before := text[beforeStart:phraseStart]
		if b := sentenceBoundary.FindAllStringIndex(before, -1); len(b) > 0 {
			last := b[len(b)-1]
			before = before[last[1]:]
		}
		effect := strings.TrimSpace(before)

		afterEnd := phraseEnd + windowChars
		if afterEnd > len(text) {
			afterEnd = len(text)
		}
		after := text[phraseEnd:afterEnd]
		if b := sentenceBoundary.FindStringIndex(after); b != nil {
			after = after[:b[0]]
		}
		cause := strings.TrimSpace(after)

		if effect == "" || cause == "" {
			continue
		}

		out = append(out, domain.ContextMarker{
			Kind:     domain.ContextCausality,
			Entity:   effect,
			Modifier: cause,
			Span:     domain.Span{Start: beforeStart + strings.Index(text[beforeStart:phraseStart], effect), End: phraseEnd + len(after)},
		})
	}
	return out
}
