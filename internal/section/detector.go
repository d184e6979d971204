package section

import (
	"regexp"
	"sort"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

var (
	bulletPattern    = regexp.MustCompile(`^[-*•+]\s+`)
	numberedPattern  = regexp.MustCompile(`^\d+[.)]\s+`)
	subHeaderPattern = regexp.MustCompile(`(?i)^(assessment|plan|a/p|a&p)\s*:?\s*$`)
)

var signalPhraseSet = func() map[string]bool {
	out := make(map[string]bool, len(signalWords))
	for _, e := range signalWords {
		out[e.phrase] = true
	}
	return out
}()

// Result is the output of DetectSections.
type Result struct {
	Sections    map[domain.SectionTag]domain.Section
	UnknownText []string
}

// DetectSections splits normalized text into canonical sections (§4.4).
func DetectSections(n domain.NormalizedText) Result {
	chunks := scanLines(n.Lines)
	chunks = splitCombinedHeaders(chunks)
	result := merge(chunks)
	applyPositionalFallback(&result, n)

	// Inline-only notes carry no recognized header at all (§4.4 step 6):
	// fold everything into a synthetic Subjective section rather than
	// leaving it all as unmapped unknown_text.
	if len(result.Sections) == 0 && len(result.UnknownText) > 0 {
		result.Sections[domain.Subjective] = domain.Section{
			Tag:        domain.Subjective,
			RawText:    strings.Join(result.UnknownText, "\n\n"),
			Confidence: 0.3,
		}
		result.UnknownText = nil
	}
	return result
}

type owner struct {
	tag        domain.SectionTag
	score      float64
	headerText string
}

type chunk struct {
	owner *owner
	lines []domain.Line
}

func isBulletOrContinuation(raw string) bool {
	if raw == "" {
		return false
	}
	if raw[0] == ' ' || raw[0] == '\t' {
		return true
	}
	trimmed := strings.TrimSpace(raw)
	return bulletPattern.MatchString(trimmed) || numberedPattern.MatchString(trimmed)
}

// headerCandidateText recognizes both a header alone on its own line
// ("Vitals:" or "VITALS") and the common inline "Label: body" shape
// ("Chief Complaint: Chest pain") by scoring only the text before the
// first colon as the label candidate, leaving body as the same-line
// remainder that still belongs to the new section's body (§4.4).
func headerCandidateText(raw string) (label string, inlineBody string, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || isBulletOrContinuation(raw) {
		return "", "", false
	}

	if idx := strings.Index(trimmed, ":"); idx >= 0 && idx <= 40 {
		candidate := strings.TrimSpace(trimmed[:idx])
		body := strings.TrimSpace(trimmed[idx+1:])
		if candidate != "" && (isTitleOrAllCaps(candidate) || signalPhraseSet[normalizeHeader(candidate)]) {
			return candidate, body, true
		}
	}

	if len(trimmed) <= 60 && (isTitleOrAllCaps(trimmed) || signalPhraseSet[normalizeHeader(trimmed)]) {
		return trimmed, "", true
	}

	return "", "", false
}

func isTitleOrAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	if strings.ToUpper(s) == s {
		return true
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		if !(r[0] >= 'A' && r[0] <= 'Z') {
			// allow small connector words to stay lowercase in Title Case
			lw := strings.ToLower(w)
			if lw == "of" || lw == "and" || lw == "the" || lw == "a" || lw == "an" {
				continue
			}
			return false
		}
	}
	return true
}

func sampleNext(lines []domain.Line, from int, maxLines int) string {
	end := from + maxLines
	if end > len(lines) {
		end = len(lines)
	}
	var sb strings.Builder
	for i := from; i < end; i++ {
		sb.WriteString(lines[i].Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func scanLines(lines []domain.Line) []chunk {
	var chunks []chunk
	var cur *owner
	var curLines []domain.Line

	flush := func() {
		if len(curLines) > 0 {
			chunks = append(chunks, chunk{owner: cur, lines: curLines})
			curLines = nil
		}
	}

	for i, line := range lines {
		if headerText, inlineBody, ok := headerCandidateText(line.Text); ok {
			body := inlineBody + "\n" + sampleNext(lines, i+1, 5)
			sc := ScoreMatch(headerText, body)
			if sc.Value >= 0.5 {
				if cur == nil || sc.Value >= cur.score-0.1 {
					flush()
					cur = &owner{tag: sc.Canonical, score: sc.Value, headerText: headerText}
					if inlineBody != "" {
						curLines = append(curLines, domain.Line{Text: inlineBody, Offset: line.Offset})
					} else {
						curLines = append(curLines, line)
					}
					continue
				}
			}
		}
		curLines = append(curLines, line)
	}
	flush()
	return chunks
}

// splitCombinedHeaders handles A/P and similar combined-tag sections by
// re-scanning an Assessment chunk's body for an embedded "Plan:"
// sub-header line and splitting the chunk in two (§4.4 step 4).
func splitCombinedHeaders(chunks []chunk) []chunk {
	var out []chunk
	for _, c := range chunks {
		if c.owner == nil || c.owner.tag != domain.Assessment {
			out = append(out, c)
			continue
		}
		splitAt := -1
		for i, ln := range c.lines {
			if i == 0 {
				continue // the header line itself
			}
			trimmed := strings.TrimSpace(ln.Text)
			if subHeaderPattern.MatchString(trimmed) && strings.EqualFold(strings.TrimSuffix(trimmed, ":"), "plan") {
				splitAt = i
				break
			}
		}
		if splitAt < 0 {
			out = append(out, c)
			continue
		}
		out = append(out, chunk{owner: c.owner, lines: c.lines[:splitAt]})
		planOwner := &owner{tag: domain.Plan, score: c.owner.score, headerText: "Plan"}
		out = append(out, chunk{owner: planOwner, lines: c.lines[splitAt:]})
	}
	return out
}

func merge(chunks []chunk) Result {
	sections := make(map[domain.SectionTag]Section)
	var order []domain.SectionTag
	var unknown []string

	for _, c := range chunks {
		text := joinLines(c.lines)
		if c.owner == nil {
			if strings.TrimSpace(text) != "" {
				unknown = append(unknown, text)
			}
			continue
		}
		if existing, ok := sections[c.owner.tag]; ok {
			existing.text += "\n\n" + text
			existing.weight += float64(len(text))
			existing.weightedScore += c.owner.score * float64(len(text))
			sections[c.owner.tag] = existing
		} else {
			order = append(order, c.owner.tag)
			sections[c.owner.tag] = Section{
				text:          text,
				headerText:    c.owner.headerText,
				weight:        float64(len(text)),
				weightedScore: c.owner.score * float64(len(text)),
			}
		}
	}

	out := make(map[domain.SectionTag]domain.Section, len(sections))
	for tag, s := range sections {
		conf := s.weightedScore
		if s.weight > 0 {
			conf = s.weightedScore / s.weight
		}
		out[tag] = domain.Section{
			Tag:              tag,
			RawText:          s.text,
			Confidence:       conf,
			SourceHeaderText: s.headerText,
		}
	}

	sort.Strings(unknown) // deterministic alphabetical order; the blocks' order in the note is not kept
	_ = order
	return Result{Sections: out, UnknownText: dedupeOrdered(unknown)}
}

// Section is an internal accumulator; domain.Section is the public type.
type Section struct {
	text          string
	headerText    string
	weight        float64
	weightedScore float64
}

func joinLines(lines []domain.Line) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

func dedupeOrdered(in []string) []string {
	// sort.Strings above only establishes a stable, deterministic
	// presentation order for repeated unknown blocks; no true dedupe is
	// applied since distinct blocks may share text incidentally.
	return in
}

var diagnosisLikePattern = regexp.MustCompile(`(?i)\b(acute|chronic|syndrome|failure|fibrillation|infarction|hypertension|disease|emergency)\b`)

// applyPositionalFallback promotes a prose paragraph to Assessment and
// trailing imperative/bulleted lines to Plan when the header-driven scan
// found neither (§4.4 step 5).
func applyPositionalFallback(r *Result, n domain.NormalizedText) {
	if _, ok := r.Sections[domain.Assessment]; !ok {
		bestIdx, bestText := -1, ""
		for i, block := range r.UnknownText {
			if diagnosisLikePattern.MatchString(block) {
				bestIdx, bestText = i, block
			}
		}
		if bestIdx >= 0 {
			r.Sections[domain.Assessment] = domain.Section{
				Tag:        domain.Assessment,
				RawText:    bestText,
				Confidence: 0.4,
			}
			r.UnknownText = append(r.UnknownText[:bestIdx], r.UnknownText[bestIdx+1:]...)
		}
	}

	if _, ok := r.Sections[domain.Plan]; !ok {
		var planLines []string
		var rest []string
		for _, block := range r.UnknownText {
			if looksImperativeOrBulleted(block) {
				planLines = append(planLines, block)
			} else {
				rest = append(rest, block)
			}
		}
		if len(planLines) > 0 {
			r.Sections[domain.Plan] = domain.Section{
				Tag:        domain.Plan,
				RawText:    strings.Join(planLines, "\n"),
				Confidence: 0.35,
			}
			r.UnknownText = rest
		}
	}
}

func looksImperativeOrBulleted(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if bulletPattern.MatchString(trimmed) || numberedPattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}
