// Package normalize implements the text-cleanup stage (§4.1): quote/dash
// folding, control-character stripping, whitespace collapsing, and date
// token extraction. Normalize never fails; the worst case is a pass
// through with only whitespace collapsed.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

var (
	smartQuotes = strings.NewReplacer(
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
		"“", "\"", "”", "\"", "„", "\"", "‟", "\"",
		"–", "-", "—", "-", "‒", "-", "―", "-",
		" ", " ",
	)

	controlCharsPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	blankLinesPattern   = regexp.MustCompile(`\n{3,}`)
	spaceRunPattern     = regexp.MustCompile(`[ \t]{2,}`)
	bomPrefix           = "﻿"

	dateSlashPattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`)
	dateISOPattern   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dateLongPattern  = regexp.MustCompile(`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`)

	monthAbbrev = map[string]int{
		"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
		"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
	}
)

// Normalize produces a NormalizedText from raw clinical note text. It is
// idempotent: Normalize(Normalize(x).Cleaned).Cleaned == Normalize(x).Cleaned.
func Normalize(raw string) domain.NormalizedText {
	cleaned := clean(raw)
	return domain.NormalizedText{
		Raw:     raw,
		Cleaned: cleaned,
		Lines:   splitLines(cleaned),
		Dates:   extractDates(cleaned),
	}
}

func clean(raw string) string {
	s := strings.TrimPrefix(raw, bomPrefix)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = smartQuotes.Replace(s)
	s = controlCharsPattern.ReplaceAllString(s, "")
	s = blankLinesPattern.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		indent := leadingIndent(line)
		rest := line[len(indent):]
		rest = spaceRunPattern.ReplaceAllString(rest, " ")
		rest = strings.TrimRight(rest, " \t")
		lines[i] = indent + rest
	}
	return strings.Join(lines, "\n")
}

// leadingIndent returns the leading run of spaces/tabs so
// bullet detection downstream can still tell a bullet line from a plain
// continuation line.
func leadingIndent(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

func splitLines(cleaned string) []domain.Line {
	var lines []domain.Line
	offset := 0
	for _, raw := range strings.Split(cleaned, "\n") {
		lines = append(lines, domain.Line{Text: raw, Offset: offset})
		offset += len(raw) + 1
	}
	return lines
}

func extractDates(cleaned string) []domain.DateToken {
	var out []domain.DateToken

	for _, m := range dateSlashPattern.FindAllStringSubmatchIndex(cleaned, -1) {
		text := cleaned[m[0]:m[1]]
		mo, _ := strconv.Atoi(cleaned[m[2]:m[3]])
		da, _ := strconv.Atoi(cleaned[m[4]:m[5]])
		yr, _ := strconv.Atoi(cleaned[m[6]:m[7]])
		if yr < 100 {
			if yr < 70 {
				yr += 2000
			} else {
				yr += 1900
			}
		}
		if iso, ok := validISO(yr, mo, da); ok {
			out = append(out, domain.DateToken{Text: text, ISO: iso, Offset: m[0]})
		}
	}

	for _, m := range dateISOPattern.FindAllStringSubmatchIndex(cleaned, -1) {
		text := cleaned[m[0]:m[1]]
		yr, _ := strconv.Atoi(cleaned[m[2]:m[3]])
		mo, _ := strconv.Atoi(cleaned[m[4]:m[5]])
		da, _ := strconv.Atoi(cleaned[m[6]:m[7]])
		if iso, ok := validISO(yr, mo, da); ok {
			out = append(out, domain.DateToken{Text: text, ISO: iso, Offset: m[0]})
		}
	}

	for _, m := range dateLongPattern.FindAllStringSubmatchIndex(cleaned, -1) {
		text := cleaned[m[0]:m[1]]
		monAbbr := cleaned[m[2]:m[3]]
		da, _ := strconv.Atoi(cleaned[m[4]:m[5]])
		yr, _ := strconv.Atoi(cleaned[m[6]:m[7]])
		mo := monthAbbrev[monAbbr]
		if iso, ok := validISO(yr, mo, da); ok {
			out = append(out, domain.DateToken{Text: text, ISO: iso, Offset: m[0]})
		}
	}

	return out
}

func validISO(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// Lowercased returns a lowercased view of s, derived on demand rather
// than stored on NormalizedText (§4.1: "lower-case is NOT applied to
// cleaned; a parallel lowercased view is derived on demand").
func Lowercased(s string) string {
	return strings.ToLower(s)
}
