// Package parser implements the Core Entry Point (§4.10): ParseNote,
// RenderNote, and ParseAndRender, composed from the sibling pipeline
// stage packages as a strictly sequential, phase-bounded pipeline. The
// core performs no I/O, holds no package-level mutable state beyond the
// immutable reference.Tables it is constructed with, and never blocks.
package parser

import (
	"context"
	"sort"
	"time"

	"github.com/clinacuity/clinical-note-parser/internal/clinicalcontext"
	"github.com/clinacuity/clinical-note-parser/internal/disambiguate"
	"github.com/clinacuity/clinical-note-parser/internal/domain"
	"github.com/clinacuity/clinical-note-parser/internal/extract"
	"github.com/clinacuity/clinical-note-parser/internal/normalize"
	"github.com/clinacuity/clinical-note-parser/internal/reference"
	"github.com/clinacuity/clinical-note-parser/internal/render"
	"github.com/clinacuity/clinical-note-parser/internal/safety"
	"github.com/clinacuity/clinical-note-parser/internal/section"
)

// Parser holds the immutable static reference data the pipeline is
// configured with (§6) and exposes the three entry-point operations.
// A single Parser is safe for concurrent reuse across calls: it holds
// no per-call mutable state.
type Parser struct {
	tables *reference.Tables
}

// New builds a Parser from already-loaded reference tables.
func New(tables *reference.Tables) *Parser {
	return &Parser{tables: tables}
}

// stageTimer records per-phase wall-clock duration into Meta.PhaseTimingMS.
// Timing is observational only: it is never read back by the pipeline and
// never affects output, so its presence does not threaten determinism.
type stageTimer struct {
	timings map[string]int64
}

func newStageTimer() *stageTimer {
	return &stageTimer{timings: make(map[string]int64)}
}

func (s *stageTimer) time(name string, fn func()) {
	start := time.Now()
	fn()
	s.timings[name] = time.Since(start).Milliseconds()
}

// ParseNote runs the full extraction pipeline over text (§4.10
// parse_clinical_note). It checks ctx for cancellation at each phase
// boundary; on cancellation it returns the partial ParsedNote built so
// far with Meta.Cancelled = true and a Cancelled warning appended,
// rather than an error (cancellation is not call-fatal, §7).
func (p *Parser) ParseNote(ctx context.Context, text string, opts domain.Options) (domain.ParsedNote, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return domain.ParsedNote{}, err
	}
	if len(text) > opts.MaxTextBytes {
		return domain.ParsedNote{}, domain.NewInputTooLarge(len(text), opts.MaxTextBytes)
	}

	tables := p.tables
	if opts.AllowlistOverride != nil || opts.BlocklistOverride != nil {
		tables = tables.WithOverrides(opts.AllowlistOverride, opts.BlocklistOverride)
	}

	note := domain.ParsedNote{Meta: domain.Meta{ParserVersion: "1.0.0", PhaseTimingMS: map[string]int64{}}}
	timer := newStageTimer()

	var normalized domain.NormalizedText
	timer.time("normalize", func() { normalized = normalize.Normalize(text) })
	note.Normalized = normalized
	if cancelled(ctx, &note, timer) {
		return note, nil
	}

	var sectionResult section.Result
	timer.time("section_detect", func() { sectionResult = section.DetectSections(normalized) })
	note.Sections = sectionResult.Sections
	if len(sectionResult.UnknownText) > 0 {
		note.Sections[domain.Unknown] = domain.Section{
			Tag:     domain.Unknown,
			RawText: joinUnknown(sectionResult.UnknownText),
		}
	}
	if cancelled(ctx, &note, timer) {
		return note, nil
	}

	timer.time("extract", func() { p.runExtraction(&note, tables) })
	if cancelled(ctx, &note, timer) {
		return note, nil
	}

	timer.time("context", func() {
		note.Context = clinicalcontext.ExtractContext(normalized.Cleaned)
	})
	if cancelled(ctx, &note, timer) {
		return note, nil
	}

	timer.time("disambiguate", func() {
		note.Diagnoses = disambiguate.Disambiguate(note.Diagnoses, note.Context, note.Vitals)
	})
	if cancelled(ctx, &note, timer) {
		return note, nil
	}

	timer.time("safety", func() {
		note.SafetyWarnings = safety.ValidateSafety(note.Medications, note.Labs, note.Vitals)
	})

	note.ConfidenceOverall = overallConfidence(note)
	note.Meta.PhaseTimingMS = timer.timings
	note.Meta.Source = "text"
	return note, nil
}

// runExtraction runs every entity extractor over its owning section
// (falling back to the full cleaned text when the section is absent, so
// inline/no-header notes still yield entities) and over the whole
// document for demographics, which is not section-scoped.
func (p *Parser) runExtraction(note *domain.ParsedNote, tables *reference.Tables) {
	vitalsText := sectionOrWhole(note, domain.VitalsTag)
	vitals, vwarn := extract.Vitals(vitalsText)
	note.Vitals = vitals
	note.Warnings = append(note.Warnings, vwarn...)

	labsText := sectionOrWhole(note, domain.LabsTag)
	labs, lwarn := extract.Labs(labsText, tables)
	note.Labs = labs
	note.Warnings = append(note.Warnings, lwarn...)

	medsText := sectionOrWhole(note, domain.MedicationsTag)
	meds, mwarn := extract.Medications(medsText)
	note.Medications = meds
	note.Warnings = append(note.Warnings, mwarn...)

	allergyText := sectionOrWhole(note, domain.AllergiesTag)
	allergies, nkda := extract.Allergies(allergyText)
	note.Allergies = allergies
	note.NKDA = nkda

	note.Patient = extract.Demographics(note.Normalized.Cleaned)

	diagnosisSources := []struct {
		tag domain.SectionTag
		src domain.DiagnosisSource
	}{
		{domain.Assessment, domain.SourceAssessment},
		{domain.HPI, domain.SourceHPI},
		{domain.ROS, domain.SourceROS},
	}
	var diagnoses []domain.Diagnosis
	for _, ds := range diagnosisSources {
		if sec, ok := note.Sections[ds.tag]; ok {
			dx, dwarn := extract.Diagnoses(sec.RawText, ds.src, tables)
			diagnoses = append(diagnoses, dx...)
			note.Warnings = append(note.Warnings, dwarn...)
		}
	}
	sort.SliceStable(diagnoses, func(i, j int) bool {
		return diagnoses[i].Source.SourceRank() < diagnoses[j].Source.SourceRank()
	})
	note.Diagnoses = diagnoses
}

func sectionOrWhole(note *domain.ParsedNote, tag domain.SectionTag) string {
	if sec, ok := note.Sections[tag]; ok {
		return sec.RawText
	}
	return note.Normalized.Cleaned
}

func joinUnknown(blocks []string) string {
	out := blocks[0]
	for _, b := range blocks[1:] {
		out += "\n\n" + b
	}
	return out
}

func cancelled(ctx context.Context, note *domain.ParsedNote, timer *stageTimer) bool {
	select {
	case <-ctx.Done():
		note.Meta.Cancelled = true
		note.Meta.PhaseTimingMS = timer.timings
		note.Warnings = append(note.Warnings, domain.Warning{Code: domain.WarnCancelled})
		return true
	default:
		return false
	}
}

// overallConfidence averages section confidences as the note-level
// summary figure; an empty section map yields 0.
func overallConfidence(note domain.ParsedNote) float64 {
	if len(note.Sections) == 0 {
		return 0
	}
	tags := make([]string, 0, len(note.Sections))
	for tag := range note.Sections {
		if tag != domain.Unknown {
			tags = append(tags, string(tag))
		}
	}
	sort.Strings(tags)

	var sum float64
	for _, t := range tags {
		sum += note.Sections[domain.SectionTag(t)].Confidence
	}
	if len(tags) == 0 {
		return 0
	}
	return sum / float64(len(tags))
}

// RenderNote runs the Template Renderer (§4.9/§4.10 render_note) over an
// already-parsed note.
func (p *Parser) RenderNote(parsed domain.ParsedNote, opts domain.Options) (domain.RenderedNote, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return domain.RenderedNote{}, err
	}
	return render.Render(parsed, opts, p.tables), nil
}

// ParseAndRender runs ParseNote followed by RenderNote as one call
// (§4.10 parse_and_render).
func (p *Parser) ParseAndRender(ctx context.Context, text string, opts domain.Options) (domain.ParsedNote, domain.RenderedNote, error) {
	parsed, err := p.ParseNote(ctx, text, opts)
	if err != nil {
		return domain.ParsedNote{}, domain.RenderedNote{}, err
	}
	rendered, err := p.RenderNote(parsed, opts)
	if err != nil {
		return parsed, domain.RenderedNote{}, err
	}
	return parsed, rendered, nil
}
