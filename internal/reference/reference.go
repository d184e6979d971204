// Package reference loads the static, domain-scoping JSON tables the
// parser is configured with at construction time: the cardiology
// diagnosis allow/deny lists, the lab alias/reference-range table, and
// the evidence-based plan content keyed by diagnosis id. Tables are
// immutable once loaded — nothing in the pipeline mutates them after
// Load returns (§5).
package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

// LabRef is one entry of labs_reference.json: the canonical lab name's
// known aliases, its normal reference range, and its unit.
type LabRef struct {
	Aliases []string `json:"aliases"`
	Low     *float64 `json:"low,omitempty"`
	High    *float64 `json:"high,omitempty"`
	Units   string   `json:"units"`
	Note    string   `json:"note,omitempty"`
}

// CardiologyDiagnosis is one entry of cardiology_diagnoses.json, used by
// the plan generator (§4.8) and the renderer's Assessment composition.
type CardiologyDiagnosis struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Features   []string `json:"features,omitempty"`
	Workup     []string `json:"workup,omitempty"`
	Management []string `json:"management,omitempty"`
	Pearls     []string `json:"pearls,omitempty"`
	Guidelines []string `json:"guidelines,omitempty"`
	PDFs       []string `json:"pdfs,omitempty"`
}

// Tables bundles all four static reference tables plus derived lookup
// indexes built once at Load time.
type Tables struct {
	DiagnosisAllowlist []string
	DiagnosisBlocklist []string
	LabsReference      map[string]LabRef
	CardiologyDx       []CardiologyDiagnosis

	aliasToCanonical map[string]string   // lowercased alias -> canonical lab id
	dxByID           map[string]CardiologyDiagnosis
}

const (
	fileAllowlist  = "diagnosis_allowlist.json"
	fileBlocklist  = "diagnosis_blocklist.json"
	fileLabsRef    = "labs_reference.json"
	fileCardioDx   = "cardiology_diagnoses.json"
)

// Load reads the four required static JSON files from dir. Any missing
// or malformed file is a StaticDataMissing fatal error (§7) — the only
// place in this module that error kind is produced.
func Load(dir string) (*Tables, error) {
	t := &Tables{}

	if err := readJSON(filepath.Join(dir, fileAllowlist), &t.DiagnosisAllowlist); err != nil {
		return nil, domain.NewStaticDataMissing(fileAllowlist, err)
	}
	if err := readJSON(filepath.Join(dir, fileBlocklist), &t.DiagnosisBlocklist); err != nil {
		return nil, domain.NewStaticDataMissing(fileBlocklist, err)
	}
	if err := readJSON(filepath.Join(dir, fileLabsRef), &t.LabsReference); err != nil {
		return nil, domain.NewStaticDataMissing(fileLabsRef, err)
	}
	if err := readJSON(filepath.Join(dir, fileCardioDx), &t.CardiologyDx); err != nil {
		return nil, domain.NewStaticDataMissing(fileCardioDx, err)
	}

	t.buildIndexes()
	return t, nil
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (t *Tables) buildIndexes() {
	t.aliasToCanonical = make(map[string]string)
	for canonical, ref := range t.LabsReference {
		t.aliasToCanonical[strings.ToLower(canonical)] = canonical
		for _, alias := range ref.Aliases {
			t.aliasToCanonical[strings.ToLower(alias)] = canonical
		}
	}
	t.dxByID = make(map[string]CardiologyDiagnosis, len(t.CardiologyDx))
	for _, d := range t.CardiologyDx {
		t.dxByID[d.ID] = d
	}
}

// CanonicalLabName resolves a raw lab name token to its canonical name
// via the alias table, reporting whether a match was found.
func (t *Tables) CanonicalLabName(raw string) (string, bool) {
	canonical, ok := t.aliasToCanonical[strings.ToLower(strings.TrimSpace(raw))]
	return canonical, ok
}

// LabRange returns the reference range for a canonical lab name, if any.
func (t *Tables) LabRange(canonical string) (LabRef, bool) {
	ref, ok := t.LabsReference[canonical]
	return ref, ok
}

// DiagnosisByID looks up a cardiology diagnosis entry by its canonical id.
func (t *Tables) DiagnosisByID(id string) (CardiologyDiagnosis, bool) {
	d, ok := t.dxByID[id]
	return d, ok
}

// IsAllowed reports whether a candidate diagnosis phrase passes the
// allow/deny gate: it must match (case-insensitively, substring) an
// allowlist entry and must not match any blocklist entry. Blocklist
// entries may end in "*" to match as a prefix.
func (t *Tables) IsAllowed(candidate string) bool {
	lc := strings.ToLower(candidate)

	for _, block := range t.DiagnosisBlocklist {
		if matchesPattern(lc, strings.ToLower(block)) {
			return false
		}
	}
	for _, allow := range t.DiagnosisAllowlist {
		if matchesPattern(lc, strings.ToLower(allow)) {
			return true
		}
	}
	return false
}

func matchesPattern(candidate, pattern string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(candidate, strings.TrimSuffix(pattern, "*"))
	}
	return strings.Contains(candidate, pattern)
}

// WithOverrides returns a shallow copy of t with the allow/deny lists
// replaced, per the options.AllowlistOverride/BlocklistOverride inputs
// (§4.10). The rest of the tables (labs, plan content) are shared.
func (t *Tables) WithOverrides(allow, block []string) *Tables {
	if allow == nil && block == nil {
		return t
	}
	clone := *t
	if allow != nil {
		clone.DiagnosisAllowlist = allow
	}
	if block != nil {
		clone.DiagnosisBlocklist = block
	}
	return &clone
}
