// Package audit records metadata about each parse call for operational
// observability — never the note text or any extracted clinical field. It
// is an optional host-side concern layered over the pure parsing core; the
// core itself remains stateless and stores nothing (spec Non-goals §1).
package audit

import (
	"time"

	"github.com/google/uuid"
)

// CallRecord captures the shape of a single parse_clinical_note or
// render_note invocation, stripped of any PHI-shaped content.
type CallRecord struct {
	ID             uuid.UUID
	RequestID      string
	TemplateID     string
	LocaleUnits    string
	InputBytes     int
	WarningCodes   []string
	PhaseElapsedMs map[string]int64
	CreatedAt      time.Time
}
