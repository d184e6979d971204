package domain

// TemplateID selects one of the three built-in rendering templates.
type TemplateID string

const (
	TemplateCIS      TemplateID = "CIS"
	TemplateConsult  TemplateID = "Consult"
	TemplateProgress TemplateID = "Progress"
)

func (t TemplateID) IsValid() bool {
	switch t {
	case TemplateCIS, TemplateConsult, TemplateProgress:
		return true
	default:
		return false
	}
}

// LocaleUnits selects US customary or SI units at render time. It never
// affects parsing.
type LocaleUnits string

const (
	LocaleUS LocaleUnits = "US"
	LocaleSI LocaleUnits = "SI"
)

func (l LocaleUnits) IsValid() bool {
	switch l {
	case LocaleUS, LocaleSI:
		return true
	default:
		return false
	}
}

// DefaultMaxTextBytes is the recommended input size bound from §5.
const DefaultMaxTextBytes = 256 * 1024

// Options configures a single parse_clinical_note / render_note /
// parse_and_render call. Options are immutable inputs; nothing in the
// pipeline mutates an Options value after it is passed in.
type Options struct {
	TemplateID        TemplateID
	SmartPhrase       bool
	IncludeUnmapped   bool
	MaxTextBytes      int
	LocaleUnits       LocaleUnits
	AllowlistOverride []string
	BlocklistOverride []string
}

// DefaultOptions returns the documented default option set (§4.10).
func DefaultOptions() Options {
	return Options{
		TemplateID:      TemplateCIS,
		SmartPhrase:     false,
		IncludeUnmapped: true,
		MaxTextBytes:    DefaultMaxTextBytes,
		LocaleUnits:     LocaleUS,
	}
}

// Normalize fills in zero-valued fields with their documented defaults
// and reports the first InvalidOption violation, if any.
func (o Options) Normalize() (Options, error) {
	out := o
	if out.TemplateID == "" {
		out.TemplateID = TemplateCIS
	}
	if !out.TemplateID.IsValid() {
		return out, NewInvalidOption("template_id", string(out.TemplateID))
	}
	if out.MaxTextBytes <= 0 {
		out.MaxTextBytes = DefaultMaxTextBytes
	}
	if out.LocaleUnits == "" {
		out.LocaleUnits = LocaleUS
	}
	if !out.LocaleUnits.IsValid() {
		return out, NewInvalidOption("locale_units", string(out.LocaleUnits))
	}
	return out, nil
}
