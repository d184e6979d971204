package render

import "github.com/clinacuity/clinical-note-parser/internal/domain"

// Slot is one named position in a rendered note. Slots are a superset of
// SectionTag: most map 1:1 to a source section, but Demographics has no
// corresponding SectionTag and is filled directly from ParsedNote.Patient.
type Slot string

const (
	SlotDemographics Slot = "Demographics"
	SlotSubjective   Slot = "Subjective"
	SlotHPI          Slot = "HPI"
	SlotObjective    Slot = "Objective"
	SlotVitals       Slot = "Vitals"
	SlotPMH          Slot = "PMH"
	SlotPSH          Slot = "PSH"
	SlotFamilyHx     Slot = "FamilyHistory"
	SlotSocialHx     Slot = "SocialHistory"
	SlotROS          Slot = "ROS"
	SlotMedications  Slot = "Medications"
	SlotAllergies    Slot = "Allergies"
	SlotLabs         Slot = "Labs"
	SlotImaging      Slot = "Imaging"
	SlotAssessment   Slot = "Assessment"
	SlotPlan         Slot = "Plan"
)

// sectionNormalization is the SECTION_NORMALIZATION table mapping source
// SectionTags onto render Slots (§4.9). It is 1:1 except that Vitals/Labs/
// Medications/Allergies are filled from their typed ParsedNote fields
// rather than section raw text, Assessment is filled from the diagnoses
// and safety warnings, and Plan merges the Plan section text with the
// generated plan and safety actions.
var sectionNormalization = map[domain.SectionTag]Slot{
	domain.Subjective:     SlotSubjective,
	domain.HPI:            SlotHPI,
	domain.Objective:      SlotObjective,
	domain.PMH:            SlotPMH,
	domain.PSH:            SlotPSH,
	domain.FamilyHistory:  SlotFamilyHx,
	domain.SocialHistory:  SlotSocialHx,
	domain.ROS:            SlotROS,
	domain.MedicationsTag: SlotMedications,
	domain.AllergiesTag:   SlotAllergies,
	domain.VitalsTag:      SlotVitals,
	domain.LabsTag:        SlotLabs,
	domain.Imaging:        SlotImaging,
	domain.Assessment:     SlotAssessment,
	domain.Plan:           SlotPlan,
}

// slotLabels gives each slot its fixed, canonically-spelled header text
// (§9's "fixed label spelling").
var slotLabels = map[Slot]string{
	SlotDemographics: "Demographics:",
	SlotSubjective:   "Chief Complaint:",
	SlotHPI:          "History of Present Illness:",
	SlotObjective:    "Physical Exam:",
	SlotVitals:       "Vitals:",
	SlotPMH:          "Past Medical History:",
	SlotPSH:          "Past Surgical History:",
	SlotFamilyHx:     "Family History:",
	SlotSocialHx:     "Social History:",
	SlotROS:          "Review of Systems:",
	SlotMedications:  "Medications:",
	SlotAllergies:    "Allergies:",
	SlotLabs:         "Labs:",
	SlotImaging:      "Imaging:",
	SlotAssessment:   "Assessment:",
	SlotPlan:         "Plan:",
}

// Template is an ordered list of slots the renderer fills and emits, one
// per output document kind (§4.9, §9 "express templates as data").
type Template struct {
	ID    domain.TemplateID
	Slots []Slot
}

var templates = map[domain.TemplateID]Template{
	domain.TemplateCIS: {
		ID: domain.TemplateCIS,
		Slots: []Slot{
			SlotDemographics, SlotSubjective, SlotHPI, SlotPMH, SlotPSH,
			SlotFamilyHx, SlotSocialHx, SlotROS, SlotObjective, SlotVitals,
			SlotLabs, SlotImaging, SlotMedications, SlotAllergies,
			SlotAssessment, SlotPlan,
		},
	},
	domain.TemplateConsult: {
		ID: domain.TemplateConsult,
		Slots: []Slot{
			SlotDemographics, SlotSubjective, SlotHPI, SlotPMH, SlotPSH,
			SlotFamilyHx, SlotSocialHx, SlotMedications, SlotAllergies,
			SlotROS, SlotObjective, SlotVitals, SlotLabs, SlotImaging,
			SlotAssessment, SlotPlan,
		},
	},
	domain.TemplateProgress: {
		ID: domain.TemplateProgress,
		Slots: []Slot{
			SlotDemographics, SlotSubjective, SlotVitals, SlotLabs,
			SlotMedications, SlotObjective, SlotAssessment, SlotPlan,
		},
	},
}

// TemplateFor returns the declared slot order for id, defaulting to CIS
// when id is not one of the closed set (callers are expected to have
// already validated id via options.Normalize).
func TemplateFor(id domain.TemplateID) Template {
	if t, ok := templates[id]; ok {
		return t
	}
	return templates[domain.TemplateCIS]
}
