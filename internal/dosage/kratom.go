package dosage

import (
	"fmt"

	"github.com/julianstephens/suppleflow/internal/guidelines"
	"github.com/julianstephens/suppleflow/internal/models"
)

// KratomReport compares capsule-counted intakes against a guideline substance.
// Intake dosages of matching supplements are read as capsule counts.
type KratomReport struct {
	Guideline   guidelines.Substance `json:"guideline"`
	Intakes     []models.Intake      `json:"intakes"`
	Capsules    float64              `json:"capsules"`
	Grams       float64              `json:"grams"`
	Doses       float64              `json:"doses"`
	LargestDose float64              `json:"largest_dose"`
	UnderRange  bool                 `json:"under_range"`
	AboveRange  bool                 `json:"above_range"`
	OverCeiling bool                 `json:"over_ceiling"`
	LargeDose   bool                 `json:"large_dose"`
}

// Kratom selects intakes whose supplement name matches the guideline and
// derives grams, estimated doses and the guideline flags.
func Kratom(supplements []models.Supplement, intakes []models.Intake, g guidelines.Substance) KratomReport {
	matching := make(map[string]bool)
	for _, s := range supplements {
		if g.Matches(s.Name) {
			matching[s.ID] = true
		}
	}

	r := KratomReport{Guideline: g, Intakes: []models.Intake{}}
	for _, in := range intakes {
		if !matching[in.SupplementID] {
			continue
		}
		r.Intakes = append(r.Intakes, in)
		r.Capsules += in.Dosage
		if in.Dosage > r.LargestDose {
			r.LargestDose = in.Dosage
		}
	}

	r.Grams = r.Capsules * g.CapsuleMg / 1000
	if g.DoseDivisor > 0 {
		r.Doses = r.Capsules / g.DoseDivisor
	}
	r.UnderRange = r.Capsules > 0 && r.Grams < g.GramsPerDay.Min
	r.AboveRange = r.Grams > g.GramsPerDay.Max
	r.OverCeiling = g.CapsuleCeiling > 0 && r.Capsules >= g.CapsuleCeiling
	r.LargeDose = g.PerDoseCapsules.Max > 0 && r.LargestDose > g.PerDoseCapsules.Max
	return r
}

// Any reports whether at least one matching intake was found.
func (r KratomReport) Any() bool {
	return len(r.Intakes) > 0
}

// Warn reports whether the report should be surfaced as a warning.
func (r KratomReport) Warn() bool {
	return r.OverCeiling || r.AboveRange || r.LargeDose
}

// Warnings renders a line for every flag that makes Warn true.
func (r KratomReport) Warnings() []string {
	var msgs []string
	g := r.Guideline
	if r.OverCeiling {
		msgs = append(msgs, fmt.Sprintf("%g capsules reaches the %g capsule daily ceiling", r.Capsules, g.CapsuleCeiling))
	}
	if r.AboveRange {
		msgs = append(msgs, fmt.Sprintf("%.1f g is above the %s g daily range", r.Grams, g.GramsPerDay))
	}
	if r.LargeDose {
		msgs = append(msgs, fmt.Sprintf("a single dose of %g capsules exceeds the %s capsule per-dose range", r.LargestDose, g.PerDoseCapsules))
	}
	return msgs
}

// Messages is Warnings followed by the under-range note, which is shown but
// never raised as a warning.
func (r KratomReport) Messages() []string {
	msgs := r.Warnings()
	if r.UnderRange {
		msgs = append(msgs, fmt.Sprintf("%.1f g is below the %s g daily range", r.Grams, r.Guideline.GramsPerDay))
	}
	return msgs
}
