package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
)

// BuildPrompt renders in as a plain-text prompt. Each list is capped at
// InsightMaxLines entries and the whole prompt at InsightMaxChars characters.
func BuildPrompt(in Input) string {
	loc := in.Location
	if loc == nil {
		loc = time.Local
	}

	byID := make(map[string]models.Supplement, len(in.Supplements))
	for _, s := range in.Supplements {
		byID[s.ID] = s
	}

	intakes := make([]models.Intake, len(in.Intakes))
	copy(intakes, in.Intakes)
	sort.SliceStable(intakes, func(i, j int) bool {
		return intakes[i].TakenAt.Before(intakes[j].TakenAt)
	})

	var sb strings.Builder
	sb.WriteString("Analyze the following supplement intake data and provide personalized insights.\n")
	if !in.Now.IsZero() {
		fmt.Fprintf(&sb, "Date: %s\n", in.Now.In(loc).Format(constants.DateFormat))
	}

	sb.WriteString("\nToday's intakes:\n")
	writeCapped(&sb, len(intakes), func(i int) string {
		it := intakes[i]
		s, ok := byID[it.SupplementID]
		name, unit := "unknown supplement", constants.DefaultUnit
		if ok {
			name, unit = s.Name, unitOf(s)
		}
		line := fmt.Sprintf("- %s: %g %s at %s", name, it.Dosage, unit, it.TakenAt.In(loc).Format(constants.TimeFormat))
		if ok && s.CapsuleMg != nil {
			line += fmt.Sprintf(" (%g mg per capsule)", *s.CapsuleMg)
		}
		if it.Notes != "" {
			line += " note: " + oneLine(it.Notes)
		}
		return line
	})

	sb.WriteString("\nSupplements:\n")
	writeCapped(&sb, len(in.Supplements), func(i int) string {
		s := in.Supplements[i]
		line := fmt.Sprintf("- %s: max %g %s/day", s.Name, s.MaxDosage, unitOf(s))
		if s.RecommendedDosage > 0 {
			line += fmt.Sprintf(", recommended %g %s", s.RecommendedDosage, unitOf(s))
		}
		if s.CapsuleMg != nil {
			line += fmt.Sprintf(", %g mg per capsule", *s.CapsuleMg)
		}
		return line
	})

	if k := in.Kratom; k != nil {
		fmt.Fprintf(&sb, "\n%s guidelines (%g mg capsules): %s g/day, at most %g capsules/day, %s capsules per dose.\n",
			k.Name, k.CapsuleMg, k.GramsPerDay, k.CapsuleCeiling, k.PerDoseCapsules)
	}

	sb.WriteString("\nPlease provide:\n")
	sb.WriteString("1. A brief analysis of intake patterns\n")
	sb.WriteString("2. Any potential concerns or recommendations\n")
	sb.WriteString("3. Suggestions for optimization\n")
	sb.WriteString("Keep the response concise and actionable.\n")

	return truncate(sb.String(), constants.InsightMaxChars)
}

func writeCapped(sb *strings.Builder, n int, line func(i int) string) {
	if n == 0 {
		sb.WriteString("- none\n")
		return
	}
	shown := min(n, constants.InsightMaxLines)
	for i := 0; i < shown; i++ {
		sb.WriteString(line(i))
		sb.WriteByte('\n')
	}
	if n > shown {
		fmt.Fprintf(sb, "- ... and %d more\n", n-shown)
	}
}

func unitOf(s models.Supplement) string {
	if s.Unit == "" {
		return constants.DefaultUnit
	}
	return s.Unit
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
