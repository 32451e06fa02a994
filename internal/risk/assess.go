// Package risk scores clinical risk across pain, infection, mobility,
// medication, and psychological categories and decides when to escalate to
// staff.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"preop-callbot/pkg"
)

// Inputs is the response set the assessor scores. Missing fields score low.
type Inputs struct {
	PainLevel          *int
	InfectionSigns     []string
	MobilityIssues     []string
	MedicationConcerns []string
	PsychologicalSigns []string
}

// painBucket holds time-dependent pain thresholds: recovery tolerates higher
// pain in the first post-op days than weeks later.
type painBucket struct {
	maxDay   int // inclusive; 0 means no upper bound
	critical int
	high     int
	moderate int
}

var painBuckets = []painBucket{
	{maxDay: 7, critical: 9, high: 7, moderate: 5},
	{maxDay: 30, critical: 8, high: 6, moderate: 4},
	{maxDay: 0, critical: 6, high: 5, moderate: 3},
}

// Keyword tables used by CollectSignals to spot category signals in an
// utterance.
var (
	infectionKeywords = []string{
		"fever", "chills", "pus", "discharge", "oozing", "redness", "red streak",
		"swelling", "swollen", "warm to the touch", "infected", "infection",
	}
	severeInfectionKeywords = []string{"fever", "chills", "pus", "discharge", "oozing", "red streak"}

	psychologicalKeywords = []string{
		"anxious", "anxiety", "worried", "scared", "afraid", "nervous",
		"depressed", "depression", "hopeless", "overwhelmed", "can't cope",
		"crying", "alone", "give up",
	}
	severePsychKeywords   = []string{"hopeless", "give up", "can't cope"}
	elevatedPsychKeywords = []string{"depressed", "depression", "overwhelmed", "crying"}

	severeMobilityKeywords = []string{"fell", "fall", "fallen", "can't walk", "cannot walk", "can't stand", "cannot stand"}
)

// CollectSignals assembles assessor inputs from the just-heard utterance and
// the accumulated report. Report fields dominate; utterance keywords cover
// the categories the structured report does not track.
func CollectSignals(utterance string, report pkg.Report) Inputs {
	low := strings.ToLower(utterance)
	in := Inputs{
		PainLevel:      report.InitialAssessment.PainLevel,
		MobilityIssues: concreteValues(report.InitialAssessment.DifficultActivities),
	}
	for _, kw := range infectionKeywords {
		if strings.Contains(low, kw) {
			in.InfectionSigns = append(in.InfectionSigns, kw)
		}
	}
	for _, kw := range psychologicalKeywords {
		if strings.Contains(low, kw) {
			in.PsychologicalSigns = append(in.PsychologicalSigns, kw)
		}
	}
	for _, kw := range severeMobilityKeywords {
		if strings.Contains(low, kw) {
			in.MobilityIssues = append(in.MobilityIssues, kw)
		}
	}
	if meds := concreteValues(report.Preparation.BloodThinningMedications); len(meds) > 0 {
		in.MedicationConcerns = append(in.MedicationConcerns,
			"blood-thinning medication reported: "+strings.Join(meds, ", "))
	}
	if strings.Contains(low, "missed") && (strings.Contains(low, "dose") || strings.Contains(low, "medication") || strings.Contains(low, "pill")) {
		in.MedicationConcerns = append(in.MedicationConcerns, "missed medication dose")
	}
	if strings.Contains(low, "stopped taking") {
		in.MedicationConcerns = append(in.MedicationConcerns, "stopped taking medication")
	}
	return in
}

// Assess scores every category, combines them into an overall severity, and
// emits one alert per category at high or critical. Deterministic for fixed
// inputs.
func Assess(in Inputs, daysPostSurgery int) pkg.RiskAssessment {
	per := map[pkg.RiskCategory]pkg.RiskLevel{
		pkg.RiskPain:          assessPain(in.PainLevel, daysPostSurgery),
		pkg.RiskInfection:     assessInfection(in.InfectionSigns),
		pkg.RiskMobility:      assessMobility(in.MobilityIssues),
		pkg.RiskMedication:    assessMedication(in.MedicationConcerns),
		pkg.RiskPsychological: assessPsychological(in.PsychologicalSigns),
	}

	total := 0
	for _, level := range per {
		total += level.Score()
	}
	avg := float64(total) / float64(len(per))
	overall := pkg.RiskLow
	switch {
	case avg >= 3.5:
		overall = pkg.RiskCritical
	case avg >= 2.5:
		overall = pkg.RiskHigh
	case avg >= 1.5:
		overall = pkg.RiskModerate
	}

	var alerts []pkg.RiskAlert
	for _, cat := range []pkg.RiskCategory{pkg.RiskPain, pkg.RiskInfection, pkg.RiskMobility, pkg.RiskMedication, pkg.RiskPsychological} {
		level := per[cat]
		if level != pkg.RiskHigh && level != pkg.RiskCritical {
			continue
		}
		alerts = append(alerts, pkg.RiskAlert{
			Category:        cat,
			Level:           level,
			Reason:          alertReason(cat, level, in, daysPostSurgery),
			ImmediateAction: level == pkg.RiskCritical,
		})
	}

	escalate := len(alerts) > 0 || overall == pkg.RiskHigh || overall == pkg.RiskCritical
	return pkg.RiskAssessment{
		PerCategory: per,
		Overall:     overall,
		Alerts:      alerts,
		Escalate:    escalate,
	}
}

func assessPain(level *int, daysPostSurgery int) pkg.RiskLevel {
	if level == nil {
		return pkg.RiskLow
	}
	b := bucketFor(daysPostSurgery)
	switch {
	case *level >= b.critical:
		return pkg.RiskCritical
	case *level >= b.high:
		return pkg.RiskHigh
	case *level >= b.moderate:
		return pkg.RiskModerate
	}
	return pkg.RiskLow
}

func bucketFor(daysPostSurgery int) painBucket {
	for _, b := range painBuckets {
		if b.maxDay == 0 || daysPostSurgery <= b.maxDay {
			return b
		}
	}
	return painBuckets[len(painBuckets)-1]
}

func assessInfection(signs []string) pkg.RiskLevel {
	if len(signs) == 0 {
		return pkg.RiskLow
	}
	severe := 0
	for _, s := range signs {
		for _, kw := range severeInfectionKeywords {
			if s == kw {
				severe++
				break
			}
		}
	}
	switch {
	case severe >= 2 || len(signs) >= 3:
		return pkg.RiskCritical
	case severe >= 1:
		return pkg.RiskHigh
	}
	return pkg.RiskModerate
}

func assessMobility(issues []string) pkg.RiskLevel {
	if len(issues) == 0 {
		return pkg.RiskLow
	}
	for _, s := range issues {
		for _, kw := range severeMobilityKeywords {
			if s == kw {
				return pkg.RiskHigh
			}
		}
	}
	if len(issues) >= 3 {
		return pkg.RiskHigh
	}
	return pkg.RiskModerate
}

func assessMedication(concerns []string) pkg.RiskLevel {
	if len(concerns) == 0 {
		return pkg.RiskLow
	}
	for _, c := range concerns {
		if c == "missed medication dose" || c == "stopped taking medication" {
			return pkg.RiskHigh
		}
	}
	return pkg.RiskModerate
}

func assessPsychological(signs []string) pkg.RiskLevel {
	if len(signs) == 0 {
		return pkg.RiskLow
	}
	for _, s := range signs {
		for _, kw := range severePsychKeywords {
			if s == kw {
				return pkg.RiskCritical
			}
		}
	}
	for _, s := range signs {
		for _, kw := range elevatedPsychKeywords {
			if s == kw {
				return pkg.RiskHigh
			}
		}
	}
	return pkg.RiskModerate
}

func alertReason(cat pkg.RiskCategory, level pkg.RiskLevel, in Inputs, daysPostSurgery int) string {
	switch cat {
	case pkg.RiskPain:
		return fmt.Sprintf("patient reported pain level %d at %d days post surgery", *in.PainLevel, daysPostSurgery)
	case pkg.RiskInfection:
		return "possible infection signs: " + joinSorted(in.InfectionSigns)
	case pkg.RiskMobility:
		return "mobility concerns: " + joinSorted(in.MobilityIssues)
	case pkg.RiskMedication:
		return "medication concerns: " + joinSorted(in.MedicationConcerns)
	case pkg.RiskPsychological:
		return "psychological distress signs: " + joinSorted(in.PsychologicalSigns)
	}
	return fmt.Sprintf("%s risk at level %s", cat, level)
}

func joinSorted(vs []string) string {
	out := append([]string(nil), vs...)
	sort.Strings(out)
	return strings.Join(out, ", ")
}

func concreteValues(vs []string) []string {
	var out []string
	for _, v := range vs {
		if strings.ToLower(v) != pkg.ListNone {
			out = append(out, v)
		}
	}
	return out
}
