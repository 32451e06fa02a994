package nlu

import (
	"regexp"
	"strings"

	"preop-callbot/pkg"
)

// fallback.go is the deterministic keyword extractor used whenever the
// language-model path fails or is unavailable. It never fails; the worst
// case is the unknown intent with empty entities.
//
// Rules are a flat ordered table of (matcher, producer) entries, one per
// intent family. The first rule that produces a result wins, so the more
// specific families sit above the bare confirmation rule.

var painScoreRe = regexp.MustCompile(`(?:^|[^0-9.])(10|[0-9])(?:[^0-9.]|$)`)

var (
	yesWords = []string{"yes", "yeah", "yep", "sure", "ok", "okay", "correct", "right", "absolutely", "definitely"}
	noWords  = []string{"no", "nope", "nah", "wrong", "incorrect", "not really"}

	// Removal/clearing words that turn a bare confirmation into a home
	// safety answer.
	clearingWords = []string{"removed", "cleared", "moved", "got rid", "taken up", "picked up", "put away"}

	activityWords = []string{"walking", "walk", "standing", "stand up", "stairs", "bending", "bend", "dressing", "bathing", "shower", "sleeping", "driving", "sitting down"}

	relationWords = []string{"wife", "husband", "spouse", "partner", "daughter", "son", "mother", "father", "sister", "brother", "friend", "neighbor", "family", "caregiver", "aide"}

	safetyWords = []string{"trip hazard", "hazard", "rug", "rugs", "cord", "cords", "clutter", "walkway", "handrail", "grab bar", "night light"}

	equipmentWords = []string{"toilet seat", "grabber", "reacher", "walker", "shower chair", "crutches", "cane", "commode", "equipment"}

	bloodThinnerWords = []string{"aspirin", "warfarin", "coumadin", "eliquis", "apixaban", "xarelto", "rivaroxaban", "plavix", "clopidogrel", "heparin", "blood thinner", "blood thinners", "blood-thinning"}

	allergyWords  = []string{"allergy", "allergies", "allergic", "penicillin", "sulfa", "latex"}
	allergenWords = []string{"penicillin", "sulfa", "latex"}

	conditionWords = []string{"diabetes", "diabetic", "heart", "blood pressure", "hypertension", "asthma", "copd", "kidney", "thyroid", "arthritis"}

	negationWords = []string{"no", "none", "nothing", "don't", "do not", "not taking", "haven't", "never"}
)

type fallbackRule struct {
	name    string
	produce func(low string, report pkg.Report) (pkg.NLUResult, bool)
}

var fallbackRules = []fallbackRule{
	{name: "pain_score", produce: matchPain},
	{name: "medication", produce: matchMedication},
	{name: "home_safety", produce: matchHomeSafety},
	{name: "equipment", produce: matchEquipment},
	{name: "activities", produce: matchActivities},
	{name: "helper", produce: matchHelper},
	{name: "confirmation", produce: matchConfirmation},
}

// FallbackExtract runs the rule table over one utterance.
func FallbackExtract(utterance string, report pkg.Report) pkg.NLUResult {
	low := strings.ToLower(strings.TrimSpace(utterance))
	for _, rule := range fallbackRules {
		if res, ok := rule.produce(low, report); ok {
			return res
		}
	}
	return pkg.NLUResult{Intent: pkg.IntentUnknown}
}

func matchPain(low string, _ pkg.Report) (pkg.NLUResult, bool) {
	m := painScoreRe.FindStringSubmatch(low)
	if m == nil {
		return pkg.NLUResult{}, false
	}
	level := 0
	for _, c := range m[1] {
		level = level*10 + int(c-'0')
	}
	if level > 10 {
		return pkg.NLUResult{}, false
	}
	return pkg.NLUResult{
		Intent:   pkg.IntentReportPain,
		Entities: pkg.Entities{PainLevel: &level},
	}, true
}

// matchMedication covers the three medication sub-families. A negative
// answer that names a family fills that family with the "none" sentinel; a
// negative answer that names none is resolved against whichever sub-field is
// still empty in the report, in blood thinners, allergies, conditions order.
func matchMedication(low string, report pkg.Report) (pkg.NLUResult, bool) {
	meds := containedWords(low, bloodThinnerWords)
	allergyHit := containsAny(low, allergyWords)
	conditions := containedWords(low, conditionWords)
	genericMention := strings.Contains(low, "medication") || strings.Contains(low, "medicine") || strings.Contains(low, "pills")
	if len(meds) == 0 && !allergyHit && len(conditions) == 0 && !genericMention {
		return pkg.NLUResult{}, false
	}

	negated := containsAny(low, negationWords)
	var e pkg.Entities
	switch {
	case len(meds) > 0:
		if negated {
			e.Medications = []string{pkg.ListNone}
		} else {
			e.Medications = meds
		}
	case allergyHit:
		if allergens := containedWords(low, allergenWords); !negated && len(allergens) > 0 {
			e.Allergies = allergens
		} else if negated {
			e.Allergies = []string{pkg.ListNone}
		} else {
			e.Allergies = []string{"unspecified allergy"}
		}
	case len(conditions) > 0:
		if negated {
			e.Conditions = []string{pkg.ListNone}
		} else {
			e.Conditions = conditions
		}
	default:
		// Generic medication mention with no named family: a negative answer
		// fills the first unanswered sub-field.
		if !negated {
			return pkg.NLUResult{}, false
		}
		switch nextEmptyMedicationField(report.Preparation) {
		case "allergies":
			e.Allergies = []string{pkg.ListNone}
		case "conditions":
			e.Conditions = []string{pkg.ListNone}
		default:
			e.Medications = []string{pkg.ListNone}
		}
	}
	return pkg.NLUResult{Intent: pkg.IntentMedication, Entities: e}, true
}

func matchHomeSafety(low string, _ pkg.Report) (pkg.NLUResult, bool) {
	if !containsAny(low, safetyWords) {
		return pkg.NLUResult{}, false
	}
	addressed := containsAny(low, clearingWords) || containsAny(low, yesWords)
	if containsAny(low, []string{"haven't", "not yet", "still have", "didn't"}) {
		addressed = false
	}
	return pkg.NLUResult{
		Intent:   pkg.IntentHomeSafety,
		Entities: pkg.Entities{HazardsAddressed: &addressed},
	}, true
}

func matchEquipment(low string, _ pkg.Report) (pkg.NLUResult, bool) {
	if !containsAny(low, equipmentWords) {
		return pkg.NLUResult{}, false
	}
	status := pkg.EquipmentObtained
	switch {
	case containsAny(low, []string{"don't need", "do not need", "no need"}):
		status = pkg.EquipmentNone
	case containsAny(low, []string{"need", "haven't", "not yet", "still", "waiting", "ordered"}):
		status = pkg.EquipmentNeeded
	}
	return pkg.NLUResult{
		Intent:   pkg.IntentEquipment,
		Entities: pkg.Entities{EquipmentStatus: status},
	}, true
}

func matchActivities(low string, _ pkg.Report) (pkg.NLUResult, bool) {
	acts := containedWords(low, activityWords)
	if len(acts) == 0 {
		return pkg.NLUResult{}, false
	}
	return pkg.NLUResult{
		Intent:   pkg.IntentDifficultActivities,
		Entities: pkg.Entities{Activities: acts},
	}, true
}

func matchHelper(low string, _ pkg.Report) (pkg.NLUResult, bool) {
	rels := containedWords(low, relationWords)
	if len(rels) == 0 {
		return pkg.NLUResult{}, false
	}
	return pkg.NLUResult{
		Intent:   pkg.IntentIdentifyHelper,
		Entities: pkg.Entities{Helper: rels[0]},
	}, true
}

func matchConfirmation(low string, _ pkg.Report) (pkg.NLUResult, bool) {
	switch {
	case containsAny(low, yesWords):
		// A confirmation that also mentions removal or clearing work is a
		// home safety answer, not a bare yes.
		if containsAny(low, clearingWords) {
			addressed := true
			return pkg.NLUResult{
				Intent:   pkg.IntentHomeSafety,
				Entities: pkg.Entities{HazardsAddressed: &addressed},
			}, true
		}
		return pkg.NLUResult{Intent: pkg.IntentConfirmYes}, true
	case containsAny(low, noWords):
		return pkg.NLUResult{Intent: pkg.IntentConfirmNo}, true
	}
	return pkg.NLUResult{}, false
}

func nextEmptyMedicationField(prep pkg.PreparationReport) string {
	switch {
	case len(prep.BloodThinningMedications) == 0:
		return "blood_thinners"
	case len(prep.AllergiesList) == 0:
		return "allergies"
	case len(prep.MedicalConditionsList) == 0:
		return "conditions"
	}
	return ""
}

func containsAny(low string, words []string) bool {
	for _, w := range words {
		if containsWord(low, w) {
			return true
		}
	}
	return false
}

func containedWords(low string, words []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range words {
		if containsWord(low, w) && !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// containsWord matches on word boundaries so that "no" does not fire inside
// "know" or "normal".
func containsWord(low, word string) bool {
	idx := 0
	for {
		i := strings.Index(low[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(low[start-1])
		afterOK := end == len(low) || !isWordChar(low[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}
