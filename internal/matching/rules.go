package matching

import (
	"fmt"
	"strings"
)

// Rule names a hard elimination filter.
type Rule string

const (
	RuleMandatoryRequirement Rule = "MANDATORY_REQUIREMENT"
	RulePets                 Rule = "PETS"
	RuleSpecialNeeds         Rule = "SPECIAL_NEEDS"
	RuleNannyType            Rule = "NANNY_TYPE"
	RuleContractRegime       Rule = "CONTRACT_REGIME"
	RuleChildCount           Rule = "CHILD_COUNT"
	RuleDistance             Rule = "DISTANCE"
)

// Requirement tags checked against profile flags. Any other tag is looked up
// in the nanny's certifications.
var flagRequirements = map[string]func(NannyProfile) bool{
	"VERIFIED_DOCUMENT":        func(n NannyProfile) bool { return n.Verification.DocumentVerified },
	"BACKGROUND_CHECK":         func(n NannyProfile) bool { return n.Verification.BackgroundChecked },
	"VERIFIED_REFERENCES":      func(n NannyProfile) bool { return n.Verification.ReferencesVerified },
	"DRIVER_LICENSE":           func(n NannyProfile) bool { return n.HasDriverLicense },
	"SPECIAL_NEEDS_EXPERIENCE": func(n NannyProfile) bool { return n.HasSpecialNeedsExperience },
}

// specializedNeeds are the conditions that require prior special-needs
// experience. Needs outside the set (allergies, diet) do not eliminate.
var specializedNeeds = map[string]struct{}{
	"AUTISM":                  {},
	"ADHD":                    {},
	"DOWN_SYNDROME":           {},
	"CEREBRAL_PALSY":          {},
	"PHYSICAL_DISABILITY":     {},
	"INTELLECTUAL_DISABILITY": {},
	"VISUAL_IMPAIRMENT":       {},
	"HEARING_IMPAIRMENT":      {},
}

type violation struct {
	rule   Rule
	reason string
}

type elimination struct {
	violations []violation
	distanceKm *float64
}

// eliminate runs every rule in order and records each failure.
func eliminate(in Input) elimination {
	var e elimination
	add := func(r Rule, format string, args ...interface{}) {
		e.violations = append(e.violations, violation{rule: r, reason: fmt.Sprintf(format, args...)})
	}

	for _, tag := range in.Job.MandatoryRequirements {
		if !meetsRequirement(in.Nanny, tag) {
			add(RuleMandatoryRequirement, "Requisito obrigatório não atendido: %s", tag)
		}
	}

	if in.Family.HasPets && in.Nanny.PetsComfort == PetsNo {
		add(RulePets, "A família possui animais de estimação e a babá não aceita")
	}

	if !in.Nanny.HasSpecialNeedsExperience {
		for _, c := range in.Children {
			if needsSpecializedCare(c) {
				add(RuleSpecialNeeds, "Criança com necessidades especiais exige experiência que a babá não possui")
				break
			}
		}
	}

	if disjoint(in.Family.NannyTypes, in.Nanny.NannyTypes) {
		add(RuleNannyType, "Tipo de babá incompatível com o procurado pela família")
	}
	if disjoint(in.Family.ContractRegimes, in.Nanny.ContractRegimes) {
		add(RuleContractRegime, "Regime de contratação incompatível")
	}

	if n := childCount(in); in.Nanny.MaxChildren != nil && n > *in.Nanny.MaxChildren {
		add(RuleChildCount, "A babá atende até %d criança(s), a vaga tem %d", *in.Nanny.MaxChildren, n)
	}

	switch {
	case in.Family.Location != nil && in.Nanny.Location != nil:
		d := DistanceKm(*in.Family.Location, *in.Nanny.Location)
		e.distanceKm = &d
		if in.Nanny.MaxTravelDistanceKm != nil && d > *in.Nanny.MaxTravelDistanceKm {
			add(RuleDistance, "Distância de %.1f km excede o limite de %.1f km da babá", d, *in.Nanny.MaxTravelDistanceKm)
		}
	case in.Job.RequiresLocation:
		add(RuleDistance, "Localização obrigatória não informada")
	}

	return e
}

func meetsRequirement(n NannyProfile, tag string) bool {
	key := normalize(tag)
	if check, ok := flagRequirements[key]; ok {
		return check(n)
	}
	return contains(n.Certifications, key)
}

func needsSpecializedCare(c ChildData) bool {
	if !c.HasSpecialNeeds {
		return false
	}
	// Flagged without a type: severity unknown, treat as specialised.
	if len(c.SpecialNeedsTypes) == 0 {
		return true
	}
	for _, t := range c.SpecialNeedsTypes {
		if _, ok := specializedNeeds[normalize(t)]; ok {
			return true
		}
	}
	return false
}

func childCount(in Input) int {
	if len(in.Children) > 0 {
		return len(in.Children)
	}
	if len(in.Job.ChildIDs) > 0 {
		return len(in.Job.ChildIDs)
	}
	return in.Family.NumberOfChildren
}

// disjoint reports whether both sets are declared and share nothing.
func disjoint(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, x := range a {
		if contains(b, x) {
			return false
		}
	}
	return true
}

func contains(set []string, v string) bool {
	v = normalize(v)
	for _, s := range set {
		if normalize(s) == v {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
