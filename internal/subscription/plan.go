// Package subscription resolves plan-derived entitlements. Every function is
// pure: callers fetch subscriptions and usage counters and pass them in,
// together with the clock reading to evaluate against.
package subscription

import (
	"errors"
	"fmt"
	"strings"
)

// Unlimited marks a numeric entitlement without a cap.
const Unlimited = -1

var ErrUnknownPlan = errors.New("unknown subscription plan")

// Plan is one of the closed set of subscription tiers. The zero value is not a
// plan and resolves to closed entitlements.
type Plan uint8

const (
	planInvalid Plan = iota
	PlanFamilyFree
	PlanFamilyPlus
	PlanNannyFree
	PlanNannyPro
	planCount
)

var planNames = [planCount]string{
	planInvalid:    "",
	PlanFamilyFree: "FAMILY_FREE",
	PlanFamilyPlus: "FAMILY_PLUS",
	PlanNannyFree:  "NANNY_FREE",
	PlanNannyPro:   "NANNY_PRO",
}

// Plans lists every valid plan in declaration order.
func Plans() []Plan {
	out := make([]Plan, 0, planCount-1)
	for p := PlanFamilyFree; p < planCount; p++ {
		out = append(out, p)
	}
	return out
}

// ParsePlan maps the stored plan identifier to a Plan.
func ParsePlan(s string) (Plan, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for p := PlanFamilyFree; p < planCount; p++ {
		if planNames[p] == key {
			return p, nil
		}
	}
	return planInvalid, fmt.Errorf("%w: %q", ErrUnknownPlan, s)
}

func (p Plan) Valid() bool { return p > planInvalid && p < planCount }

func (p Plan) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Plan(%d)", uint8(p))
	}
	return planNames[p]
}

func (p Plan) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlan, uint8(p))
	}
	return []byte(planNames[p]), nil
}

func (p *Plan) UnmarshalText(b []byte) error {
	parsed, err := ParsePlan(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Audience is the side of the marketplace a plan is sold to.
type Audience uint8

const (
	AudienceNone Audience = iota
	AudienceFamily
	AudienceNanny
)

func (a Audience) String() string {
	switch a {
	case AudienceFamily:
		return "family"
	case AudienceNanny:
		return "nanny"
	default:
		return "none"
	}
}

func (p Plan) Audience() Audience { return FeaturesFor(p).Audience }

// BoostWindow says how boost allotments are rate limited.
type BoostWindow uint8

const (
	BoostNone BoostWindow = iota
	BoostPerBillingCycle
	BoostRollingWeek
)

// PlanFeatures is the entitlement row for one plan. Numeric caps use
// Unlimited for "no cap"; a zero row grants nothing.
type PlanFeatures struct {
	Plan                   Plan        `json:"plan"`
	Audience               Audience    `json:"-"`
	Paid                   bool        `json:"paid"`
	MaxActiveJobs          int         `json:"maxActiveJobs"`
	MaxConversationsPerJob int         `json:"maxConversationsPerJob"`
	JobExpirationDays      int         `json:"jobExpirationDays"`
	ReviewLimit            int         `json:"reviewLimit"`
	BoostsPerWindow        int         `json:"boostsPerWindow"`
	BoostWindow            BoostWindow `json:"-"`
	UnlimitedMessages      bool        `json:"unlimitedMessages"`
	ProfileHighlight       bool        `json:"profileHighlight"`
	ContactInfoVisible     bool        `json:"contactInfoVisible"`
}

// planFeatures has one row per plan; the array length ties it to the enum.
var planFeatures = [planCount]PlanFeatures{
	PlanFamilyFree: {
		Plan:                   PlanFamilyFree,
		Audience:               AudienceFamily,
		MaxActiveJobs:          1,
		MaxConversationsPerJob: 1,
		JobExpirationDays:      7,
		ReviewLimit:            1,
	},
	PlanFamilyPlus: {
		Plan:                   PlanFamilyPlus,
		Audience:               AudienceFamily,
		Paid:                   true,
		MaxActiveJobs:          5,
		MaxConversationsPerJob: Unlimited,
		JobExpirationDays:      30,
		ReviewLimit:            Unlimited,
		BoostsPerWindow:        1,
		BoostWindow:            BoostPerBillingCycle,
		UnlimitedMessages:      true,
		ProfileHighlight:       true,
		ContactInfoVisible:     true,
	},
	PlanNannyFree: {
		Plan:        PlanNannyFree,
		Audience:    AudienceNanny,
		ReviewLimit: 1,
	},
	PlanNannyPro: {
		Plan:               PlanNannyPro,
		Audience:           AudienceNanny,
		Paid:               true,
		ReviewLimit:        Unlimited,
		BoostsPerWindow:    1,
		BoostWindow:        BoostRollingWeek,
		UnlimitedMessages:  true,
		ProfileHighlight:   true,
		ContactInfoVisible: true,
	},
}

// FeaturesFor returns the plan's entitlement row, or the zero row for a
// value outside the enum.
func FeaturesFor(p Plan) PlanFeatures {
	if !p.Valid() {
		return PlanFeatures{}
	}
	return planFeatures[p]
}
