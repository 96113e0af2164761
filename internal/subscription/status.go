package subscription

import (
	"strings"
	"time"
)

// Status is the billing state stored on a subscription row.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusTrialing Status = "TRIALING"
	StatusPastDue  Status = "PAST_DUE"
	StatusCanceled Status = "CANCELED"
	StatusExpired  Status = "EXPIRED"
)

func ParseStatus(s string) Status { return Status(strings.ToUpper(strings.TrimSpace(s))) }

// Subscription is the stored subscription of one nanny or family.
type Subscription struct {
	Plan               Plan       `json:"plan"`
	Status             Status     `json:"status"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd,omitempty"`
}

// FreePlan is the tier every account of the audience falls back to.
func FreePlan(a Audience) Plan {
	switch a {
	case AudienceFamily:
		return PlanFamilyFree
	case AudienceNanny:
		return PlanNannyFree
	default:
		return planInvalid
	}
}

// InCycle reports whether now falls inside [CurrentPeriodStart, CurrentPeriodEnd).
func (s Subscription) InCycle(now time.Time) bool {
	if s.CurrentPeriodStart == nil || s.CurrentPeriodEnd == nil {
		return false
	}
	return !now.Before(*s.CurrentPeriodStart) && now.Before(*s.CurrentPeriodEnd)
}

// EffectivePlan is the plan whose entitlements apply at now. A paid plan
// keeps applying while its status is live and its period has not ended; a
// canceled plan runs to the end of the period already paid for.
func (s Subscription) EffectivePlan(now time.Time) Plan {
	if !s.Plan.Valid() {
		return planInvalid
	}
	if !FeaturesFor(s.Plan).Paid {
		return s.Plan
	}

	free := FreePlan(s.Plan.Audience())
	periodOpen := s.CurrentPeriodEnd == nil || now.Before(*s.CurrentPeriodEnd)

	switch s.Status {
	case StatusActive, StatusTrialing, StatusPastDue:
		if periodOpen {
			return s.Plan
		}
	case StatusCanceled:
		if s.CurrentPeriodEnd != nil && now.Before(*s.CurrentPeriodEnd) {
			return s.Plan
		}
	}
	return free
}
