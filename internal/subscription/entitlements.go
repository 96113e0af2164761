package subscription

import (
	"math"
	"time"
)

// DenialCode is the machine-readable reason a gate is closed. The front-end
// branches on these strings.
type DenialCode string

const (
	CodeConversationLimitReached DenialCode = "CONVERSATION_LIMIT_REACHED"
	CodeWaitingFamilyResponse    DenialCode = "WAITING_FAMILY_RESPONSE"
	CodeJobExpired               DenialCode = "JOB_EXPIRED"
	CodeJobLimitReached          DenialCode = "JOB_LIMIT_REACHED"
	CodeBoostLimitReached        DenialCode = "BOOST_LIMIT_REACHED"
	CodeBoostNotAvailable        DenialCode = "BOOST_NOT_AVAILABLE"
	CodeNoActiveCycle            DenialCode = "NO_ACTIVE_CYCLE"
	CodePlanNotEntitled          DenialCode = "PLAN_NOT_ENTITLED"
)

var denialReasons = map[DenialCode]string{
	CodeConversationLimitReached: "Esta vaga atingiu o limite de conversas do seu plano. Assine o Cuidly Plus para conversar com mais babás.",
	CodeWaitingFamilyResponse:    "Aguarde a resposta da família antes de enviar uma nova mensagem.",
	CodeJobExpired:               "Esta vaga expirou e não aceita novas conversas.",
	CodeJobLimitReached:          "Você atingiu o limite de vagas ativas do seu plano.",
	CodeBoostLimitReached:        "Você já utilizou o boost disponível neste período.",
	CodeBoostNotAvailable:        "O boost não está disponível no seu plano.",
	CodeNoActiveCycle:            "Sua assinatura não possui um ciclo de cobrança ativo.",
	CodePlanNotEntitled:          "Seu plano não permite esta ação.",
}

// Reason returns the Portuguese message shown for the code.
func (c DenialCode) Reason() string { return denialReasons[c] }

const (
	day        = 24 * time.Hour
	boostCycle = 7 * day
)

func JobLimit(p Plan) int               { return FeaturesFor(p).MaxActiveJobs }
func MaxConversationsPerJob(p Plan) int { return FeaturesFor(p).MaxConversationsPerJob }
func JobExpirationDays(p Plan) int      { return FeaturesFor(p).JobExpirationDays }
func ReviewLimit(p Plan) int            { return FeaturesFor(p).ReviewLimit }

// VisibleReviews caps total at the plan's review limit.
func VisibleReviews(p Plan, total int) int {
	limit := ReviewLimit(p)
	if limit == Unlimited || total < limit {
		return max(total, 0)
	}
	return limit
}

type JobCreationDecision struct {
	CanCreate bool       `json:"canCreate"`
	Code      DenialCode `json:"code,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	JobsUsed  int        `json:"jobsUsed"`
	JobLimit  int        `json:"jobLimit"`
}

// CanCreateJob checks the active job count against the plan cap.
func CanCreateJob(p Plan, activeJobs int) JobCreationDecision {
	d := JobCreationDecision{CanCreate: true, JobsUsed: activeJobs, JobLimit: JobLimit(p)}
	if !withinLimit(activeJobs, d.JobLimit) {
		d.deny(CodeJobLimitReached)
	}
	return d
}

func (d *JobCreationDecision) deny(c DenialCode) {
	d.CanCreate, d.Code, d.Reason = false, c, c.Reason()
}

type ExpirationStatus struct {
	IsExpired        bool       `json:"isExpired"`
	DaysRemaining    int        `json:"daysRemaining"`
	DaysSinceCreated int        `json:"daysSinceCreated"`
	ExpirationDays   int        `json:"expirationDays"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	Code             DenialCode `json:"code,omitempty"`
	Reason           string     `json:"reason,omitempty"`
}

// IsJobExpired evaluates the job owner's expiration window. Whole days are
// counted, so a job exactly expirationDays old is still open and expires on
// the following day.
func IsJobExpired(ownerPlan Plan, createdAt, now time.Time) ExpirationStatus {
	expDays := JobExpirationDays(ownerPlan)
	since := int(math.Floor(now.Sub(createdAt).Hours() / 24))
	if since < 0 {
		since = 0
	}

	st := ExpirationStatus{
		DaysSinceCreated: since,
		ExpirationDays:   expDays,
		DaysRemaining:    max(0, expDays-since),
		ExpiresAt:        createdAt.Add(time.Duration(expDays+1) * day),
		IsExpired:        since > expDays,
	}
	if st.IsExpired {
		st.Code, st.Reason = CodeJobExpired, CodeJobExpired.Reason()
	}
	return st
}

// ConversationCheck carries what is known about a job when someone tries to
// open a conversation on it. OwnerPlan is the plan of the family that posted
// the job; it governs both expiry and the per-job cap.
type ConversationCheck struct {
	OwnerPlan             Plan
	JobCreatedAt          time.Time
	ExistingConversations int
	// AlreadyConnected is set when a conversation with the same recipient
	// already exists for the job.
	AlreadyConnected bool
	Now              time.Time
}

type ConversationDecision struct {
	CanStart          bool       `json:"canStart"`
	Code              DenialCode `json:"code,omitempty"`
	Reason            string     `json:"reason,omitempty"`
	ConversationsUsed int        `json:"conversationsUsed"`
	ConversationLimit int        `json:"conversationLimit"`
}

func CanStartConversationForJob(c ConversationCheck) ConversationDecision {
	d := ConversationDecision{
		CanStart:          true,
		ConversationsUsed: c.ExistingConversations,
		ConversationLimit: MaxConversationsPerJob(c.OwnerPlan),
	}

	if IsJobExpired(c.OwnerPlan, c.JobCreatedAt, c.Now).IsExpired {
		d.deny(CodeJobExpired)
		return d
	}
	if c.AlreadyConnected {
		return d
	}
	if !withinLimit(c.ExistingConversations, d.ConversationLimit) {
		d.deny(CodeConversationLimitReached)
	}
	return d
}

func (d *ConversationDecision) deny(c DenialCode) {
	d.CanStart, d.Code, d.Reason = false, c, c.Reason()
}

// MessageCheck describes a conversation from the sender's side. Plan is the
// sender's plan.
type MessageCheck struct {
	SenderPlan          Plan
	NannyMessageCount   int
	FamilyResponseCount int
}

type MessageDecision struct {
	CanSend             bool       `json:"canSend"`
	Code                DenialCode `json:"code,omitempty"`
	Reason              string     `json:"reason,omitempty"`
	NannyMessageCount   int        `json:"nannyMessageCount"`
	FamilyResponseCount int        `json:"familyResponseCount"`
}

// CanNannySendMessage gates free-tier nannies to one unanswered message at a
// time: a new message is allowed once the family has replied at least as many
// times as the nanny has written. Families and paid nannies are never gated.
// A plan outside the enum may not send at all.
func CanNannySendMessage(c MessageCheck) MessageDecision {
	d := MessageDecision{
		CanSend:             true,
		NannyMessageCount:   c.NannyMessageCount,
		FamilyResponseCount: c.FamilyResponseCount,
	}

	if !c.SenderPlan.Valid() {
		d.CanSend = false
		d.Code, d.Reason = CodePlanNotEntitled, CodePlanNotEntitled.Reason()
		return d
	}

	f := FeaturesFor(c.SenderPlan)
	if f.Audience == AudienceFamily || f.UnlimitedMessages {
		return d
	}
	if c.NannyMessageCount > 0 && c.FamilyResponseCount < c.NannyMessageCount {
		d.CanSend = false
		d.Code, d.Reason = CodeWaitingFamilyResponse, CodeWaitingFamilyResponse.Reason()
	}
	return d
}

// BoostCheck holds the boost history relevant to the owner's plan. Families
// supply the billing cycle and the boosts counted inside it; nannies supply
// the time of their most recent boost.
type BoostCheck struct {
	Plan               Plan
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	BoostsInPeriod     int
	LastBoostAt        *time.Time
	Now                time.Time
}

type BoostDecision struct {
	CanUse        bool       `json:"canUse"`
	Code          DenialCode `json:"code,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	NextAvailable *time.Time `json:"nextAvailable,omitempty"`
	BoostsUsed    int        `json:"boostsUsed"`
	BoostLimit    int        `json:"boostLimit"`
}

func CanUseBoost(c BoostCheck) BoostDecision {
	f := FeaturesFor(c.Plan)
	d := BoostDecision{CanUse: true, BoostLimit: f.BoostsPerWindow}

	switch f.BoostWindow {
	case BoostPerBillingCycle:
		if c.CurrentPeriodStart == nil || c.CurrentPeriodEnd == nil {
			d.deny(CodeNoActiveCycle)
			return d
		}
		d.BoostsUsed = c.BoostsInPeriod
		if c.BoostsInPeriod >= f.BoostsPerWindow {
			d.deny(CodeBoostLimitReached)
			next := *c.CurrentPeriodEnd
			d.NextAvailable = &next
		}
	case BoostRollingWeek:
		if c.LastBoostAt == nil {
			return d
		}
		next := c.LastBoostAt.Add(boostCycle)
		if c.Now.Before(next) {
			d.BoostsUsed = 1
			d.deny(CodeBoostLimitReached)
			d.NextAvailable = &next
		}
	default:
		d.deny(CodeBoostNotAvailable)
	}
	return d
}

func (d *BoostDecision) deny(c DenialCode) {
	d.CanUse, d.Code, d.Reason = false, c, c.Reason()
}

func withinLimit(used, limit int) bool {
	return limit == Unlimited || used < limit
}
