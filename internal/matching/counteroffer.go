package matching

import "time"

// MatchResult is the outcome of evaluating one candidate work order against
// a cron's rules. Derived per evaluation, never stored by the engine.
type MatchResult struct {
	PaymentSatisfied  bool
	ScheduleSatisfied bool
}

// Matched reports whether the work order can be requested as-is.
func (r MatchResult) Matched() bool {
	return r.PaymentSatisfied && r.ScheduleSatisfied
}

// Evaluate runs the payment and schedule checks for a single candidate.
func Evaluate(window ServiceWindow, payment CandidatePayment, calendar CalendarRules, rules PaymentRules, committed []CommittedInterval) MatchResult {
	return MatchResult{
		PaymentSatisfied:  PaymentSatisfied(payment, rules),
		ScheduleSatisfied: ScheduleSatisfied(window, calendar, committed),
	}
}

// PaymentProposal mirrors the candidate's payment type with the provider's
// configured rates substituted, preserving the candidate's unit counts.
type PaymentProposal struct {
	Type             PaymentType `json:"type"`
	BaseAmount       float64     `json:"base_amount"`
	BaseUnits        float64     `json:"base_units,omitempty"`
	AdditionalAmount float64     `json:"additional_amount,omitempty"`
	AdditionalUnits  float64     `json:"additional_units,omitempty"`
}

// ScheduleProposal carries the alternative slot. Start and End are UTC;
// LocalStart and LocalEnd render the same instants in the work order's own
// declared timezone, which is what the marketplace displays to the buyer.
type ScheduleProposal struct {
	Mode       WindowMode `json:"mode"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end,omitempty"`
	LocalStart string     `json:"local_start"`
	LocalEnd   string     `json:"local_end,omitempty"`
}

// CounterOffer is the proposal sent instead of a plain acceptance. Either
// section may be absent.
type CounterOffer struct {
	Payment  *PaymentProposal  `json:"payment,omitempty"`
	Schedule *ScheduleProposal `json:"schedule,omitempty"`
	Note     string            `json:"note"`
}

// Empty reports whether the offer proposes nothing and must not be sent.
func (o CounterOffer) Empty() bool {
	return o.Payment == nil && o.Schedule == nil
}

const (
	notePayment  = "Counter-offer: pay adjusted to configured minimum rates."
	noteSchedule = "Counter-offer: proposing an alternative service window."
	noteCombined = "Counter-offer: pay adjusted to configured minimum rates and an alternative service window proposed."
)

const localTimeLayout = "2006-01-02T15:04:05-07:00"

// BuildCounterOffer assembles the proposal for a failed match. A nil slot
// after an exhausted search omits the schedule section entirely; the caller
// then either sends a payment-only offer or nothing.
func BuildCounterOffer(result MatchResult, candidate CandidatePayment, rules PaymentRules, window ServiceWindow, slot *TimeInterval) CounterOffer {
	var offer CounterOffer

	if !result.PaymentSatisfied {
		offer.Payment = proposePayment(candidate, rules)
	}
	if !result.ScheduleSatisfied && slot != nil {
		offer.Schedule = proposeSchedule(window, *slot)
	}

	switch {
	case !result.PaymentSatisfied && !result.ScheduleSatisfied:
		offer.Note = noteCombined
	case !result.PaymentSatisfied:
		offer.Note = notePayment
	case !result.ScheduleSatisfied:
		offer.Note = noteSchedule
	}
	return offer
}

func proposePayment(candidate CandidatePayment, rules PaymentRules) *PaymentProposal {
	proposal := &PaymentProposal{
		Type:             candidate.Type,
		BaseUnits:        candidate.BaseUnits,
		AdditionalAmount: candidate.AdditionalAmount,
		AdditionalUnits:  candidate.AdditionalUnits,
	}
	switch candidate.Type {
	case PaymentFixed:
		proposal.BaseAmount = rules.FixedAmount
	case PaymentHourly:
		proposal.BaseAmount = rules.HourlyAmount
	case PaymentPerDevice:
		proposal.BaseAmount = rules.PerDeviceAmount
	case PaymentBlended:
		proposal.BaseAmount = rules.FirstHourRate
		proposal.AdditionalAmount = rules.AdditionalHourRate
	default:
		return nil
	}
	return proposal
}

func proposeSchedule(window ServiceWindow, slot TimeInterval) *ScheduleProposal {
	loc := window.In()
	if window.Mode == ModeExact {
		return &ScheduleProposal{
			Mode:       ModeExact,
			Start:      slot.Start,
			LocalStart: slot.Start.In(loc).Format(localTimeLayout),
		}
	}
	end := slot.End
	return &ScheduleProposal{
		Mode:       ModeBetween,
		Start:      slot.Start,
		End:        &end,
		LocalStart: slot.Start.In(loc).Format(localTimeLayout),
		LocalEnd:   slot.End.In(loc).Format(localTimeLayout),
	}
}
