package matching

// PaymentType classifies a work order's payment terms.
type PaymentType string

const (
	PaymentFixed     PaymentType = "fixed"
	PaymentHourly    PaymentType = "hourly"
	PaymentPerDevice PaymentType = "per_device"
	PaymentBlended   PaymentType = "blended"
)

// PaymentRules hold a provider's enabled payment types and minimum rates.
// A candidate of a disabled type never satisfies the rules.
type PaymentRules struct {
	FixedEnabled bool
	FixedAmount  float64

	HourlyEnabled bool
	HourlyAmount  float64

	PerDeviceEnabled bool
	PerDeviceAmount  float64

	BlendedEnabled     bool
	FirstHourRate      float64
	AdditionalHourRate float64
}

// CandidatePayment is the payment section of a candidate work order. For
// blended terms the base tier covers the first hours and the additional tier
// the remainder; for the other types only the base tier is meaningful.
type CandidatePayment struct {
	Type             PaymentType
	BaseAmount       float64
	BaseUnits        float64
	AdditionalAmount float64
	AdditionalUnits  float64
}

// PaymentSatisfied reports whether the candidate's terms meet the provider's
// configured minimums. Malformed candidates (unknown type, zero blended
// units) are unsatisfied rather than an error, so one bad record can never
// break a polling run.
func PaymentSatisfied(candidate CandidatePayment, rules PaymentRules) bool {
	switch candidate.Type {
	case PaymentFixed:
		return rules.FixedEnabled && candidate.BaseAmount >= rules.FixedAmount
	case PaymentHourly:
		return rules.HourlyEnabled && candidate.BaseAmount >= rules.HourlyAmount
	case PaymentPerDevice:
		return rules.PerDeviceEnabled && candidate.BaseAmount >= rules.PerDeviceAmount
	case PaymentBlended:
		if !rules.BlendedEnabled {
			return false
		}
		if candidate.BaseUnits == 0 || candidate.AdditionalUnits == 0 {
			return false
		}
		return candidate.BaseAmount/candidate.BaseUnits >= rules.FirstHourRate &&
			candidate.AdditionalAmount/candidate.AdditionalUnits >= rules.AdditionalHourRate
	}
	return false
}
