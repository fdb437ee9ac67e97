package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentSatisfiedThresholds(t *testing.T) {
	rules := PaymentRules{
		FixedEnabled:     true,
		FixedAmount:      120,
		HourlyEnabled:    true,
		HourlyAmount:     45,
		PerDeviceEnabled: true,
		PerDeviceAmount:  30,
	}

	cases := []struct {
		name      string
		candidate CandidatePayment
		want      bool
	}{
		{"fixed above", CandidatePayment{Type: PaymentFixed, BaseAmount: 150}, true},
		{"fixed at boundary", CandidatePayment{Type: PaymentFixed, BaseAmount: 120}, true},
		{"fixed below", CandidatePayment{Type: PaymentFixed, BaseAmount: 119.99}, false},
		{"hourly at boundary", CandidatePayment{Type: PaymentHourly, BaseAmount: 45}, true},
		{"hourly below", CandidatePayment{Type: PaymentHourly, BaseAmount: 44}, false},
		{"per device above", CandidatePayment{Type: PaymentPerDevice, BaseAmount: 32}, true},
		{"per device below", CandidatePayment{Type: PaymentPerDevice, BaseAmount: 29}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PaymentSatisfied(tc.candidate, rules))
		})
	}
}

func TestPaymentSatisfiedDisabledType(t *testing.T) {
	rules := PaymentRules{HourlyEnabled: true, HourlyAmount: 40}

	assert.False(t, PaymentSatisfied(CandidatePayment{Type: PaymentFixed, BaseAmount: 1000}, rules))
	assert.True(t, PaymentSatisfied(CandidatePayment{Type: PaymentHourly, BaseAmount: 40}, rules))
}

func TestPaymentSatisfiedUnknownType(t *testing.T) {
	rules := PaymentRules{FixedEnabled: true}
	assert.False(t, PaymentSatisfied(CandidatePayment{Type: "bonus", BaseAmount: 999}, rules))
}

func TestPaymentSatisfiedBlended(t *testing.T) {
	rules := PaymentRules{
		BlendedEnabled:     true,
		FirstHourRate:      50,
		AdditionalHourRate: 35,
	}
	candidate := CandidatePayment{
		Type:             PaymentBlended,
		BaseAmount:       100,
		BaseUnits:        2,
		AdditionalAmount: 70,
		AdditionalUnits:  2,
	}

	assert.True(t, PaymentSatisfied(candidate, rules), "effective rate 50 meets first-hour rate 50")

	rules.FirstHourRate = 51
	assert.False(t, PaymentSatisfied(candidate, rules), "effective rate 50 misses first-hour rate 51")
}

func TestPaymentSatisfiedBlendedZeroUnits(t *testing.T) {
	rules := PaymentRules{BlendedEnabled: true, FirstHourRate: 10, AdditionalHourRate: 10}
	candidate := CandidatePayment{Type: PaymentBlended, BaseAmount: 100, BaseUnits: 0, AdditionalAmount: 50, AdditionalUnits: 2}

	// Defective candidate data must be unsatisfied, never a panic.
	assert.NotPanics(t, func() {
		assert.False(t, PaymentSatisfied(candidate, rules))
	})
}
