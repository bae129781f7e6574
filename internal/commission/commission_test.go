package commission

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-engine/internal/jurisdiction"
)

func TestAssessDubaiOverCap(t *testing.T) {
	a := Assess(Request{Price: 2_000_000, JurisdictionCode: "AE-DU", RatePercent: 2.5, Currency: "AED"})

	assert.Equal(t, 50000.0, a.ComputedAmount)
	assert.Equal(t, 2.0, a.CapPercent)
	assert.False(t, a.IsCompliant)
	assert.Equal(t, []Warning{WarningRateExceedsCap}, a.Warnings)
	assert.Contains(t, string(a.Warnings[0]), "exceeds cap")
	assert.Equal(t, "AED", a.Currency)
	assert.False(t, a.DegradedMode)
}

func TestAssessCompliantRate(t *testing.T) {
	a := Assess(Request{Price: 1_500_000, JurisdictionCode: "AE-DU", RatePercent: 2, Currency: "AED"})

	assert.True(t, a.IsCompliant)
	assert.Empty(t, a.Warnings)
	assert.Equal(t, 30000.0, a.ComputedAmount)
	assert.Equal(t, 30000.0, a.MaxPermittedAmount)
	assert.Equal(t, 1500.0, a.VATAmount)
	assert.Equal(t, 31500.0, a.TotalWithVAT)
}

func TestAssessRiyadhHigherCap(t *testing.T) {
	a := Assess(Request{Price: 1_000_000, JurisdictionCode: "SA-RY", RatePercent: 2.5, Currency: "SAR"})

	assert.True(t, a.IsCompliant)
	assert.Equal(t, 2.5, a.CapPercent)
	assert.Equal(t, 25000.0, a.ComputedAmount)
	assert.Equal(t, 3750.0, a.VATAmount)
}

func TestAssessBelowFloorAndOverCapAreIndependent(t *testing.T) {
	reg, err := jurisdiction.Load(strings.NewReader(`
jurisdictions:
  - {code: ZZ-LO, authority: Low Cap Authority, commission_cap_percent: 0.5}
`))
	require.NoError(t, err)

	a := AssessWith(reg, Request{Price: 100_000, JurisdictionCode: "ZZ-LO", RatePercent: 0.75})
	assert.False(t, a.IsCompliant)
	assert.Equal(t, []Warning{WarningRateExceedsCap, WarningRateBelowFloor}, a.Warnings)
}

func TestAssessBelowFloorStillCompliant(t *testing.T) {
	a := Assess(Request{Price: 800_000, JurisdictionCode: "AE-DU", RatePercent: 0.5})

	assert.True(t, a.IsCompliant)
	assert.Equal(t, []Warning{WarningRateBelowFloor}, a.Warnings)
	assert.Equal(t, 4000.0, a.ComputedAmount)
}

func TestAssessInvalidPriceShortCircuits(t *testing.T) {
	for _, price := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		a := Assess(Request{Price: price, JurisdictionCode: "AE-DU", RatePercent: 2})

		assert.False(t, a.IsCompliant)
		assert.Equal(t, []Warning{WarningInvalidPrice}, a.Warnings)
		assert.Zero(t, a.ComputedAmount)
	}
}

func TestAssessUnknownJurisdictionUsesDegradedDefault(t *testing.T) {
	a := Assess(Request{Price: 1_000_000, JurisdictionCode: "XX-YY", RatePercent: 1.5})

	assert.True(t, a.DegradedMode)
	assert.Equal(t, DefaultCapPercent, a.CapPercent)
	assert.True(t, a.IsCompliant)
	assert.Equal(t, []Warning{WarningDefaultCapApplied}, a.Warnings)
	assert.Zero(t, a.VATPercent)
	assert.Equal(t, 15000.0, a.ComputedAmount)
}

func TestAssessOutOfRangeRatesNeverPanic(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want []Warning
	}{
		{"negative", -1, []Warning{WarningRateOutOfRange, WarningRateBelowFloor}},
		{"above hundred", 150, []Warning{WarningRateOutOfRange, WarningRateExceedsCap}},
		{"nan", math.NaN(), []Warning{WarningRateOutOfRange}},
		{"infinite", math.Inf(1), []Warning{WarningRateOutOfRange, WarningRateExceedsCap}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Assessment
			require.NotPanics(t, func() {
				a = Assess(Request{Price: 1_000_000, JurisdictionCode: "AE-DU", RatePercent: tt.rate})
			})
			assert.False(t, a.IsCompliant)
			assert.Equal(t, tt.want, a.Warnings)
			assert.GreaterOrEqual(t, a.ComputedAmount, 0.0)
		})
	}
}

func TestAssessMonotonicInRate(t *testing.T) {
	prevAmount := -1.0
	flips := 0
	prevCompliant := true

	for i := 0; i <= 1000; i++ {
		rate := float64(i) / 10
		a := Assess(Request{Price: 2_000_000, JurisdictionCode: "AE-DU", RatePercent: rate})

		assert.GreaterOrEqual(t, a.ComputedAmount, prevAmount, "rate %.1f", rate)
		prevAmount = a.ComputedAmount

		if prevCompliant && !a.IsCompliant {
			flips++
		}
		assert.False(t, !prevCompliant && a.IsCompliant, "compliance restored at rate %.1f", rate)
		prevCompliant = a.IsCompliant
	}

	assert.Equal(t, 1, flips)
}

func TestAssessCapBoundaryIsInclusive(t *testing.T) {
	at := Assess(Request{Price: 1_000_000, JurisdictionCode: "AE-DU", RatePercent: 2.0})
	over := Assess(Request{Price: 1_000_000, JurisdictionCode: "AE-DU", RatePercent: 2.0001})

	assert.True(t, at.IsCompliant)
	assert.False(t, over.IsCompliant)
}

func TestAssessIsDeterministic(t *testing.T) {
	req := Request{Price: 3_250_000, JurisdictionCode: "QA-DO", RatePercent: 1.75, Currency: "QAR"}
	first := Assess(req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Assess(req))
	}
}

func TestHasWarning(t *testing.T) {
	a := Assessment{Warnings: []Warning{WarningRateBelowFloor}}
	assert.True(t, a.HasWarning(WarningRateBelowFloor))
	assert.False(t, a.HasWarning(WarningRateExceedsCap))
}
