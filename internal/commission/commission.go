package commission

import (
	"math"

	"github.com/shopspring/decimal"

	"realty-engine/internal/jurisdiction"
)

const (
	// DefaultCapPercent is applied only when the jurisdiction is unknown. It is
	// a degraded-mode fallback so the caller always gets a renderable result,
	// not a business rule; assessments using it carry DegradedMode and the
	// WarningDefaultCapApplied warning.
	DefaultCapPercent = 2.0

	// MarketFloorPercent is the rate below which an agreement is flagged as
	// unusually low. It never affects compliance.
	MarketFloorPercent = 1.0
)

// Warning is an advisory attached to an assessment.
type Warning string

const (
	WarningInvalidPrice      Warning = "invalid price"
	WarningRateOutOfRange    Warning = "rate out of range"
	WarningRateExceedsCap    Warning = "rate exceeds cap"
	WarningRateBelowFloor    Warning = "rate below market floor"
	WarningDefaultCapApplied Warning = "default cap applied"
)

var hundred = decimal.NewFromInt(100)

// Request holds the inputs of one assessment.
type Request struct {
	Price            float64
	JurisdictionCode string
	RatePercent      float64
	// Currency is echoed back untouched; no conversion is performed.
	Currency string
}

// Assessment is the compliance verdict for a commission agreement.
type Assessment struct {
	JurisdictionCode     string    `json:"jurisdiction_code"`
	RequestedRatePercent float64   `json:"requested_rate_percent"`
	CapPercent           float64   `json:"cap_percent"`
	ComputedAmount       float64   `json:"computed_amount"`
	MaxPermittedAmount   float64   `json:"max_permitted_amount"`
	VATPercent           float64   `json:"vat_percent"`
	VATAmount            float64   `json:"vat_amount"`
	TotalWithVAT         float64   `json:"total_with_vat"`
	Currency             string    `json:"currency"`
	IsCompliant          bool      `json:"is_compliant"`
	DegradedMode         bool      `json:"degraded_mode"`
	Warnings             []Warning `json:"warnings"`
}

// HasWarning reports whether w was raised.
func (a Assessment) HasWarning(w Warning) bool {
	for _, got := range a.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// Lookuper resolves jurisdiction codes. *jurisdiction.Registry satisfies it.
type Lookuper interface {
	Lookup(code string) (jurisdiction.Rule, error)
}

// Assess evaluates a commission against the embedded jurisdiction table.
func Assess(req Request) Assessment {
	return AssessWith(jurisdiction.Default(), req)
}

// AssessWith evaluates a commission against the given registry. It never
// fails: out-of-domain inputs are reported through warnings and a
// non-compliant verdict because callers may be mid-edit.
func AssessWith(reg Lookuper, req Request) Assessment {
	a := Assessment{
		JurisdictionCode:     req.JurisdictionCode,
		RequestedRatePercent: req.RatePercent,
		CapPercent:           DefaultCapPercent,
		Currency:             req.Currency,
		Warnings:             []Warning{},
	}

	rule, err := reg.Lookup(req.JurisdictionCode)
	if err != nil {
		a.DegradedMode = true
	} else {
		a.JurisdictionCode = rule.Code
		a.CapPercent = rule.CommissionCapPercent
		a.VATPercent = rule.VATPercent
	}

	if !isFinite(req.Price) || req.Price <= 0 {
		a.Warnings = append(a.Warnings, WarningInvalidPrice)
		return a
	}

	price := decimal.NewFromFloat(req.Price)
	a.MaxPermittedAmount = percentOf(price, a.CapPercent).InexactFloat64()

	rateInRange := isFinite(req.RatePercent) && req.RatePercent >= 0 && req.RatePercent <= 100
	if isFinite(req.RatePercent) && req.RatePercent > 0 {
		amount := percentOf(price, req.RatePercent)
		vat := percentOf(amount, a.VATPercent)
		a.ComputedAmount = amount.InexactFloat64()
		a.VATAmount = vat.InexactFloat64()
		a.TotalWithVAT = amount.Add(vat).InexactFloat64()
	}

	a.IsCompliant = rateInRange && req.RatePercent <= a.CapPercent

	if !rateInRange {
		a.Warnings = append(a.Warnings, WarningRateOutOfRange)
	}
	if req.RatePercent > a.CapPercent {
		a.Warnings = append(a.Warnings, WarningRateExceedsCap)
	}
	if req.RatePercent < MarketFloorPercent {
		a.Warnings = append(a.Warnings, WarningRateBelowFloor)
	}
	if a.DegradedMode {
		a.Warnings = append(a.Warnings, WarningDefaultCapApplied)
	}

	return a
}

func percentOf(base decimal.Decimal, pct float64) decimal.Decimal {
	return base.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
