package amortization

import (
	"errors"
	"fmt"
	"math"
)

// MaxTermYears bounds the schedule length (600 monthly periods).
const MaxTermYears = 50

// ErrInvalidInput is returned for negative principal, non-positive or oversized
// term and negative or non-finite rates. Callers get it wrapped with the field
// at fault.
var ErrInvalidInput = errors.New("invalid amortization input")

// Loan describes a fixed-rate mortgage.
type Loan struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
}

// Period is one monthly installment. Index starts at 1.
type Period struct {
	Index            int     `json:"index"`
	Payment          float64 `json:"payment"`
	InterestPortion  float64 `json:"interest_portion"`
	PrincipalPortion float64 `json:"principal_portion"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// Schedule is a full amortization table. Values are kept at full precision;
// rounding for display is left to the caller.
type Schedule struct {
	MonthlyPayment float64  `json:"monthly_payment"`
	Periods        []Period `json:"periods"`
	TotalInterest  float64  `json:"total_interest"`
	TotalPayment   float64  `json:"total_payment"`
}

// Amortize builds the schedule of a fixed-payment annuity loan.
//
// The monthly payment is P·r / (1 − (1+r)^−n) with r the monthly rate and n the
// number of months; a zero rate is handled separately as P/n. The final period
// pays off whatever balance is left, so its principal portion absorbs the
// accumulated floating point residue and the closing balance is exactly zero.
func Amortize(loan Loan) (Schedule, error) {
	if err := validate(loan); err != nil {
		return Schedule{}, err
	}

	n := loan.TermYears * 12
	r := loan.AnnualRatePercent / 100 / 12
	payment := MonthlyPayment(loan.Principal, r, n)
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return Schedule{}, fmt.Errorf("%w: annual rate %g%% overflows the monthly payment", ErrInvalidInput, loan.AnnualRatePercent)
	}

	sched := Schedule{
		MonthlyPayment: payment,
		Periods:        make([]Period, 0, n),
	}

	balance := loan.Principal
	for i := 1; i <= n; i++ {
		interest := balance * r
		principal := payment - interest
		periodPayment := payment

		if i == n {
			principal = balance
			periodPayment = interest + principal
			balance = 0
		} else {
			balance -= principal
		}

		sched.Periods = append(sched.Periods, Period{
			Index:            i,
			Payment:          periodPayment,
			InterestPortion:  interest,
			PrincipalPortion: principal,
			RemainingBalance: balance,
		})
		sched.TotalInterest += interest
		sched.TotalPayment += periodPayment
	}
	if math.IsInf(sched.TotalPayment, 0) {
		return Schedule{}, fmt.Errorf("%w: principal %g overflows the schedule totals", ErrInvalidInput, loan.Principal)
	}

	return sched, nil
}

// MonthlyPayment returns the constant installment for principal p at monthly
// rate r over n months. A rate too small to move 1+r is treated as zero.
func MonthlyPayment(p, r float64, n int) float64 {
	if r == 0 || 1+r == 1 {
		return p / float64(n)
	}
	return p * r / (1 - math.Pow(1+r, -float64(n)))
}

func validate(loan Loan) error {
	switch {
	case math.IsNaN(loan.Principal) || math.IsInf(loan.Principal, 0):
		return fmt.Errorf("%w: principal must be finite", ErrInvalidInput)
	case loan.Principal < 0:
		return fmt.Errorf("%w: principal must be non-negative, got %.2f", ErrInvalidInput, loan.Principal)
	case math.IsNaN(loan.AnnualRatePercent) || math.IsInf(loan.AnnualRatePercent, 0):
		return fmt.Errorf("%w: annual rate must be finite", ErrInvalidInput)
	case loan.AnnualRatePercent < 0:
		return fmt.Errorf("%w: annual rate must be non-negative, got %.4f", ErrInvalidInput, loan.AnnualRatePercent)
	case loan.TermYears <= 0:
		return fmt.Errorf("%w: term must be at least one year, got %d", ErrInvalidInput, loan.TermYears)
	case loan.TermYears > MaxTermYears:
		return fmt.Errorf("%w: term exceeds %d years", ErrInvalidInput, MaxTermYears)
	}
	return nil
}
