package milestone

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"realty-engine/internal/calendar"
)

// ErrInvalidInput is returned for plans that cannot be built at all. Converter
// failures are not errors: they are attached to the affected milestone.
var ErrInvalidInput = errors.New("invalid milestone input")

// AlternateDate is a due date projected onto the second calendar.
type AlternateDate = calendar.Date

// Converter projects a Gregorian date onto another calendar. It must be a
// pure function of its input.
type Converter interface {
	Convert(t time.Time) (AlternateDate, error)
}

// ConverterFunc adapts a plain function to Converter.
type ConverterFunc func(t time.Time) (AlternateDate, error)

// Convert calls f(t).
func (f ConverterFunc) Convert(t time.Time) (AlternateDate, error) {
	return f(t)
}

// Template is one step of a construction-linked payment plan.
type Template struct {
	Label            string  `json:"label"`
	PercentOfTotal   float64 `json:"percent_of_total"`
	MonthsAfterStart int     `json:"months_after_start"`
}

// DefaultTemplate is the off-plan schedule used when the caller supplies none.
// The down payment percentage is nominal: the first entry's amount is always
// the caller's down payment.
func DefaultTemplate() []Template {
	return []Template{
		{Label: "Down Payment", PercentOfTotal: 0, MonthsAfterStart: 0},
		{Label: "Foundation", PercentOfTotal: 15, MonthsAfterStart: 3},
		{Label: "Structure", PercentOfTotal: 25, MonthsAfterStart: 9},
		{Label: "Finishing", PercentOfTotal: 30, MonthsAfterStart: 18},
		{Label: "Final Handover", PercentOfTotal: 20, MonthsAfterStart: 24},
	}
}

// Milestone is one dated payment obligation.
type Milestone struct {
	Label            string         `json:"label"`
	PercentOfTotal   float64        `json:"percent_of_total"`
	Amount           float64        `json:"amount"`
	MonthsAfterStart int            `json:"months_after_start"`
	DueDateGregorian time.Time      `json:"due_date_gregorian"`
	DueDateAlternate *AlternateDate `json:"due_date_alternate,omitempty"`
	// ConversionError carries the converter failure for this milestone only.
	ConversionError error `json:"-"`
}

// Plan is the full milestone schedule.
type Plan struct {
	Milestones     []Milestone `json:"milestones"`
	TotalPrice     float64     `json:"total_price"`
	TotalScheduled float64     `json:"total_scheduled"`
	// Discrepancy is TotalScheduled minus TotalPrice. It is non-zero whenever
	// the down payment differs from the first template entry's share, because
	// the down payment replaces that share instead of being deducted from the
	// remaining milestones.
	Discrepancy float64 `json:"discrepancy"`
}

// ConversionFailures counts milestones whose alternate date is missing.
func (p Plan) ConversionFailures() int {
	n := 0
	for _, m := range p.Milestones {
		if m.ConversionError != nil {
			n++
		}
	}
	return n
}

// Request holds the inputs of one schedule.
type Request struct {
	TotalPrice        float64
	DownPaymentAmount float64
	StartDate         time.Time
	// Template defaults to DefaultTemplate when empty.
	Template []Template
}

// Schedule expands a template into dated payment obligations.
//
// Every entry after the first pays TotalPrice × PercentOfTotal / 100; the
// first entry pays DownPaymentAmount verbatim. Amounts are not renormalized,
// so the plan only sums to TotalPrice when the down payment equals the first
// entry's implied share (see Plan.Discrepancy).
func Schedule(req Request, conv Converter) (Plan, error) {
	if conv == nil {
		return Plan{}, fmt.Errorf("%w: calendar converter is required", ErrInvalidInput)
	}
	if !isFinite(req.TotalPrice) || req.TotalPrice <= 0 {
		return Plan{}, fmt.Errorf("%w: total price must be positive", ErrInvalidInput)
	}
	if !isFinite(req.DownPaymentAmount) || req.DownPaymentAmount < 0 {
		return Plan{}, fmt.Errorf("%w: down payment must be non-negative", ErrInvalidInput)
	}
	if req.StartDate.IsZero() {
		return Plan{}, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}

	tmpl := req.Template
	if len(tmpl) == 0 {
		tmpl = DefaultTemplate()
	}
	if err := validateTemplate(tmpl); err != nil {
		return Plan{}, err
	}

	total := decimal.NewFromFloat(req.TotalPrice)
	hundred := decimal.NewFromInt(100)
	scheduled := decimal.Zero

	plan := Plan{
		Milestones: make([]Milestone, 0, len(tmpl)),
		TotalPrice: req.TotalPrice,
	}
	for i, t := range tmpl {
		amount := decimal.NewFromFloat(req.DownPaymentAmount)
		if i > 0 {
			amount = total.Mul(decimal.NewFromFloat(t.PercentOfTotal)).Div(hundred)
		}
		scheduled = scheduled.Add(amount)

		due := AddMonths(req.StartDate, t.MonthsAfterStart)
		m := Milestone{
			Label:            t.Label,
			PercentOfTotal:   t.PercentOfTotal,
			Amount:           amount.InexactFloat64(),
			MonthsAfterStart: t.MonthsAfterStart,
			DueDateGregorian: due,
		}
		alt, err := conv.Convert(due)
		if err != nil {
			m.ConversionError = fmt.Errorf("milestone %q: %w", t.Label, err)
		} else {
			m.DueDateAlternate = &alt
		}
		plan.Milestones = append(plan.Milestones, m)
	}

	plan.TotalScheduled = scheduled.InexactFloat64()
	plan.Discrepancy = scheduled.Sub(total).InexactFloat64()
	return plan, nil
}

func validateTemplate(tmpl []Template) error {
	if tmpl[0].MonthsAfterStart != 0 {
		return fmt.Errorf("%w: first milestone must be due at month 0, got %d", ErrInvalidInput, tmpl[0].MonthsAfterStart)
	}
	for i, t := range tmpl {
		if !isFinite(t.PercentOfTotal) || t.PercentOfTotal < 0 {
			return fmt.Errorf("%w: milestone %q has invalid percentage", ErrInvalidInput, t.Label)
		}
		if i > 0 && t.MonthsAfterStart <= tmpl[i-1].MonthsAfterStart {
			return fmt.Errorf("%w: milestone %q must come after %q", ErrInvalidInput, t.Label, tmpl[i-1].Label)
		}
	}
	return nil
}

// AddMonths moves t forward by n calendar months, clamping to the last day of
// the target month (31 January + 1 month = 28 or 29 February) instead of
// overflowing into the following month the way time.AddDate does.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
