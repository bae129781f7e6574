package amortization

// YearTotals aggregates the periods of one loan year.
type YearTotals struct {
	Year           int     `json:"year"`
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	ClosingBalance float64 `json:"closing_balance"`
}

// Summary condenses a schedule for list views.
type Summary struct {
	MonthlyPayment float64 `json:"monthly_payment"`
	Payments       int     `json:"payments"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPayment   float64 `json:"total_payment"`
	// InterestRatio is total interest over principal repaid; 0 for an empty loan.
	InterestRatio float64 `json:"interest_ratio"`
}

// ByYear groups periods into loan years of twelve months.
func (s Schedule) ByYear() []YearTotals {
	years := make([]YearTotals, 0, (len(s.Periods)+11)/12)
	for _, p := range s.Periods {
		y := (p.Index-1)/12 + 1
		if len(years) < y {
			years = append(years, YearTotals{Year: y})
		}
		cur := &years[y-1]
		cur.Interest += p.InterestPortion
		cur.Principal += p.PrincipalPortion
		cur.ClosingBalance = p.RemainingBalance
	}
	return years
}

// Summary returns the headline figures of the schedule.
func (s Schedule) Summary() Summary {
	sum := Summary{
		MonthlyPayment: s.MonthlyPayment,
		Payments:       len(s.Periods),
		TotalInterest:  s.TotalInterest,
		TotalPayment:   s.TotalPayment,
	}
	if principal := s.TotalPayment - s.TotalInterest; principal > 0 {
		sum.InterestRatio = s.TotalInterest / principal
	}
	return sum
}
