package operations

import (
	"realty-engine/internal/amortization"
	"realty-engine/internal/model"
)

type amortizeProps struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	TermYears         int     `json:"term_years"`
	// SummaryOnly drops the per-period table from the result.
	SummaryOnly bool `json:"summary_only"`
}

// AmortizeResult is the rendered schedule.
type AmortizeResult struct {
	Summary amortization.Summary      `json:"summary"`
	ByYear  []amortization.YearTotals `json:"by_year"`
	Periods []amortization.Period     `json:"periods,omitempty"`
}

type AmortizeHandler struct{}

func (h *AmortizeHandler) Validate(instr *model.Instruction) []model.CalculationMessage {
	var props amortizeProps
	if err := decodeProps(instr.Properties, &props); err != nil {
		return invalidProperties(err)
	}
	return nil
}

func (h *AmortizeHandler) Execute(instr *model.Instruction) (any, []model.CalculationMessage) {
	var props amortizeProps
	_ = decodeProps(instr.Properties, &props)

	s, err := amortization.Amortize(amortization.Loan{
		Principal:         props.Principal,
		AnnualRatePercent: props.AnnualRatePercent,
		TermYears:         props.TermYears,
	})
	if err != nil {
		return nil, []model.CalculationMessage{model.Critical(CodeInvalidInput, err.Error())}
	}

	res := AmortizeResult{Summary: s.Summary(), ByYear: s.ByYear()}
	if !props.SummaryOnly {
		res.Periods = s.Periods
	}
	return res, nil
}
