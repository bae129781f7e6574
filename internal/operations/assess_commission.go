package operations

import (
	"fmt"

	"realty-engine/internal/commission"
	"realty-engine/internal/jurisdiction"
	"realty-engine/internal/model"
)

type assessCommissionProps struct {
	Price            float64 `json:"price"`
	JurisdictionCode string  `json:"jurisdiction_code"`
	RatePercent      float64 `json:"rate_percent"`
	Currency         string  `json:"currency"`
}

type AssessCommissionHandler struct {
	jurisdictions *jurisdiction.Registry
}

func (h *AssessCommissionHandler) Validate(instr *model.Instruction) []model.CalculationMessage {
	var props assessCommissionProps
	if err := decodeProps(instr.Properties, &props); err != nil {
		return invalidProperties(err)
	}
	return nil
}

func (h *AssessCommissionHandler) Execute(instr *model.Instruction) (any, []model.CalculationMessage) {
	var props assessCommissionProps
	_ = decodeProps(instr.Properties, &props)

	a := commission.AssessWith(h.jurisdictions, commission.Request{
		Price:            props.Price,
		JurisdictionCode: props.JurisdictionCode,
		RatePercent:      props.RatePercent,
		Currency:         props.Currency,
	})

	msgs := make([]model.CalculationMessage, 0, len(a.Warnings))
	for _, w := range a.Warnings {
		switch w {
		case commission.WarningInvalidPrice:
			msgs = append(msgs, model.Warning(CodeInvalidPrice, "Price must be a positive amount"))
		case commission.WarningRateOutOfRange:
			msgs = append(msgs, model.Warning(CodeRateOutOfRange,
				fmt.Sprintf("Rate %g%% is outside 0-100%%", props.RatePercent)))
		case commission.WarningRateExceedsCap:
			msgs = append(msgs, model.Warning(CodeRateExceedsCap,
				fmt.Sprintf("Rate %g%% exceeds the %g%% cap for %s", props.RatePercent, a.CapPercent, a.JurisdictionCode)))
		case commission.WarningRateBelowFloor:
			msgs = append(msgs, model.Warning(CodeRateBelowMarketFloor,
				fmt.Sprintf("Rate %g%% is below the %g%% market floor", props.RatePercent, commission.MarketFloorPercent)))
		case commission.WarningDefaultCapApplied:
			msgs = append(msgs, model.Warning(CodeDefaultCapApplied,
				fmt.Sprintf("Unknown jurisdiction %s; default %g%% cap applied", props.JurisdictionCode, commission.DefaultCapPercent)))
		}
	}
	return a, msgs
}
