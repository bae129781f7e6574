package operations

import (
	"realty-engine/internal/jurisdiction"
	"realty-engine/internal/model"
)

// ListJurisdictionsHandler ignores its properties.
type ListJurisdictionsHandler struct {
	jurisdictions *jurisdiction.Registry
}

func (h *ListJurisdictionsHandler) Validate(*model.Instruction) []model.CalculationMessage {
	return nil
}

func (h *ListJurisdictionsHandler) Execute(*model.Instruction) (any, []model.CalculationMessage) {
	return h.jurisdictions.All(), nil
}
