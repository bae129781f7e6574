package operations

import (
	"fmt"

	"realty-engine/internal/jurisdiction"
	"realty-engine/internal/model"
	"realty-engine/internal/registration"
)

type validateRegistrationProps struct {
	RegistrationNumber string `json:"registration_number"`
	JurisdictionCode   string `json:"jurisdiction_code"`
}

type ValidateRegistrationHandler struct {
	jurisdictions *jurisdiction.Registry
}

func (h *ValidateRegistrationHandler) Validate(instr *model.Instruction) []model.CalculationMessage {
	var props validateRegistrationProps
	if err := decodeProps(instr.Properties, &props); err != nil {
		return invalidProperties(err)
	}
	return nil
}

// Execute never fails the instruction: an invalid number is a finding, not
// an error, so every verdict is returned with SUCCESS.
func (h *ValidateRegistrationHandler) Execute(instr *model.Instruction) (any, []model.CalculationMessage) {
	var props validateRegistrationProps
	_ = decodeProps(instr.Properties, &props)

	res := registration.ValidateWith(h.jurisdictions, props.RegistrationNumber, props.JurisdictionCode)

	var msgs []model.CalculationMessage
	switch res.ErrorReason {
	case registration.ReasonEmpty:
		msgs = append(msgs, model.Warning(CodeEmptyInput, "Registration number is empty"))
	case registration.ReasonUnknownJurisdiction:
		msgs = append(msgs, model.Warning(CodeUnknownJurisdiction,
			fmt.Sprintf("Unknown jurisdiction: %s", props.JurisdictionCode)))
	case registration.ReasonPatternMismatch:
		msgs = append(msgs, model.Warning(CodePatternMismatch,
			fmt.Sprintf("Registration %q does not match the format for %s", props.RegistrationNumber, props.JurisdictionCode)))
	}
	if res.Degraded {
		msgs = append(msgs, model.Warning(CodeGenericPatternApplied,
			fmt.Sprintf("No registration format on file for %s; generic pattern applied", props.JurisdictionCode)))
	}
	return res, msgs
}
