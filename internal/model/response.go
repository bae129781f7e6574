package model

type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   CalculationResult   `json:"calculation_result"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	ClientID               string `json:"client_id"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type CalculationResult struct {
	Messages     []CalculationMessage   `json:"messages"`
	Instructions []ProcessedInstruction `json:"instructions"`
}

// ProcessedInstruction pairs an instruction with what it produced. Result is
// omitted when the instruction failed validation.
type ProcessedInstruction struct {
	InstructionID             string `json:"instruction_id"`
	Operation                 string `json:"operation"`
	Outcome                   string `json:"outcome"`
	Result                    any    `json:"result,omitempty"`
	CalculationMessageIndexes []int  `json:"calculation_message_indexes,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
