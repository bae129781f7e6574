package operations

import "realty-engine/internal/model"

// Operation is the contract for every instruction type. Validate rejects
// malformed properties with CRITICAL messages; Execute computes the result and
// reports business findings as WARNING messages.
type Operation interface {
	Validate(instr *model.Instruction) []model.CalculationMessage
	Execute(instr *model.Instruction) (any, []model.CalculationMessage)
}

const (
	NameValidateRegistration = "validate_registration"
	NameAssessCommission     = "assess_commission"
	NameAmortize             = "amortize"
	NameScheduleMilestones   = "schedule_milestones"
	NameListJurisdictions    = "list_jurisdictions"
)

const (
	CodeInvalidProperties        = "INVALID_PROPERTIES"
	CodeInvalidInput             = "INVALID_INPUT"
	CodeEmptyInput               = "EMPTY_INPUT"
	CodeUnknownJurisdiction      = "UNKNOWN_JURISDICTION"
	CodePatternMismatch          = "PATTERN_MISMATCH"
	CodeGenericPatternApplied    = "GENERIC_PATTERN_APPLIED"
	CodeInvalidPrice             = "INVALID_PRICE"
	CodeRateOutOfRange           = "RATE_OUT_OF_RANGE"
	CodeRateExceedsCap           = "RATE_EXCEEDS_CAP"
	CodeRateBelowMarketFloor     = "RATE_BELOW_MARKET_FLOOR"
	CodeDefaultCapApplied        = "DEFAULT_CAP_APPLIED"
	CodeCalendarConversionFailed = "CALENDAR_CONVERSION_FAILED"
	CodeMilestoneTotalMismatch   = "MILESTONE_TOTAL_MISMATCH"
	CodeUnknownOperation         = "UNKNOWN_OPERATION"
	CodeCalculationCancelled     = "CALCULATION_CANCELLED"
)
