package registration

import (
	"strings"

	"realty-engine/internal/jurisdiction"
)

// Reason is the closed set of failure causes for a registration number.
type Reason string

const (
	ReasonEmpty               Reason = "empty"
	ReasonUnknownJurisdiction Reason = "unknown_jurisdiction"
	ReasonPatternMismatch     Reason = "pattern_mismatch"
)

// Result is the verdict for one registration number. ErrorReason is set iff
// Valid is false; JurisdictionCode and AuthorityName are echoed only when valid.
type Result struct {
	Valid            bool   `json:"valid"`
	ErrorReason      Reason `json:"error_reason,omitempty"`
	JurisdictionCode string `json:"jurisdiction_code,omitempty"`
	AuthorityName    string `json:"authority_name,omitempty"`
	Normalized       string `json:"normalized,omitempty"`
	// Degraded is set when the jurisdiction has no pattern of its own and the
	// generic fallback decided the verdict.
	Degraded bool `json:"degraded"`
}

// Lookuper resolves jurisdiction codes. *jurisdiction.Registry satisfies it.
type Lookuper interface {
	Lookup(code string) (jurisdiction.Rule, error)
}

// Validate checks a registration number against the embedded jurisdiction table.
func Validate(registrationNumber, jurisdictionCode string) Result {
	return ValidateWith(jurisdiction.Default(), registrationNumber, jurisdictionCode)
}

// ValidateWith checks a registration number against the given registry.
//
// The number is trimmed before matching and compared case-insensitively.
// A jurisdiction-specific pattern always wins over the generic one; the generic
// pattern is only consulted for jurisdictions that define no pattern.
func ValidateWith(reg Lookuper, registrationNumber, jurisdictionCode string) Result {
	number := strings.TrimSpace(registrationNumber)
	if number == "" {
		return Result{ErrorReason: ReasonEmpty}
	}

	rule, err := reg.Lookup(jurisdictionCode)
	if err != nil {
		return Result{ErrorReason: ReasonUnknownJurisdiction}
	}

	matched, generic := rule.Match(number)
	if !matched {
		return Result{ErrorReason: ReasonPatternMismatch, Degraded: generic}
	}

	return Result{
		Valid:            true,
		JurisdictionCode: rule.Code,
		AuthorityName:    rule.AuthorityName,
		Normalized:       strings.ToUpper(number),
		Degraded:         generic,
	}
}
