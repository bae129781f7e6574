package model

import json "github.com/goccy/go-json"

type CalculationRequest struct {
	ClientID     string        `json:"client_id"`
	Instructions []Instruction `json:"instructions"`
}

// Instruction is one independent unit of work. Properties are decoded by the
// operation named in Operation.
type Instruction struct {
	InstructionID string          `json:"instruction_id"`
	Operation     string          `json:"operation"`
	Properties    json.RawMessage `json:"properties,omitempty"`
}
