package operations

import (
	"sort"

	"realty-engine/internal/jurisdiction"
	"realty-engine/internal/milestone"
)

// Registry maps operation names to their handlers. It is read-only once built.
type Registry struct {
	ops map[string]Operation
}

// NewRegistry wires every operation to the given jurisdiction table and
// alternate-calendar converter.
func NewRegistry(jurisdictions *jurisdiction.Registry, conv milestone.Converter) *Registry {
	return &Registry{ops: map[string]Operation{
		NameValidateRegistration: &ValidateRegistrationHandler{jurisdictions: jurisdictions},
		NameAssessCommission:     &AssessCommissionHandler{jurisdictions: jurisdictions},
		NameAmortize:             &AmortizeHandler{},
		NameScheduleMilestones:   &ScheduleMilestonesHandler{converter: conv},
		NameListJurisdictions:    &ListJurisdictionsHandler{jurisdictions: jurisdictions},
	}}
}

func (r *Registry) Get(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names lists the registered operations in ascending order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ops))
	for n := range r.ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
