// Package solvererr defines the closed error taxonomy spec §7 requires the
// core to surface. It has no dependency on the solver or generator packages
// so both can return it without an import cycle, and the service layer can
// translate it into the HTTP error envelope without reaching into solver
// internals.
package solvererr

import "fmt"

// Kind is the closed set of reasons a run can fail to produce a schedule.
type Kind string

const (
	// CapacityShortfall: a generated variable has no room of its required
	// type with sufficient capacity. Detected during generation, before
	// search (spec §4.2).
	CapacityShortfall Kind = "CapacityShortfall"

	// NoQualifiedStaff: a generated variable has an empty staff set for its
	// role. Detected lazily when its domain is first computed.
	NoQualifiedStaff Kind = "NoQualifiedStaff"

	// NoSchedule: search exhausted every candidate without finding a
	// consistent assignment for all variables.
	NoSchedule Kind = "NoSchedule"

	// InvalidInput: the snapshot violates a stated structural invariant.
	InvalidInput Kind = "InvalidInput"
)

// Infeasible is the terminal error a run reports when no schedule (or no
// further variable) can be produced. Detail is a human-meaningful message;
// Fields carries the structured cause (variable identity, student count,
// room type, etc.) for programmatic consumers.
type Infeasible struct {
	Kind   Kind
	Detail string
	Fields map[string]any
}

func (e *Infeasible) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// New builds an Infeasible with the given kind, message, and optional
// structured fields.
func New(kind Kind, detail string, fields map[string]any) *Infeasible {
	return &Infeasible{Kind: kind, Detail: detail, Fields: fields}
}
