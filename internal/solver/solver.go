// Package solver implements the backtracking search that places every
// session variable into a consistent (day, block, room, staff) slot (spec
// §4.4, §4.5). It is a pure function of its inputs: it does not read or
// write any store, and its only interaction with the outside world is the
// context it is handed for cancellation (spec §5).
package solver

import (
	"context"

	"github.com/noah-isme/timetable-solver/internal/candidates"
	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/snapshot"
	"github.com/noah-isme/timetable-solver/internal/solvererr"
)

// Result is a complete, consistent placement of every input variable.
type Result struct {
	Assignments []domain.Assignment
}

// Solve runs the backtracking search over variables in the order given
// (the fixed generation order from spec §4.2) against snap. It returns
// *solvererr.Infeasible with Kind NoSchedule if no consistent assignment of
// all variables exists, or whatever *solvererr.Infeasible a variable's
// domain computation raised (e.g. NoQualifiedStaff).
//
// ctx is checked between candidate attempts; if it is cancelled mid-search,
// Solve discards its partial assignment stack and returns ctx.Err() rather
// than a schedule (spec §5: the caller imposes a wall-clock budget and gets
// nothing back on timeout, never a partial schedule).
func Solve(ctx context.Context, snap *snapshot.Snapshot, variables []domain.SessionVariable) (*Result, error) {
	s := &search{
		ctx:       ctx,
		snap:      snap,
		variables: variables,
		stack:     make([]domain.Assignment, 0, len(variables)),
	}

	ok, err := s.backtrack(0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, solvererr.New(solvererr.NoSchedule,
			"no consistent assignment exists for all session variables", nil)
	}

	out := make([]domain.Assignment, len(s.stack))
	copy(out, s.stack)
	return &Result{Assignments: out}, nil
}

type search struct {
	ctx       context.Context
	snap      *snapshot.Snapshot
	variables []domain.SessionVariable
	stack     []domain.Assignment // mutable append/pop assignment stack, spec §9
}

// backtrack tries to extend the current stack (which already holds a valid
// assignment for variables[0:varIndex]) to cover variables[varIndex:]. It
// returns false, nil when the subtree is exhausted with no solution, and a
// non-nil error only for a hard failure (domain computation error, context
// cancellation) that should abort the whole search rather than just this
// branch.
func (s *search) backtrack(varIndex int) (bool, error) {
	if varIndex >= len(s.variables) {
		return true, nil
	}

	if err := s.ctx.Err(); err != nil {
		return false, err
	}

	v := s.variables[varIndex]

	domainCands, err := candidates.Generate(s.snap, v)
	if err != nil {
		return false, err
	}
	if len(domainCands) == 0 {
		return false, nil
	}

	for _, c := range domainCands {
		if err := s.ctx.Err(); err != nil {
			return false, err
		}

		candidate := assignmentFor(v, c)
		if !s.isConsistent(candidate) {
			continue
		}

		s.stack = append(s.stack, candidate)

		ok, err := s.backtrack(varIndex + 1)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		s.stack = s.stack[:len(s.stack)-1]
	}

	return false, nil
}

func assignmentFor(v domain.SessionVariable, c candidates.Candidate) domain.Assignment {
	a := domain.Assignment{
		Variable:     v,
		Day:          c.Day,
		StartBlock:   c.StartBlock,
		EndBlock:     c.EndBlock,
		RoomID:       c.Room.ID,
		RoomNumber:   c.Room.RoomNumber,
		BuildingName: c.Room.BuildingName,
	}
	if c.StaffIsInstructor {
		a.InstructorID = c.StaffID
		a.InstructorName = c.StaffName
		a.HasInstructor = true
	} else {
		a.TAID = c.StaffID
		a.TAName = c.StaffName
		a.HasTA = true
	}
	return a
}

// isConsistent checks candidate against every assignment already on the
// stack (spec §4.4): per-variable singleton is structural (the fixed
// generation order never revisits a var-id so it is not re-checked here),
// same-day block overlap gates room clash, staff clash, and the hierarchy
// rules (H1/H2/H3).
func (s *search) isConsistent(candidate domain.Assignment) bool {
	for _, existing := range s.stack {
		if candidate.Day != existing.Day {
			continue
		}
		if !overlaps(candidate, existing) {
			continue
		}

		if candidate.RoomID == existing.RoomID {
			return false
		}
		if candidate.HasInstructor && existing.HasInstructor && candidate.InstructorID == existing.InstructorID {
			return false
		}
		if candidate.HasTA && existing.HasTA && candidate.TAID == existing.TAID {
			return false
		}
		if !hierarchyConsistent(candidate.Variable, existing.Variable) {
			return false
		}
	}
	return true
}

func overlaps(a, b domain.Assignment) bool {
	return !(a.EndBlock <= b.StartBlock || a.StartBlock >= b.EndBlock)
}

// hierarchyConsistent implements spec §4.4's container rules H1-H3 between
// two overlapping variables:
//
//	H1: two lectures of the same group cannot coexist.
//	H2: a group's lecture and any lab/tutorial of one of its sections
//	    cannot coexist (the section is contained in the group's lecture).
//	H3: two non-lecture sessions of the same section cannot coexist.
func hierarchyConsistent(v1, v2 domain.SessionVariable) bool {
	if v1.SessionType == domain.Lecture && v2.SessionType == domain.Lecture {
		return v1.GroupID != v2.GroupID
	}

	if v1.SessionType == domain.Lecture && v2.SessionType != domain.Lecture {
		return v1.GroupID != v2.GroupID
	}
	if v2.SessionType == domain.Lecture && v1.SessionType != domain.Lecture {
		return v1.GroupID != v2.GroupID
	}

	if v1.HasSection && v2.HasSection && v1.SectionID == v2.SectionID {
		return false
	}

	return true
}
