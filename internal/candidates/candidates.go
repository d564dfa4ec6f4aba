// Package candidates builds the per-variable domain the solver searches:
// every (day, start-block, room, staff) tuple consistent with a session
// variable's duration, required room type, and staff role, in the fixed
// enumeration order spec §4.3 requires.
package candidates

import (
	"fmt"

	"github.com/noah-isme/timetable-solver/internal/calendar"
	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/snapshot"
	"github.com/noah-isme/timetable-solver/internal/solvererr"
)

// Candidate is one point in a variable's domain: a concrete placement the
// solver may try. StaffIsInstructor distinguishes which of InstructorID/TAID
// is populated, mirroring domain.Assignment's role-purity split.
type Candidate struct {
	Day        calendar.Day
	StartBlock int
	EndBlock   int

	Room domain.Room

	StaffID           int
	StaffName         string
	StaffIsInstructor bool
}

// Generate returns v's full domain: days outer, start blocks next, rooms
// next, staff innermost (spec §4.3). Rooms come from the snapshot's rooms of
// v.RequiredRoom type; staff comes from the snapshot's qualified instructors
// for LECTURE or qualified TAs for LAB/TUTORIAL (spec §4.3 role purity).
//
// If the snapshot has zero qualified staff for v's role, Generate returns a
// *solvererr.Infeasible with Kind NoQualifiedStaff: the domain would be
// empty for every (day, block, room) combination, so there is no point
// enumerating it.
func Generate(snap *snapshot.Snapshot, v domain.SessionVariable) ([]Candidate, error) {
	staff, err := qualifiedStaff(snap, v)
	if err != nil {
		return nil, err
	}

	rooms := snap.RoomsByType(v.RequiredRoom)
	starts := calendar.ValidStartBlocks(v.DurationBlocks)

	var out []Candidate
	for _, day := range calendar.Days {
		for _, start := range starts {
			if !calendar.FitsDay(start, v.DurationBlocks) {
				continue
			}
			end := start + v.DurationBlocks
			for _, room := range rooms {
				if room.Capacity < v.StudentCount {
					continue
				}
				for _, s := range staff {
					out = append(out, Candidate{
						Day:               day,
						StartBlock:        start,
						EndBlock:          end,
						Room:              room,
						StaffID:           s.id,
						StaffName:         s.name,
						StaffIsInstructor: s.isInstructor,
					})
				}
			}
		}
	}

	return out, nil
}

type staffMember struct {
	id           int
	name         string
	isInstructor bool
}

func qualifiedStaff(snap *snapshot.Snapshot, v domain.SessionVariable) ([]staffMember, error) {
	switch v.SessionType {
	case domain.Lecture:
		instructors := snap.InstructorsForCourse(v.CourseID)
		if len(instructors) == 0 {
			return nil, solvererr.New(solvererr.NoQualifiedStaff,
				fmt.Sprintf("no qualified instructor for %s", v.String()),
				map[string]any{"variable": v.String(), "courseId": v.CourseID})
		}
		out := make([]staffMember, len(instructors))
		for i, ins := range instructors {
			out[i] = staffMember{id: ins.ID, name: ins.Name, isInstructor: true}
		}
		return out, nil

	case domain.Lab, domain.Tutorial:
		tas := snap.TAsForCourse(v.CourseID)
		if len(tas) == 0 {
			return nil, solvererr.New(solvererr.NoQualifiedStaff,
				fmt.Sprintf("no qualified TA for %s", v.String()),
				map[string]any{"variable": v.String(), "courseId": v.CourseID})
		}
		out := make([]staffMember, len(tas))
		for i, ta := range tas {
			out[i] = staffMember{id: ta.ID, name: ta.Name, isInstructor: false}
		}
		return out, nil

	default:
		return nil, fmt.Errorf("candidates: unknown session type %q", v.SessionType)
	}
}
