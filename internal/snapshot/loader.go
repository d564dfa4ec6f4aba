// Package snapshot materializes the read-only academic state a single
// solver run operates on, per spec §2.2 and §6.
package snapshot

import (
	"context"

	"github.com/noah-isme/timetable-solver/internal/domain"
)

// Loader is the core's read-only view of the persistence store (spec §6
// "Snapshot loader contract"). Implementations are adapters; the solver
// never imports a concrete store.
type Loader interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	QualifiedInstructors(ctx context.Context, courseID int) ([]domain.Instructor, error)
	QualifiedTAs(ctx context.Context, courseID int) ([]domain.TA, error)
	GroupsOfLevel(ctx context.Context, levelID int) ([]domain.Group, error)
	SectionsOfGroup(ctx context.Context, groupID int) ([]domain.Section, error)
}

// Snapshot is the immutable, in-memory view built once at the start of a
// run (spec §2.2, §5 "read-only after load").
type Snapshot struct {
	Courses []domain.Course

	roomsByType         map[domain.RoomType][]domain.Room
	instructorsByCourse map[int][]domain.Instructor
	tasByCourse         map[int][]domain.TA
	groupsByLevel       map[int][]domain.Group
	sectionsByGroup     map[int][]domain.Section
}

// RoomsByType returns every room of the given type, in loader order.
func (s *Snapshot) RoomsByType(t domain.RoomType) []domain.Room {
	return s.roomsByType[t]
}

// InstructorsForCourse returns the instructors qualified to teach courseID.
func (s *Snapshot) InstructorsForCourse(courseID int) []domain.Instructor {
	return s.instructorsByCourse[courseID]
}

// TAsForCourse returns the TAs qualified to teach courseID.
func (s *Snapshot) TAsForCourse(courseID int) []domain.TA {
	return s.tasByCourse[courseID]
}

// GroupsForLevel returns the groups belonging to levelID, in loader order.
func (s *Snapshot) GroupsForLevel(levelID int) []domain.Group {
	return s.groupsByLevel[levelID]
}

// SectionsForGroup returns the sections belonging to groupID, in loader
// order.
func (s *Snapshot) SectionsForGroup(groupID int) []domain.Section {
	return s.sectionsByGroup[groupID]
}

// HasCapacity reports whether at least one room of type t can seat
// studentCount (the fail-fast check spec §4.2 requires at generation time).
func (s *Snapshot) HasCapacity(t domain.RoomType, studentCount int) bool {
	for _, room := range s.roomsByType[t] {
		if room.Capacity >= studentCount {
			return true
		}
	}
	return false
}

// Build loads and caches every table the generator and solver need for one
// run. It performs no feasibility or structural checks itself; those are
// the generator's job (spec §4.2).
func Build(ctx context.Context, loader Loader) (*Snapshot, error) {
	rooms, err := loader.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := loader.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Courses:             courses,
		roomsByType:         make(map[domain.RoomType][]domain.Room),
		instructorsByCourse: make(map[int][]domain.Instructor),
		tasByCourse:         make(map[int][]domain.TA),
		groupsByLevel:       make(map[int][]domain.Group),
		sectionsByGroup:     make(map[int][]domain.Section),
	}

	for _, room := range rooms {
		snap.roomsByType[room.Type] = append(snap.roomsByType[room.Type], room)
	}

	seenLevels := make(map[int]bool)
	for _, course := range courses {
		instructors, err := loader.QualifiedInstructors(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		snap.instructorsByCourse[course.ID] = instructors

		tas, err := loader.QualifiedTAs(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		snap.tasByCourse[course.ID] = tas

		if seenLevels[course.Level] {
			continue
		}
		seenLevels[course.Level] = true

		groups, err := loader.GroupsOfLevel(ctx, course.Level)
		if err != nil {
			return nil, err
		}
		snap.groupsByLevel[course.Level] = groups

		for _, group := range groups {
			sections, err := loader.SectionsOfGroup(ctx, group.ID)
			if err != nil {
				return nil, err
			}
			snap.sectionsByGroup[group.ID] = sections
		}
	}

	return snap, nil
}
