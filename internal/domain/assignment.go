package domain

import "github.com/noah-isme/timetable-solver/internal/calendar"

// Assignment is a scheduled placement of one SessionVariable: a (day,
// start-block, room, staff) tuple. Exactly one of InstructorID/TAID is set,
// matching the variable's session type (spec §4.3 role purity).
type Assignment struct {
	Variable SessionVariable

	Day        calendar.Day
	StartBlock int
	EndBlock   int // exclusive: StartBlock + DurationBlocks

	RoomID       int
	RoomNumber   string
	BuildingName string

	InstructorID   int
	InstructorName string
	HasInstructor  bool

	TAID   int
	TAName string
	HasTA  bool
}

// StartTime returns the wall-clock start of the assignment's first block.
func (a Assignment) StartTime() (string, error) {
	return calendar.StartTime(a.StartBlock)
}

// EndTime returns the wall-clock end of the assignment's last occupied
// block (EndBlock is exclusive, so the last occupied block is EndBlock-1).
func (a Assignment) EndTime() (string, error) {
	return calendar.EndTime(a.EndBlock - 1)
}

// TeacherName returns whichever of instructor/TA name is set.
func (a Assignment) TeacherName() string {
	if a.HasInstructor {
		return a.InstructorName
	}
	return a.TAName
}
