package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solver/internal/calendar"
	"github.com/noah-isme/timetable-solver/internal/domain"
)

// ScheduleBrowseRepository serves the read-only `/schedule` browse endpoint
// (spec §5 "A /schedule browse endpoint"), grounded on
// `original_source/api/routers/schedule.py`'s `get_schedule`: join every
// schedule row back to its course/group/section/timeslot/room/staff and
// reconstruct an Assignment, never touching the solver's write path.
type ScheduleBrowseRepository struct{ db *sqlx.DB }

// NewScheduleBrowseRepository builds a repository bound to db.
func NewScheduleBrowseRepository(db *sqlx.DB) *ScheduleBrowseRepository {
	return &ScheduleBrowseRepository{db: db}
}

type scheduleEntryRow struct {
	CourseID       int     `db:"course_id"`
	CourseCode     string  `db:"course_code"`
	CourseName     string  `db:"course_name"`
	SessionType    string  `db:"session_type"`
	GroupID        int     `db:"group_id"`
	GroupNumber    int     `db:"group_number"`
	SectionID      *int    `db:"section_id"`
	SectionNumber  *int    `db:"section_number"`
	Day            string  `db:"day"`
	StartTime      string  `db:"start_time"`
	EndTime        string  `db:"end_time"`
	DurationMins   int     `db:"duration"`
	RoomID         int     `db:"room_id"`
	RoomNumber     string  `db:"room_number"`
	BuildingName   string  `db:"building_name"`
	InstructorID   *int    `db:"instructor_id"`
	InstructorName *string `db:"instructor_name"`
	TAID           *int    `db:"ta_id"`
	TAName         *string `db:"ta_name"`
}

// Filter narrows List's result set; zero fields are ignored.
type ScheduleBrowseFilter struct {
	Day          string
	InstructorID int
	TAID         int
	CourseID     int
	GroupID      int
	RoomID       int
}

// List returns every persisted schedule entry matching filter, reconstructed
// as domain.Assignment values so callers reuse the same shape the solver
// itself emits.
func (r *ScheduleBrowseRepository) List(ctx context.Context, filter ScheduleBrowseFilter) ([]domain.Assignment, error) {
	query := `
SELECT s.course_id, c.course_code, c.course_name, s.session_type,
       s.group_id, g.group_number, s.section_id, sec.section_number,
       t.day, t.start_time, t.end_time, t.duration,
       s.room_id, r.room_number, b.building_name,
       s.instructor_id, i.instructor_name, s.ta_id, ta.ta_name
FROM schedule s
JOIN courses c ON c.course_id = s.course_id
JOIN timeslots t ON t.timeslot_id = s.timeslot_id
JOIN groups g ON g.group_id = s.group_id
LEFT JOIN sections sec ON sec.section_id = s.section_id
JOIN rooms r ON r.room_id = s.room_id
JOIN buildings b ON b.building_id = r.building_id
LEFT JOIN instructors i ON i.instructor_id = s.instructor_id
LEFT JOIN tas ta ON ta.ta_id = s.ta_id
WHERE ($1 = '' OR t.day = $1)
  AND ($2 = 0 OR s.instructor_id = $2)
  AND ($3 = 0 OR s.ta_id = $3)
  AND ($4 = 0 OR s.course_id = $4)
  AND ($5 = 0 OR s.group_id = $5)
  AND ($6 = 0 OR s.room_id = $6)
ORDER BY t.day, t.start_time`

	var rows []scheduleEntryRow
	err := r.db.SelectContext(ctx, &rows, query,
		filter.Day, filter.InstructorID, filter.TAID, filter.CourseID, filter.GroupID, filter.RoomID)
	if err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}

	out := make([]domain.Assignment, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAssignment()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (row scheduleEntryRow) toAssignment() (domain.Assignment, error) {
	day, err := calendar.DayFromString(row.Day)
	if err != nil {
		return domain.Assignment{}, err
	}
	// Timeslots are persisted as "HH:MM:SS"; BlockForStartTime takes "HH:MM".
	startTime := row.StartTime
	if len(startTime) > 5 {
		startTime = startTime[:5]
	}
	startBlock, err := calendar.BlockForStartTime(startTime)
	if err != nil {
		return domain.Assignment{}, err
	}
	durationBlocks := 1
	if row.DurationMins == 90 {
		durationBlocks = 2
	}

	v := domain.SessionVariable{
		CourseID:       row.CourseID,
		CourseCode:     row.CourseCode,
		CourseName:     row.CourseName,
		SessionType:    domain.SessionType(row.SessionType),
		DurationBlocks: durationBlocks,
		GroupID:        row.GroupID,
		GroupNumber:    row.GroupNumber,
	}
	if row.SectionID != nil {
		v.SectionID = *row.SectionID
		v.HasSection = true
	}
	if row.SectionNumber != nil {
		v.SectionNumber = *row.SectionNumber
	}

	a := domain.Assignment{
		Variable:     v,
		Day:          day,
		StartBlock:   startBlock,
		EndBlock:     startBlock + durationBlocks,
		RoomID:       row.RoomID,
		RoomNumber:   row.RoomNumber,
		BuildingName: row.BuildingName,
	}
	if row.InstructorID != nil {
		a.InstructorID = *row.InstructorID
		a.HasInstructor = true
		if row.InstructorName != nil {
			a.InstructorName = *row.InstructorName
		}
	}
	if row.TAID != nil {
		a.TAID = *row.TAID
		a.HasTA = true
		if row.TAName != nil {
			a.TAName = *row.TAName
		}
	}
	return a, nil
}
