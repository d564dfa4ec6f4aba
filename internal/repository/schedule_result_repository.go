package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solver/internal/domain"
)

// ScheduleResultRepository persists a solved schedule transactionally,
// grounded on the original scheduler's `_save_schedule`: clear whatever
// schedule exists, materialize a timeslot row per distinct (day, start,
// end) touched by the run, then one schedule row per assignment pointing
// at it. Every write goes through an explicit *sqlx.Tx so a failure partway
// through never leaves a half-written schedule (spec §7).
type ScheduleResultRepository struct {
	db *sqlx.DB
}

// NewScheduleResultRepository builds a repository bound to db.
func NewScheduleResultRepository(db *sqlx.DB) *ScheduleResultRepository {
	return &ScheduleResultRepository{db: db}
}

// Save clears the prior schedule and writes assignments as a single
// transaction, rolling back on any error.
func (r *ScheduleResultRepository) Save(ctx context.Context, assignments []domain.Assignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule save transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once Commit succeeds

	if err := r.clearExistingSchedule(ctx, tx); err != nil {
		return err
	}

	timeslotIDs := make(map[timeslotKey]int)
	for _, a := range assignments {
		startTime, err := a.StartTime()
		if err != nil {
			return fmt.Errorf("assignment start time: %w", err)
		}
		endTime, err := a.EndTime()
		if err != nil {
			return fmt.Errorf("assignment end time: %w", err)
		}

		key := timeslotKey{day: a.Day.String(), start: startTime, end: endTime}
		timeslotID, ok := timeslotIDs[key]
		if !ok {
			timeslotID, err = r.ensureTimeslot(ctx, tx, key, a.Variable.DurationBlocks)
			if err != nil {
				return err
			}
			timeslotIDs[key] = timeslotID
		}

		if err := r.insertAssignment(ctx, tx, a, timeslotID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule save transaction: %w", err)
	}
	return nil
}

type timeslotKey struct {
	day   string
	start string
	end   string
}

func (r *ScheduleResultRepository) clearExistingSchedule(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule`); err != nil {
		return fmt.Errorf("clear existing schedule: %w", err)
	}
	return nil
}

func (r *ScheduleResultRepository) ensureTimeslot(ctx context.Context, tx *sqlx.Tx, key timeslotKey, durationBlocks int) (int, error) {
	const selectQuery = `SELECT timeslot_id FROM timeslots WHERE day = $1 AND start_time = $2 AND end_time = $3`
	var existing int
	err := tx.GetContext(ctx, &existing, selectQuery, key.day, key.start+":00", key.end+":00")
	if err == nil {
		return existing, nil
	}

	durationMinutes := 45
	if durationBlocks == 2 {
		durationMinutes = 90
	}

	const insertQuery = `
INSERT INTO timeslots (day, start_time, end_time, duration)
VALUES ($1, $2, $3, $4)
RETURNING timeslot_id`
	var created int
	if err := tx.GetContext(ctx, &created, insertQuery, key.day, key.start+":00", key.end+":00", durationMinutes); err != nil {
		return 0, fmt.Errorf("create timeslot %s %s-%s: %w", key.day, key.start, key.end, err)
	}
	return created, nil
}

func (r *ScheduleResultRepository) insertAssignment(ctx context.Context, tx *sqlx.Tx, a domain.Assignment, timeslotID int) error {
	const query = `
INSERT INTO schedule (course_id, group_id, section_id, timeslot_id, room_id, instructor_id, ta_id, session_type)
VALUES (:course_id, :group_id, :section_id, :timeslot_id, :room_id, :instructor_id, :ta_id, :session_type)`

	row := struct {
		CourseID     int         `db:"course_id"`
		GroupID      int         `db:"group_id"`
		SectionID    interface{} `db:"section_id"`
		TimeslotID   int         `db:"timeslot_id"`
		RoomID       int         `db:"room_id"`
		InstructorID interface{} `db:"instructor_id"`
		TAID         interface{} `db:"ta_id"`
		SessionType  string      `db:"session_type"`
	}{
		CourseID:    a.Variable.CourseID,
		GroupID:     a.Variable.GroupID,
		TimeslotID:  timeslotID,
		RoomID:      a.RoomID,
		SessionType: string(a.Variable.SessionType),
	}
	if a.Variable.HasSection {
		row.SectionID = a.Variable.SectionID
	}
	if a.HasInstructor {
		row.InstructorID = a.InstructorID
	}
	if a.HasTA {
		row.TAID = a.TAID
	}

	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert schedule entry for %s: %w", a.Variable.String(), err)
	}
	return nil
}
