package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solver/internal/calendar"
	"github.com/noah-isme/timetable-solver/internal/domain"
)

func TestScheduleResultRepositorySaveInsertsNewTimeslot(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewScheduleResultRepository(db)

	assignment := domain.Assignment{
		Variable: domain.SessionVariable{
			CourseID: 10, GroupID: 1000, SessionType: domain.Lecture, DurationBlocks: 2,
		},
		Day:           calendar.Monday,
		StartBlock:    0,
		EndBlock:      2,
		RoomID:        1,
		InstructorID:  100,
		HasInstructor: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT timeslot_id FROM timeslots WHERE day = $1 AND start_time = $2 AND end_time = $3")).
		WithArgs("Monday", "09:00:00", "10:30:00").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO timeslots")).
		WithArgs("Monday", "09:00:00", "10:30:00", 90).
		WillReturnRows(sqlmock.NewRows([]string{"timeslot_id"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), []domain.Assignment{assignment})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleResultRepositorySaveRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewScheduleResultRepository(db)

	assignment := domain.Assignment{
		Variable: domain.SessionVariable{CourseID: 10, GroupID: 1000, SessionType: domain.Lecture, DurationBlocks: 2},
		Day:      calendar.Monday, StartBlock: 0, EndBlock: 2, RoomID: 1,
		InstructorID: 100, HasInstructor: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Save(context.Background(), []domain.Assignment{assignment})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
