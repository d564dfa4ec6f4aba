package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solver/internal/domain"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBuildingRepositoryList(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	rows := sqlmock.NewRows([]string{"building_id", "building_name"}).
		AddRow(1, "Science Hall")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT building_id, building_name FROM buildings ORDER BY building_id")).
		WillReturnRows(rows)

	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Science Hall", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewBuildingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO buildings (building_name) VALUES ($1) RETURNING building_id")).
		WithArgs("Science Hall").
		WillReturnRows(sqlmock.NewRows([]string{"building_id"}).AddRow(7))

	b := &domain.Building{Name: "Science Hall"}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, 7, b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"room_id", "room_type", "capacity", "room_number", "building_name"}).
		AddRow(1, "Lab", 30, "L1", "Science Hall")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.room_id, r.room_type, r.capacity, r.room_number, b.building_name")).
		WillReturnRows(rows)

	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.RoomLab, out[0].Type)
	assert.Equal(t, "Science Hall", out[0].BuildingName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs(7, "L1", "Lab", 30).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(42))

	room := &domain.Room{RoomNumber: "L1", Type: domain.RoomLab, Capacity: 30}
	require.NoError(t, repo.Create(context.Background(), 7, room))
	assert.Equal(t, 42, room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE room_id = $1")).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLevelRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewLevelRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO levels")).
		WithArgs("Year 1", "Software Engineering", 2, 3, 120).
		WillReturnRows(sqlmock.NewRows([]string{"level_id"}).AddRow(1))

	level := &domain.Level{Name: "Year 1", Specialization: "Software Engineering", NumSections: 2, NumGroupsPerSection: 3, TotalStudents: 120}
	require.NoError(t, repo.Create(context.Background(), level))
	assert.Equal(t, 1, level.ID)

	rows := sqlmock.NewRows([]string{"level_id", "level_name", "specialization", "num_sections", "num_groups_per_section", "total_students"}).
		AddRow(1, "Year 1", "Software Engineering", 2, 3, 120)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT level_id, level_name, specialization, num_sections, num_groups_per_section, total_students")).
		WillReturnRows(rows)

	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 120, out[0].TotalStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryListByLevel(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	rows := sqlmock.NewRows([]string{"group_id", "level_id", "group_number", "num_students"}).
		AddRow(1000, 1, 1, 35)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT group_id, level_id, group_number, num_students FROM groups WHERE level_id = $1 ORDER BY group_number")).
		WithArgs(1).
		WillReturnRows(rows)

	out, err := repo.ListByLevel(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 35, out[0].NumStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sections")).
		WithArgs(1, 1000, 1, 20).
		WillReturnRows(sqlmock.NewRows([]string{"section_id"}).AddRow(2000))

	section := &domain.Section{LevelID: 1, GroupID: 1000, SectionNumber: 1, NumStudents: 20}
	require.NoError(t, repo.Create(context.Background(), section))
	assert.Equal(t, 2000, section.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateAndQualify(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO courses")).
		WithArgs("CS101", "Intro to CS", 1).
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow(10))

	course := &domain.Course{Code: "CS101", Name: "Intro to CS", Level: 1}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, 10, course.ID)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instructor_qualified_courses")).
		WithArgs(100, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.QualifyInstructor(context.Background(), 10, 100))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ta_qualified_courses")).
		WithArgs(200, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.QualifyTA(context.Background(), 10, 200))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorRepositoryListAndCreate(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewInstructorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO instructors (instructor_name) VALUES ($1) RETURNING instructor_id")).
		WithArgs("Dr. A").
		WillReturnRows(sqlmock.NewRows([]string{"instructor_id"}).AddRow(100))
	instructor := &domain.Instructor{Name: "Dr. A"}
	require.NoError(t, repo.Create(context.Background(), instructor))
	assert.Equal(t, 100, instructor.ID)

	rows := sqlmock.NewRows([]string{"instructor_id", "instructor_name"}).AddRow(100, "Dr. A")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT instructor_id, instructor_name FROM instructors ORDER BY instructor_id")).
		WillReturnRows(rows)
	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Dr. A", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTARepositoryListAndCreate(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewTARepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tas (ta_name) VALUES ($1) RETURNING ta_id")).
		WithArgs("TA A").
		WillReturnRows(sqlmock.NewRows([]string{"ta_id"}).AddRow(200))
	ta := &domain.TA{Name: "TA A"}
	require.NoError(t, repo.Create(context.Background(), ta))
	assert.Equal(t, 200, ta.ID)

	rows := sqlmock.NewRows([]string{"ta_id", "ta_name"}).AddRow(200, "TA A")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ta_id, ta_name FROM tas ORDER BY ta_id")).
		WillReturnRows(rows)
	out, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "TA A", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
