package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solver/internal/domain"
)

// SnapshotRepository is the Postgres-backed implementation of
// snapshot.Loader: the sole adapter between the academic catalog tables and
// the core solver, which never imports sqlx or this package directly.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository builds a repository bound to db.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

type roomRow struct {
	ID           int    `db:"room_id"`
	Type         string `db:"room_type"`
	Capacity     int    `db:"capacity"`
	RoomNumber   string `db:"room_number"`
	BuildingName string `db:"building_name"`
}

// ListRooms returns every room, joined with its building name.
func (r *SnapshotRepository) ListRooms(ctx context.Context) ([]domain.Room, error) {
	const query = `
SELECT r.room_id, r.room_type, r.capacity, r.room_number, b.building_name
FROM rooms r
JOIN buildings b ON b.building_id = r.building_id
ORDER BY r.room_id`

	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	rooms := make([]domain.Room, len(rows))
	for i, row := range rows {
		rooms[i] = domain.Room{
			ID:           row.ID,
			Type:         domain.RoomType(row.Type),
			Capacity:     row.Capacity,
			RoomNumber:   row.RoomNumber,
			BuildingName: row.BuildingName,
		}
	}
	return rooms, nil
}

type courseRow struct {
	ID      int    `db:"course_id"`
	Code    string `db:"course_code"`
	Name    string `db:"course_name"`
	LevelID int    `db:"level_id"`
}

// ListCourses returns every course in the catalog, ordered by ID so the
// solver's generation order (spec §4.2) is deterministic across runs.
func (r *SnapshotRepository) ListCourses(ctx context.Context) ([]domain.Course, error) {
	const query = `SELECT course_id, course_code, course_name, level_id FROM courses ORDER BY course_id`

	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	courses := make([]domain.Course, len(rows))
	for i, row := range rows {
		courses[i] = domain.Course{ID: row.ID, Code: row.Code, Name: row.Name, Level: row.LevelID}
	}
	return courses, nil
}

type instructorRow struct {
	ID   int    `db:"instructor_id"`
	Name string `db:"instructor_name"`
}

// QualifiedInstructors returns the instructors qualified to teach courseID
// via instructor_qualified_courses.
func (r *SnapshotRepository) QualifiedInstructors(ctx context.Context, courseID int) ([]domain.Instructor, error) {
	const query = `
SELECT i.instructor_id, i.instructor_name
FROM instructors i
JOIN instructor_qualified_courses iqc ON iqc.instructor_id = i.instructor_id
WHERE iqc.course_id = $1
ORDER BY i.instructor_id`

	var rows []instructorRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("list qualified instructors for course %d: %w", courseID, err)
	}

	instructors := make([]domain.Instructor, len(rows))
	for i, row := range rows {
		instructors[i] = domain.Instructor{ID: row.ID, Name: row.Name}
	}
	return instructors, nil
}

type taRow struct {
	ID   int    `db:"ta_id"`
	Name string `db:"ta_name"`
}

// QualifiedTAs returns the TAs qualified to teach courseID via
// ta_qualified_courses.
func (r *SnapshotRepository) QualifiedTAs(ctx context.Context, courseID int) ([]domain.TA, error) {
	const query = `
SELECT t.ta_id, t.ta_name
FROM tas t
JOIN ta_qualified_courses tqc ON tqc.ta_id = t.ta_id
WHERE tqc.course_id = $1
ORDER BY t.ta_id`

	var rows []taRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("list qualified tas for course %d: %w", courseID, err)
	}

	tas := make([]domain.TA, len(rows))
	for i, row := range rows {
		tas[i] = domain.TA{ID: row.ID, Name: row.Name}
	}
	return tas, nil
}

type groupRow struct {
	ID          int `db:"group_id"`
	LevelID     int `db:"level_id"`
	GroupNumber int `db:"group_number"`
	NumStudents int `db:"num_students"`
}

// GroupsOfLevel returns levelID's groups, ordered by group number so the
// generator's enumeration order (spec §4.2) is stable.
func (r *SnapshotRepository) GroupsOfLevel(ctx context.Context, levelID int) ([]domain.Group, error) {
	const query = `
SELECT group_id, level_id, group_number, num_students
FROM groups WHERE level_id = $1 ORDER BY group_number`

	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, query, levelID); err != nil {
		return nil, fmt.Errorf("list groups of level %d: %w", levelID, err)
	}

	groups := make([]domain.Group, len(rows))
	for i, row := range rows {
		groups[i] = domain.Group{ID: row.ID, LevelID: row.LevelID, GroupNumber: row.GroupNumber, NumStudents: row.NumStudents}
	}
	return groups, nil
}

type sectionRow struct {
	ID            int `db:"section_id"`
	GroupID       int `db:"group_id"`
	LevelID       int `db:"level_id"`
	SectionNumber int `db:"section_number"`
	NumStudents   int `db:"num_students"`
}

// SectionsOfGroup returns groupID's sections, ordered by section number.
func (r *SnapshotRepository) SectionsOfGroup(ctx context.Context, groupID int) ([]domain.Section, error) {
	const query = `
SELECT section_id, group_id, level_id, section_number, num_students
FROM sections WHERE group_id = $1 ORDER BY section_number`

	var rows []sectionRow
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("list sections of group %d: %w", groupID, err)
	}

	sections := make([]domain.Section, len(rows))
	for i, row := range rows {
		sections[i] = domain.Section{
			ID:            row.ID,
			GroupID:       row.GroupID,
			LevelID:       row.LevelID,
			SectionNumber: row.SectionNumber,
			NumStudents:   row.NumStudents,
		}
	}
	return sections, nil
}
