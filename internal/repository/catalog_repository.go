package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-solver/internal/domain"
)

// The catalog repositories below are the thin CRUD layer the academic
// structure is authored through: buildings, rooms, levels, groups,
// sections, courses, instructors and TAs. They are grounded on
// `original_source/api/crud.py`'s per-entity functions, translated into the
// teacher's sqlx repository idiom (one struct per table, `db *sqlx.DB`,
// explicit SQL, `GetContext`/`SelectContext` for writes and reads) without
// the List/filter/pagination machinery the teacher's UUID-keyed
// student-records repositories carry, since the academic catalog has no
// equivalent search/sort requirement in this domain. They feed
// `internal/snapshot` through `SnapshotRepository`, never the solver
// directly.

// BuildingRepository manages persistence for buildings.
type BuildingRepository struct{ db *sqlx.DB }

// NewBuildingRepository builds a repository bound to db.
func NewBuildingRepository(db *sqlx.DB) *BuildingRepository { return &BuildingRepository{db: db} }

type buildingRow struct {
	ID   int    `db:"building_id"`
	Name string `db:"building_name"`
}

// List returns every building.
func (r *BuildingRepository) List(ctx context.Context) ([]domain.Building, error) {
	var rows []buildingRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT building_id, building_name FROM buildings ORDER BY building_id`); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	out := make([]domain.Building, len(rows))
	for i, row := range rows {
		out[i] = domain.Building{ID: row.ID, Name: row.Name}
	}
	return out, nil
}

// Create persists a new building and fills in its generated ID.
func (r *BuildingRepository) Create(ctx context.Context, b *domain.Building) error {
	const query = `INSERT INTO buildings (building_name) VALUES ($1) RETURNING building_id`
	if err := r.db.GetContext(ctx, &b.ID, query, b.Name); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// RoomRepository manages persistence for rooms.
type RoomRepository struct{ db *sqlx.DB }

// NewRoomRepository builds a repository bound to db.
func NewRoomRepository(db *sqlx.DB) *RoomRepository { return &RoomRepository{db: db} }

// List returns every room, joined with its building name.
func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	const query = `
SELECT r.room_id, r.room_type, r.capacity, r.room_number, b.building_name
FROM rooms r JOIN buildings b ON b.building_id = r.building_id
ORDER BY r.room_id`
	var rows []roomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]domain.Room, len(rows))
	for i, row := range rows {
		out[i] = domain.Room{
			ID:           row.ID,
			Type:         domain.RoomType(row.Type),
			Capacity:     row.Capacity,
			RoomNumber:   row.RoomNumber,
			BuildingName: row.BuildingName,
		}
	}
	return out, nil
}

// Create persists a new room under buildingID.
func (r *RoomRepository) Create(ctx context.Context, buildingID int, room *domain.Room) error {
	const query = `
INSERT INTO rooms (building_id, room_number, room_type, capacity)
VALUES ($1, $2, $3, $4) RETURNING room_id`
	if err := r.db.GetContext(ctx, &room.ID, query, buildingID, room.RoomNumber, string(room.Type), room.Capacity); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Delete removes a room by ID.
func (r *RoomRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = $1`, id); err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	return nil
}

// LevelRepository manages persistence for levels.
type LevelRepository struct{ db *sqlx.DB }

// NewLevelRepository builds a repository bound to db.
func NewLevelRepository(db *sqlx.DB) *LevelRepository { return &LevelRepository{db: db} }

type levelRow struct {
	ID                  int    `db:"level_id"`
	Name                string `db:"level_name"`
	Specialization      string `db:"specialization"`
	NumSections         int    `db:"num_sections"`
	NumGroupsPerSection int    `db:"num_groups_per_section"`
	TotalStudents       int    `db:"total_students"`
}

// List returns every level.
func (r *LevelRepository) List(ctx context.Context) ([]domain.Level, error) {
	const query = `
SELECT level_id, level_name, specialization, num_sections, num_groups_per_section, total_students
FROM levels ORDER BY level_id`
	var rows []levelRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	out := make([]domain.Level, len(rows))
	for i, row := range rows {
		out[i] = domain.Level{
			ID:                  row.ID,
			Name:                row.Name,
			Specialization:      row.Specialization,
			NumSections:         row.NumSections,
			NumGroupsPerSection: row.NumGroupsPerSection,
			TotalStudents:       row.TotalStudents,
		}
	}
	return out, nil
}

// Create persists a new level.
func (r *LevelRepository) Create(ctx context.Context, level *domain.Level) error {
	const query = `
INSERT INTO levels (level_name, specialization, num_sections, num_groups_per_section, total_students)
VALUES ($1, $2, $3, $4, $5) RETURNING level_id`
	err := r.db.GetContext(ctx, &level.ID, query,
		level.Name, level.Specialization, level.NumSections, level.NumGroupsPerSection, level.TotalStudents)
	if err != nil {
		return fmt.Errorf("create level: %w", err)
	}
	return nil
}

// GroupRepository manages persistence for groups.
type GroupRepository struct{ db *sqlx.DB }

// NewGroupRepository builds a repository bound to db.
func NewGroupRepository(db *sqlx.DB) *GroupRepository { return &GroupRepository{db: db} }

// ListByLevel returns levelID's groups ordered by group number.
func (r *GroupRepository) ListByLevel(ctx context.Context, levelID int) ([]domain.Group, error) {
	const query = `SELECT group_id, level_id, group_number, num_students FROM groups WHERE level_id = $1 ORDER BY group_number`
	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, query, levelID); err != nil {
		return nil, fmt.Errorf("list groups of level %d: %w", levelID, err)
	}
	out := make([]domain.Group, len(rows))
	for i, row := range rows {
		out[i] = domain.Group{ID: row.ID, LevelID: row.LevelID, GroupNumber: row.GroupNumber, NumStudents: row.NumStudents}
	}
	return out, nil
}

// Create persists a new group.
func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	const query = `
INSERT INTO groups (level_id, group_number, num_students)
VALUES ($1, $2, $3) RETURNING group_id`
	if err := r.db.GetContext(ctx, &group.ID, query, group.LevelID, group.GroupNumber, group.NumStudents); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// SectionRepository manages persistence for sections.
type SectionRepository struct{ db *sqlx.DB }

// NewSectionRepository builds a repository bound to db.
func NewSectionRepository(db *sqlx.DB) *SectionRepository { return &SectionRepository{db: db} }

// ListByGroup returns groupID's sections ordered by section number.
func (r *SectionRepository) ListByGroup(ctx context.Context, groupID int) ([]domain.Section, error) {
	const query = `
SELECT section_id, group_id, level_id, section_number, num_students
FROM sections WHERE group_id = $1 ORDER BY section_number`
	var rows []sectionRow
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("list sections of group %d: %w", groupID, err)
	}
	out := make([]domain.Section, len(rows))
	for i, row := range rows {
		out[i] = domain.Section{
			ID:            row.ID,
			GroupID:       row.GroupID,
			LevelID:       row.LevelID,
			SectionNumber: row.SectionNumber,
			NumStudents:   row.NumStudents,
		}
	}
	return out, nil
}

// Create persists a new section.
func (r *SectionRepository) Create(ctx context.Context, section *domain.Section) error {
	const query = `
INSERT INTO sections (level_id, group_id, section_number, num_students)
VALUES ($1, $2, $3, $4) RETURNING section_id`
	err := r.db.GetContext(ctx, &section.ID, query,
		section.LevelID, section.GroupID, section.SectionNumber, section.NumStudents)
	if err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// CourseRepository manages persistence for courses and their staff
// qualifications.
type CourseRepository struct{ db *sqlx.DB }

// NewCourseRepository builds a repository bound to db.
func NewCourseRepository(db *sqlx.DB) *CourseRepository { return &CourseRepository{db: db} }

// List returns every course.
func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	const query = `SELECT course_id, course_code, course_name, level_id FROM courses ORDER BY course_id`
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]domain.Course, len(rows))
	for i, row := range rows {
		out[i] = domain.Course{ID: row.ID, Code: row.Code, Name: row.Name, Level: row.LevelID}
	}
	return out, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
INSERT INTO courses (course_code, course_name, level_id)
VALUES ($1, $2, $3) RETURNING course_id`
	if err := r.db.GetContext(ctx, &course.ID, query, course.Code, course.Name, course.Level); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// QualifyInstructor records that instructorID may teach courseID's
// lectures.
func (r *CourseRepository) QualifyInstructor(ctx context.Context, courseID, instructorID int) error {
	const query = `
INSERT INTO instructor_qualified_courses (instructor_id, course_id)
VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, instructorID, courseID); err != nil {
		return fmt.Errorf("qualify instructor %d for course %d: %w", instructorID, courseID, err)
	}
	return nil
}

// QualifyTA records that taID may teach courseID's labs and tutorials.
func (r *CourseRepository) QualifyTA(ctx context.Context, courseID, taID int) error {
	const query = `
INSERT INTO ta_qualified_courses (ta_id, course_id)
VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, taID, courseID); err != nil {
		return fmt.Errorf("qualify ta %d for course %d: %w", taID, courseID, err)
	}
	return nil
}

// InstructorRepository manages persistence for instructors.
type InstructorRepository struct{ db *sqlx.DB }

// NewInstructorRepository builds a repository bound to db.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns every instructor.
func (r *InstructorRepository) List(ctx context.Context) ([]domain.Instructor, error) {
	var rows []instructorRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT instructor_id, instructor_name FROM instructors ORDER BY instructor_id`); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	out := make([]domain.Instructor, len(rows))
	for i, row := range rows {
		out[i] = domain.Instructor{ID: row.ID, Name: row.Name}
	}
	return out, nil
}

// Create persists a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	const query = `INSERT INTO instructors (instructor_name) VALUES ($1) RETURNING instructor_id`
	if err := r.db.GetContext(ctx, &instructor.ID, query, instructor.Name); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// TARepository manages persistence for teaching assistants.
type TARepository struct{ db *sqlx.DB }

// NewTARepository builds a repository bound to db.
func NewTARepository(db *sqlx.DB) *TARepository { return &TARepository{db: db} }

// List returns every TA.
func (r *TARepository) List(ctx context.Context) ([]domain.TA, error) {
	var rows []taRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT ta_id, ta_name FROM tas ORDER BY ta_id`); err != nil {
		return nil, fmt.Errorf("list tas: %w", err)
	}
	out := make([]domain.TA, len(rows))
	for i, row := range rows {
		out[i] = domain.TA{ID: row.ID, Name: row.Name}
	}
	return out, nil
}

// Create persists a new TA.
func (r *TARepository) Create(ctx context.Context, ta *domain.TA) error {
	const query = `INSERT INTO tas (ta_name) VALUES ($1) RETURNING ta_id`
	if err := r.db.GetContext(ctx, &ta.ID, query, ta.Name); err != nil {
		return fmt.Errorf("create ta: %w", err)
	}
	return nil
}
