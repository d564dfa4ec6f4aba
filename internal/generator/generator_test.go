package generator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/generator"
	"github.com/noah-isme/timetable-solver/internal/snapshot"
)

// fixtureLoader is an in-memory snapshot.Loader for generator tests.
type fixtureLoader struct {
	rooms       []domain.Room
	courses     []domain.Course
	instructors map[int][]domain.Instructor
	tas         map[int][]domain.TA
	groups      map[int][]domain.Group
	sections    map[int][]domain.Section
}

func (f *fixtureLoader) ListRooms(ctx context.Context) ([]domain.Room, error) { return f.rooms, nil }
func (f *fixtureLoader) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return f.courses, nil
}
func (f *fixtureLoader) QualifiedInstructors(ctx context.Context, courseID int) ([]domain.Instructor, error) {
	return f.instructors[courseID], nil
}
func (f *fixtureLoader) QualifiedTAs(ctx context.Context, courseID int) ([]domain.TA, error) {
	return f.tas[courseID], nil
}
func (f *fixtureLoader) GroupsOfLevel(ctx context.Context, levelID int) ([]domain.Group, error) {
	return f.groups[levelID], nil
}
func (f *fixtureLoader) SectionsOfGroup(ctx context.Context, groupID int) ([]domain.Section, error) {
	return f.sections[groupID], nil
}

func baseFixture() *fixtureLoader {
	return &fixtureLoader{
		rooms: []domain.Room{
			{ID: 1, Type: domain.Classroom, Capacity: 40, RoomNumber: "101"},
			{ID: 2, Type: domain.RoomLab, Capacity: 30, RoomNumber: "L1"},
			{ID: 3, Type: domain.Theater, Capacity: 200, RoomNumber: "T1"},
		},
		courses: []domain.Course{
			{ID: 10, Code: "CS101", Name: "Intro to CS", Level: 1},
		},
		instructors: map[int][]domain.Instructor{10: {{ID: 100, Name: "Dr. A"}}},
		tas:         map[int][]domain.TA{10: {{ID: 200, Name: "TA A"}}},
		groups: map[int][]domain.Group{
			1: {{ID: 1000, LevelID: 1, GroupNumber: 1, NumStudents: 35}},
		},
		sections: map[int][]domain.Section{
			1000: {{ID: 2000, GroupID: 1000, LevelID: 1, SectionNumber: 1, NumStudents: 20}},
		},
	}
}

func TestGenerateMinimal(t *testing.T) {
	f := baseFixture()
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)

	vars, err := generator.Generate(snap)
	require.NoError(t, err)
	require.Len(t, vars, 3)

	assert.Equal(t, domain.Lecture, vars[0].SessionType)
	assert.Equal(t, domain.Classroom, vars[0].RequiredRoom)
	assert.Equal(t, 2, vars[0].DurationBlocks)

	assert.Equal(t, domain.Lab, vars[1].SessionType)
	assert.Equal(t, domain.RoomLab, vars[1].RequiredRoom)
	assert.True(t, vars[1].HasSection)

	assert.Equal(t, domain.Tutorial, vars[2].SessionType)
	assert.Equal(t, domain.Classroom, vars[2].RequiredRoom)
	assert.Equal(t, 2, vars[2].DurationBlocks)

	for i, v := range vars {
		assert.Equal(t, i, v.VarID)
	}
}

func TestGenerateLectureRoomForcedByGroupSize(t *testing.T) {
	f := baseFixture()
	f.groups[1][0].NumStudents = 150 // forces Theater
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)

	vars, err := generator.Generate(snap)
	require.NoError(t, err)
	assert.Equal(t, domain.Theater, vars[0].RequiredRoom)
}

func TestGenerateSmallTutorialIsOneBlock(t *testing.T) {
	f := baseFixture()
	f.sections[1000][0].NumStudents = 12
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)

	vars, err := generator.Generate(snap)
	require.NoError(t, err)
	require.Len(t, vars, 3)
	assert.Equal(t, domain.Tutorial, vars[2].SessionType)
	assert.Equal(t, 1, vars[2].DurationBlocks)
}

func TestGenerateCapacityShortfall(t *testing.T) {
	f := baseFixture()
	f.groups[1][0].NumStudents = 500 // no Theater seats 500
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)

	_, err = generator.Generate(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CapacityShortfall")
}

func TestGenerateInvalidInputNoGroups(t *testing.T) {
	f := baseFixture()
	f.groups[1] = nil
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)

	_, err = generator.Generate(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidInput")
}

func TestGenerateInvalidInputNoSections(t *testing.T) {
	f := baseFixture()
	f.sections[1000] = nil
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)

	_, err = generator.Generate(snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidInput")
}
