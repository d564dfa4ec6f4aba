package candidates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solver/internal/calendar"
	"github.com/noah-isme/timetable-solver/internal/candidates"
	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/snapshot"
)

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

func buildSnapshot(t *testing.T, f *fixtureLoader) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Build(context.Background(), f)
	require.NoError(t, err)
	return snap
}

func TestGenerateLectureDomainUsesTwoBlockStarts(t *testing.T) {
	f := &fixtureLoader{
		rooms: []domain.Room{
			{ID: 1, Type: domain.Classroom, Capacity: 40},
			{ID: 2, Type: domain.Classroom, Capacity: 10}, // too small, filtered out
		},
		courses:     []domain.Course{{ID: 10, Code: "CS101", Level: 1}},
		instructors: map[int][]domain.Instructor{10: {{ID: 100, Name: "Dr. A"}}},
		tas:         map[int][]domain.TA{},
	}
	snap := buildSnapshot(t, f)

	v := domain.SessionVariable{
		CourseID: 10, CourseCode: "CS101",
		SessionType: domain.Lecture, DurationBlocks: 2,
		StudentCount: 35, RequiredRoom: domain.Classroom,
	}

	cands, err := candidates.Generate(snap, v)
	require.NoError(t, err)
	require.NotEmpty(t, cands)

	for _, c := range cands {
		assert.Contains(t, calendar.ValidStartBlocks2, c.StartBlock)
		assert.Equal(t, 1, c.Room.ID) // only the 40-capacity room survives
		assert.True(t, c.StaffIsInstructor)
		assert.Equal(t, 100, c.StaffID)
	}

	// 5 days * 4 valid starts * 1 room * 1 instructor
	assert.Len(t, cands, 5*4*1*1)
}

func TestGenerateLabUsesTAsOnly(t *testing.T) {
	f := &fixtureLoader{
		rooms:       []domain.Room{{ID: 1, Type: domain.RoomLab, Capacity: 30}},
		courses:     []domain.Course{{ID: 10, Code: "CS101", Level: 1}},
		instructors: map[int][]domain.Instructor{10: {{ID: 100, Name: "Dr. A"}}},
		tas:         map[int][]domain.TA{10: {{ID: 200, Name: "TA A"}}},
	}
	snap := buildSnapshot(t, f)

	v := domain.SessionVariable{
		CourseID: 10, CourseCode: "CS101",
		SessionType: domain.Lab, DurationBlocks: 2,
		StudentCount: 20, RequiredRoom: domain.RoomLab,
	}

	cands, err := candidates.Generate(snap, v)
	require.NoError(t, err)
	require.NotEmpty(t, cands)
	for _, c := range cands {
		assert.False(t, c.StaffIsInstructor)
		assert.Equal(t, 200, c.StaffID)
	}
}

func TestGenerateOneBlockTutorialAllowsAnyFittingStart(t *testing.T) {
	f := &fixtureLoader{
		rooms:   []domain.Room{{ID: 1, Type: domain.Classroom, Capacity: 30}},
		courses: []domain.Course{{ID: 10, Code: "CS101", Level: 1}},
		tas:     map[int][]domain.TA{10: {{ID: 200, Name: "TA A"}}},
	}
	snap := buildSnapshot(t, f)

	v := domain.SessionVariable{
		CourseID: 10, CourseCode: "CS101",
		SessionType: domain.Tutorial, DurationBlocks: 1,
		StudentCount: 12, RequiredRoom: domain.Classroom,
	}

	cands, err := candidates.Generate(snap, v)
	require.NoError(t, err)
	// 5 days * 8 starts (1-block fits everywhere) * 1 room * 1 TA
	assert.Len(t, cands, 5*8*1*1)
}

func TestGenerateNoQualifiedStaffIsInfeasible(t *testing.T) {
	f := &fixtureLoader{
		rooms:       []domain.Room{{ID: 1, Type: domain.Classroom, Capacity: 40}},
		courses:     []domain.Course{{ID: 10, Code: "CS101", Level: 1}},
		instructors: map[int][]domain.Instructor{},
	}
	snap := buildSnapshot(t, f)

	v := domain.SessionVariable{
		CourseID: 10, CourseCode: "CS101",
		SessionType: domain.Lecture, DurationBlocks: 2,
		StudentCount: 20, RequiredRoom: domain.Classroom,
	}

	_, err := candidates.Generate(snap, v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoQualifiedStaff")
}

func TestGenerateRoomTooSmallYieldsNoCandidates(t *testing.T) {
	f := &fixtureLoader{
		rooms:       []domain.Room{{ID: 1, Type: domain.Classroom, Capacity: 10}},
		courses:     []domain.Course{{ID: 10, Code: "CS101", Level: 1}},
		instructors: map[int][]domain.Instructor{10: {{ID: 100, Name: "Dr. A"}}},
	}
	snap := buildSnapshot(t, f)

	v := domain.SessionVariable{
		CourseID: 10, CourseCode: "CS101",
		SessionType: domain.Lecture, DurationBlocks: 2,
		StudentCount: 35, RequiredRoom: domain.Classroom,
	}

	cands, err := candidates.Generate(snap, v)
	require.NoError(t, err)
	assert.Empty(t, cands)
}
