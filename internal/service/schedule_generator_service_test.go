package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/dto"
	appErrors "github.com/noah-isme/timetable-solver/pkg/errors"
)

// emptyLoader reports an academic catalog with no courses, the simplest
// snapshot the solver can run over (trivially feasible, empty result).
type emptyLoader struct{}

func (emptyLoader) ListRooms(context.Context) ([]domain.Room, error)     { return nil, nil }
func (emptyLoader) ListCourses(context.Context) ([]domain.Course, error) { return nil, nil }
func (emptyLoader) QualifiedInstructors(context.Context, int) ([]domain.Instructor, error) {
	return nil, nil
}
func (emptyLoader) QualifiedTAs(context.Context, int) ([]domain.TA, error) { return nil, nil }
func (emptyLoader) GroupsOfLevel(context.Context, int) ([]domain.Group, error) {
	return nil, nil
}
func (emptyLoader) SectionsOfGroup(context.Context, int) ([]domain.Section, error) {
	return nil, nil
}

type fakePersister struct {
	saved []domain.Assignment
	err   error
}

func (f *fakePersister) Save(_ context.Context, assignments []domain.Assignment) error {
	if f.err != nil {
		return f.err
	}
	f.saved = assignments
	return nil
}

func newTestService(t *testing.T, persister resultPersister) *ScheduleGeneratorService {
	t.Helper()
	return NewScheduleGeneratorService(emptyLoader{}, persister, nil, nil, nil, nil, ScheduleGeneratorConfig{}, nil)
}

func TestScheduleGeneratorServiceGenerateThenSave(t *testing.T) {
	persister := &fakePersister{}
	svc := newTestService(t, persister)

	generated, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{TimeoutMS: 1000})
	require.NoError(t, err)
	require.NotEmpty(t, generated.ProposalID)
	assert.Empty(t, generated.Assignments)

	err = svc.Save(context.Background(), dto.SaveScheduleRequest{ProposalID: generated.ProposalID})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.NoError(t, err)

	err = svc.Save(context.Background(), dto.SaveScheduleRequest{ProposalID: generated.ProposalID})
	assert.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleGeneratorServiceSaveUnknownProposal(t *testing.T) {
	svc := newTestService(t, &fakePersister{})
	err := svc.Save(context.Background(), dto.SaveScheduleRequest{ProposalID: "does-not-exist"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestScheduleGeneratorServiceGenerateRejectsConcurrentRun(t *testing.T) {
	lock := newInMemoryRunLocker()
	held, err := lock.TryLock(context.Background(), scheduleGenerationLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	svc := NewScheduleGeneratorService(emptyLoader{}, &fakePersister{}, nil, lock, nil, nil, ScheduleGeneratorConfig{}, nil)
	_, err = svc.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestScheduleGeneratorServiceSavePropagatesPersisterError(t *testing.T) {
	persister := &fakePersister{err: errors.New("insert failed")}
	svc := newTestService(t, persister)

	generated, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.NoError(t, err)

	err = svc.Save(context.Background(), dto.SaveScheduleRequest{ProposalID: generated.ProposalID})
	require.Error(t, err)
}
