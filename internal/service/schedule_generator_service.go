package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/dto"
	"github.com/noah-isme/timetable-solver/internal/generator"
	"github.com/noah-isme/timetable-solver/internal/snapshot"
	"github.com/noah-isme/timetable-solver/internal/solver"
	"github.com/noah-isme/timetable-solver/internal/solvererr"
	appErrors "github.com/noah-isme/timetable-solver/pkg/errors"
)

// resultPersister is the write side of spec §6: the only thing the service
// needs from `internal/repository` to commit a solved schedule.
type resultPersister interface {
	Save(ctx context.Context, assignments []domain.Assignment) error
}

// proposalCache holds a generated-but-not-yet-saved proposal between the
// two calls of spec §4's two-phase Generate/Save flow. Backed by Redis in
// production (`redisProposalCache`) so any API replica can serve Save for a
// proposal another replica generated.
type proposalCache interface {
	Save(ctx context.Context, proposal scheduleProposal, ttl time.Duration) error
	Get(ctx context.Context, id string) (scheduleProposal, bool, error)
	Delete(ctx context.Context, id string) error
}

// runLocker serializes concurrent generation runs (spec §5 "typically via a
// process-wide lock", generalized to a distributed lock so it holds across
// replicas).
type runLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

const scheduleGenerationLockKey = "timetable:generate:lock"

// scheduleProposal is the cached result of one Generate call.
type scheduleProposal struct {
	ProposalID  string
	Assignments []domain.Assignment
	GeneratedAt time.Time
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	ProposalTTL    time.Duration
	DefaultTimeout time.Duration
	LockTTL        time.Duration
}

// solverMetrics observes each Generate run, optional so tests can omit it.
type solverMetrics interface {
	ObserveSolverRun(duration time.Duration, variablesPlaced int, infeasibleKind string)
}

// ScheduleGeneratorService runs the backtracking solver over the current
// academic catalog snapshot and persists the result a caller chooses to
// keep. Grounded on the teacher's `ScheduleGeneratorService`: the same
// narrow-interface constructor, nil-default wiring, and two-phase
// Generate/Save proposal flow — the heuristic repair/scoring internals are
// replaced by `internal/generator` + `internal/solver`, since spec §4
// requires exact backtracking rather than a scored heuristic.
type ScheduleGeneratorService struct {
	loader    snapshot.Loader
	persister resultPersister
	cache     proposalCache
	lock      runLocker
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleGeneratorConfig
	metrics   solverMetrics
}

// NewScheduleGeneratorService wires scheduler dependencies. metrics may be
// nil; Generate skips observation when it is.
func NewScheduleGeneratorService(
	loader snapshot.Loader,
	persister resultPersister,
	cache proposalCache,
	lock runLocker,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
	metrics solverMetrics,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 10 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cache == nil {
		cache = newInMemoryProposalCache()
	}
	if lock == nil {
		lock = newInMemoryRunLocker()
	}
	return &ScheduleGeneratorService{
		loader:    loader,
		persister: persister,
		cache:     cache,
		lock:      lock,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		metrics:   metrics,
	}
}

// Generate loads the current academic catalog, runs the solver within
// req's wall-clock budget (or the service default), and caches the result
// as a proposal a caller must explicitly Save to persist (spec §4, two-phase
// flow).
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	acquired, err := s.lock.TryLock(ctx, scheduleGenerationLockKey, s.cfg.LockTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lock")
	}
	if !acquired {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a schedule generation run is already in progress")
	}
	defer func() {
		if unlockErr := s.lock.Unlock(ctx, scheduleGenerationLockKey); unlockErr != nil {
			s.logger.Sugar().Warnw("failed to release generation lock", "error", unlockErr)
		}
	}()

	snap, err := snapshot.Build(ctx, s.loader)
	if err != nil {
		return nil, appErrors.FromSolverError(err)
	}

	variables, err := generator.Generate(snap)
	if err != nil {
		return nil, appErrors.FromSolverError(err)
	}

	timeout := s.cfg.DefaultTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	solveStart := time.Now()
	result, err := solver.Solve(solveCtx, snap, variables)
	solveDuration := time.Since(solveStart)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveSolverRun(solveDuration, 0, infeasibleKind(err))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "schedule generation exceeded its wall-clock budget")
		}
		if errors.Is(err, context.Canceled) {
			return nil, appErrors.Wrap(err, "CANCELED", 499, "schedule generation was canceled")
		}
		return nil, appErrors.FromSolverError(err)
	}
	if s.metrics != nil {
		s.metrics.ObserveSolverRun(solveDuration, len(result.Assignments), "")
	}

	proposal := scheduleProposal{
		ProposalID:  uuid.NewString(),
		Assignments: result.Assignments,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.cache.Save(ctx, proposal, s.cfg.ProposalTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cache schedule proposal")
	}

	return &dto.GenerateScheduleResponse{
		ProposalID:  proposal.ProposalID,
		Assignments: toAssignmentDTOs(proposal.Assignments),
		GeneratedAt: proposal.GeneratedAt,
	}, nil
}

// Save persists a cached proposal transactionally through the
// ResultPersister, clearing the prior schedule first (spec §6/§7: atomic
// batch, rollback on any failure, no partial writes).
func (s *ScheduleGeneratorService) Save(ctx context.Context, req dto.SaveScheduleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save schedule payload")
	}
	proposal, found, err := s.cache.Get(ctx, req.ProposalID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cached proposal")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}

	if err := s.persister.Save(ctx, proposal.Assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule")
	}

	if err := s.cache.Delete(ctx, req.ProposalID); err != nil {
		s.logger.Sugar().Warnw("failed to evict saved proposal from cache", "proposalId", req.ProposalID, "error", err)
	}
	return nil
}

func infeasibleKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	default:
		var infeasible *solvererr.Infeasible
		if errors.As(err, &infeasible) {
			return string(infeasible.Kind)
		}
		return "INFEASIBLE"
	}
}

func toAssignmentDTOs(assignments []domain.Assignment) []dto.AssignmentDTO {
	out := make([]dto.AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		startTime, _ := a.StartTime()
		endTime, _ := a.EndTime()
		out = append(out, dto.AssignmentDTO{
			CourseCode:    a.Variable.CourseCode,
			CourseName:    a.Variable.CourseName,
			SessionType:   string(a.Variable.SessionType),
			GroupNumber:   a.Variable.GroupNumber,
			SectionNumber: a.Variable.SectionNumber,
			Day:           a.Day.String(),
			StartTime:     startTime,
			EndTime:       endTime,
			RoomNumber:    a.RoomNumber,
			BuildingName:  a.BuildingName,
			Teacher:       a.TeacherName(),
		})
	}
	return out
}
