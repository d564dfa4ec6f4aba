package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/dto"
	"github.com/noah-isme/timetable-solver/internal/middleware"
	"github.com/noah-isme/timetable-solver/internal/repository"
	"github.com/noah-isme/timetable-solver/pkg/response"
)

type scheduleBrowser interface {
	List(ctx context.Context, filter repository.ScheduleBrowseFilter) ([]domain.Assignment, error)
}

// ScheduleBrowseHandler exposes the read-only `/schedule` endpoint (spec §5).
type ScheduleBrowseHandler struct {
	repo scheduleBrowser
}

// NewScheduleBrowseHandler constructs the handler.
func NewScheduleBrowseHandler(repo *repository.ScheduleBrowseRepository) *ScheduleBrowseHandler {
	return &ScheduleBrowseHandler{repo: repo}
}

// List godoc
// @Summary Browse the persisted schedule
// @Tags Scheduler
// @Produce json
// @Param day query string false "Filter by weekday name"
// @Param instructorId query int false "Filter by instructor"
// @Param taId query int false "Filter by teaching assistant"
// @Param courseId query int false "Filter by course"
// @Param groupId query int false "Filter by group"
// @Param roomId query int false "Filter by room"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleBrowseHandler) List(c *gin.Context) {
	filter := repository.ScheduleBrowseFilter{
		Day:          c.Query("day"),
		InstructorID: atoiOrZero(c.Query("instructorId")),
		TAID:         atoiOrZero(c.Query("taId")),
		CourseID:     atoiOrZero(c.Query("courseId")),
		GroupID:      atoiOrZero(c.Query("groupId")),
		RoomID:       atoiOrZero(c.Query("roomId")),
	}
	assignments, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	// The browse endpoint always reads through to Postgres; SetCacheHit(false)
	// keeps its response meta shape consistent with any endpoint that does
	// cache, for clients that key off `meta.cache_hit`.
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, assignmentsToDTOs(assignments), nil, middleware.ExtractMeta(c))
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// assignmentsToDTOs mirrors service.toAssignmentDTOs: the handler package
// renders the same wire shape from the browse repository's results that the
// generator service renders from a solve, so both endpoints return
// identically shaped assignments.
func assignmentsToDTOs(assignments []domain.Assignment) []dto.AssignmentDTO {
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
