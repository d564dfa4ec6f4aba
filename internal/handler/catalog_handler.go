package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/timetable-solver/internal/domain"
	"github.com/noah-isme/timetable-solver/internal/dto"
	"github.com/noah-isme/timetable-solver/internal/repository"
	appErrors "github.com/noah-isme/timetable-solver/pkg/errors"
	"github.com/noah-isme/timetable-solver/pkg/response"
)

// CatalogHandler exposes thin CRUD endpoints over the academic catalog that
// feeds the solver's snapshot (SPEC_FULL.md §5), grounded on
// `original_source/api/routers/*.py`'s list/create routes per entity.
type CatalogHandler struct {
	buildings   *repository.BuildingRepository
	rooms       *repository.RoomRepository
	levels      *repository.LevelRepository
	groups      *repository.GroupRepository
	sections    *repository.SectionRepository
	courses     *repository.CourseRepository
	instructors *repository.InstructorRepository
	tas         *repository.TARepository
	validator   *validator.Validate
}

// NewCatalogHandler wires every catalog repository behind one handler.
func NewCatalogHandler(
	buildings *repository.BuildingRepository,
	rooms *repository.RoomRepository,
	levels *repository.LevelRepository,
	groups *repository.GroupRepository,
	sections *repository.SectionRepository,
	courses *repository.CourseRepository,
	instructors *repository.InstructorRepository,
	tas *repository.TARepository,
) *CatalogHandler {
	return &CatalogHandler{
		buildings:   buildings,
		rooms:       rooms,
		levels:      levels,
		groups:      groups,
		sections:    sections,
		courses:     courses,
		instructors: instructors,
		tas:         tas,
		validator:   validator.New(),
	}
}

// ListBuildings godoc
// @Summary List buildings
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /buildings [get]
func (h *CatalogHandler) ListBuildings(c *gin.Context) {
	buildings, err := h.buildings.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buildings, nil)
}

// CreateBuilding godoc
// @Summary Create a building
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateBuildingRequest true "Building"
// @Success 201 {object} response.Envelope
// @Router /buildings [post]
func (h *CatalogHandler) CreateBuilding(c *gin.Context) {
	var req dto.CreateBuildingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	building := &domain.Building{Name: req.Name}
	if err := h.buildings.Create(c.Request.Context(), building); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, building)
}

// ListRooms godoc
// @Summary List rooms
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *CatalogHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// CreateRoom godoc
// @Summary Create a room
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoomRequest true "Room"
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *CatalogHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	room := &domain.Room{RoomNumber: req.RoomNumber, Type: domain.RoomType(req.Type), Capacity: req.Capacity}
	if err := h.rooms.Create(c.Request.Context(), req.BuildingID, room); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// DeleteRoom godoc
// @Summary Delete a room
// @Tags Catalog
// @Param id path int true "Room ID"
// @Success 204
// @Router /rooms/{id} [delete]
func (h *CatalogHandler) DeleteRoom(c *gin.Context) {
	id := atoiOrZero(c.Param("id"))
	if id == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid room id"))
		return
	}
	if err := h.rooms.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListLevels godoc
// @Summary List levels
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /levels [get]
func (h *CatalogHandler) ListLevels(c *gin.Context) {
	levels, err := h.levels.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// CreateLevel godoc
// @Summary Create a level
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateLevelRequest true "Level"
// @Success 201 {object} response.Envelope
// @Router /levels [post]
func (h *CatalogHandler) CreateLevel(c *gin.Context) {
	var req dto.CreateLevelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	level := &domain.Level{
		Name:                req.Name,
		Specialization:      req.Specialization,
		NumSections:         req.NumSections,
		NumGroupsPerSection: req.NumGroupsPerSection,
		TotalStudents:       req.TotalStudents,
	}
	if err := h.levels.Create(c.Request.Context(), level); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, level)
}

// ListGroups godoc
// @Summary List a level's groups
// @Tags Catalog
// @Produce json
// @Param levelId query int true "Level ID"
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *CatalogHandler) ListGroups(c *gin.Context) {
	levelID := atoiOrZero(c.Query("levelId"))
	groups, err := h.groups.ListByLevel(c.Request.Context(), levelID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// CreateGroup godoc
// @Summary Create a group
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateGroupRequest true "Group"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *CatalogHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if !h.bindJSON(c, &req) {
		return
	}
	group := &domain.Group{LevelID: req.LevelID, GroupNumber: req.GroupNumber, NumStudents: req.NumStudents}
	if err := h.groups.Create(c.Request.Context(), group); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// ListSections godoc
// @Summary List a group's sections
// @Tags Catalog
// @Produce json
// @Param groupId query int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *CatalogHandler) ListSections(c *gin.Context) {
	groupID := atoiOrZero(c.Query("groupId"))
	sections, err := h.sections.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// CreateSection godoc
// @Summary Create a section
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateSectionRequest true "Section"
// @Success 201 {object} response.Envelope
// @Router /sections [post]
func (h *CatalogHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	section := &domain.Section{LevelID: req.LevelID, GroupID: req.GroupID, SectionNumber: req.SectionNumber, NumStudents: req.NumStudents}
	if err := h.sections.Create(c.Request.Context(), section); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// ListCourses godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseRequest true "Course"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}
	course := &domain.Course{Code: req.Code, Name: req.Name, Level: req.LevelID}
	if err := h.courses.Create(c.Request.Context(), course); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// QualifyInstructor godoc
// @Summary Qualify an instructor to teach a course's lectures
// @Tags Catalog
// @Accept json
// @Param payload body dto.QualifyStaffRequest true "Qualification"
// @Success 204
// @Router /courses/qualify-instructor [post]
func (h *CatalogHandler) QualifyInstructor(c *gin.Context) {
	var req dto.QualifyStaffRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.courses.QualifyInstructor(c.Request.Context(), req.CourseID, req.StaffID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// QualifyTA godoc
// @Summary Qualify a TA to teach a course's labs and tutorials
// @Tags Catalog
// @Accept json
// @Param payload body dto.QualifyStaffRequest true "Qualification"
// @Success 204
// @Router /courses/qualify-ta [post]
func (h *CatalogHandler) QualifyTA(c *gin.Context) {
	var req dto.QualifyStaffRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.courses.QualifyTA(c.Request.Context(), req.CourseID, req.StaffID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListInstructors godoc
// @Summary List instructors
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *CatalogHandler) ListInstructors(c *gin.Context) {
	instructors, err := h.instructors.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, nil)
}

// CreateInstructor godoc
// @Summary Create an instructor
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstructorRequest true "Instructor"
// @Success 201 {object} response.Envelope
// @Router /instructors [post]
func (h *CatalogHandler) CreateInstructor(c *gin.Context) {
	var req dto.CreateInstructorRequest
	if !h.bindJSON(c, &req) {
		return
	}
	instructor := &domain.Instructor{Name: req.Name}
	if err := h.instructors.Create(c.Request.Context(), instructor); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// ListTAs godoc
// @Summary List teaching assistants
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tas [get]
func (h *CatalogHandler) ListTAs(c *gin.Context) {
	tas, err := h.tas.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tas, nil)
}

// CreateTA godoc
// @Summary Create a teaching assistant
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateTARequest true "TA"
// @Success 201 {object} response.Envelope
// @Router /tas [post]
func (h *CatalogHandler) CreateTA(c *gin.Context) {
	var req dto.CreateTARequest
	if !h.bindJSON(c, &req) {
		return
	}
	ta := &domain.TA{Name: req.Name}
	if err := h.tas.Create(c.Request.Context(), ta); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ta)
}

// bindJSON binds and validates req, writing a 400 response and returning
// false on failure so callers can early-return in one line.
func (h *CatalogHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return false
	}
	return true
}
