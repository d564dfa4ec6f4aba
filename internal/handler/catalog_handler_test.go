package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/noah-isme/timetable-solver/internal/repository"
)

func newCatalogHandlerTest(t *testing.T) (*CatalogHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	rawDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	db := sqlx.NewDb(rawDB, "postgres")

	h := NewCatalogHandler(
		repository.NewBuildingRepository(db),
		repository.NewRoomRepository(db),
		repository.NewLevelRepository(db),
		repository.NewGroupRepository(db),
		repository.NewSectionRepository(db),
		repository.NewCourseRepository(db),
		repository.NewInstructorRepository(db),
		repository.NewTARepository(db),
	)
	return h, mock, func() { _ = rawDB.Close() }
}

func TestCatalogHandlerCreateBuildingSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, mock, cleanup := newCatalogHandlerTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO buildings")).
		WithArgs("Science Block").
		WillReturnRows(sqlmock.NewRows([]string{"building_id"}).AddRow(1))

	req, _ := http.NewRequest(http.MethodPost, "/buildings", bytes.NewReader([]byte(`{"name":"Science Block"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.CreateBuilding(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "Science Block")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogHandlerCreateBuildingValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, cleanup := newCatalogHandlerTest(t)
	defer cleanup()

	req, _ := http.NewRequest(http.MethodPost, "/buildings", bytes.NewReader([]byte(`{"name":""}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.CreateBuilding(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerListRooms(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, mock, cleanup := newCatalogHandlerTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.room_id")).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "room_type", "capacity", "room_number", "building_name"}).
			AddRow(1, "Theater", 120, "A101", "Science Block"))

	req, _ := http.NewRequest(http.MethodGet, "/rooms", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.ListRooms(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "A101")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogHandlerDeleteRoomInvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, _, cleanup := newCatalogHandlerTest(t)
	defer cleanup()

	req, _ := http.NewRequest(http.MethodDelete, "/rooms/abc", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.DeleteRoom(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandlerQualifyInstructor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h, mock, cleanup := newCatalogHandlerTest(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instructor_qualified_courses")).
		WithArgs(5, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req, _ := http.NewRequest(http.MethodPost, "/courses/qualify-instructor", bytes.NewReader([]byte(`{"courseId":10,"staffId":5}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.QualifyInstructor(c)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
