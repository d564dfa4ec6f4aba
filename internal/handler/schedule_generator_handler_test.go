package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-solver/internal/dto"
	appErrors "github.com/noah-isme/timetable-solver/pkg/errors"
)

type scheduleGeneratorMock struct {
	captured  dto.GenerateScheduleRequest
	generated *dto.GenerateScheduleResponse
	genErr    error
	saveErr   error
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	if m.genErr != nil {
		return nil, m.genErr
	}
	return m.generated, nil
}

func (m *scheduleGeneratorMock) Save(ctx context.Context, req dto.SaveScheduleRequest) error {
	return m.saveErr
}

func TestScheduleGeneratorHandlerGenerateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{generated: &dto.GenerateScheduleResponse{ProposalID: "proposal-1"}}
	h := &ScheduleGeneratorHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/schedule/generate", bytes.NewReader([]byte(`{"timeoutMs":5000}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 5000, mockSvc.captured.TimeoutMS)
	require.Contains(t, w.Body.String(), "proposal-1")
}

func TestScheduleGeneratorHandlerGenerateInfeasible(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{genErr: appErrors.ErrNoSchedule}
	h := &ScheduleGeneratorHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/schedule/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestScheduleGeneratorHandlerGenerateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ScheduleGeneratorHandler{service: &scheduleGeneratorMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/schedule/generate", bytes.NewReader([]byte(`{"timeoutMs":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGeneratorHandlerSaveSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{}
	h := &ScheduleGeneratorHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/schedule/save", bytes.NewReader([]byte(`{"proposalId":"proposal-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Save(c)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestScheduleGeneratorHandlerSaveNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{saveErr: appErrors.ErrNotFound}
	h := &ScheduleGeneratorHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/schedule/save", bytes.NewReader([]byte(`{"proposalId":"missing"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.Save(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
