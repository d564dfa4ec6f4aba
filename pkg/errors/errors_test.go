package errors

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-solver/internal/solvererr"
)

func TestFromSolverErrorMapsEachKind(t *testing.T) {
	cases := []struct {
		kind solvererr.Kind
		want *Error
	}{
		{solvererr.CapacityShortfall, ErrCapacityShortfall},
		{solvererr.NoQualifiedStaff, ErrNoQualifiedStaff},
		{solvererr.NoSchedule, ErrNoSchedule},
		{solvererr.InvalidInput, ErrInvalidInput},
	}
	for _, c := range cases {
		src := solvererr.New(c.kind, "detail", map[string]any{"variable": "x"})
		got := FromSolverError(src)
		assert.Equal(t, c.want.Code, got.Code)
		assert.Equal(t, c.want.Status, got.Status)
		assert.Equal(t, "detail", got.Message)
		assert.Equal(t, map[string]any{"variable": "x"}, got.Fields)
	}
}

func TestFromSolverErrorFallsBackForNonInfeasible(t *testing.T) {
	got := FromSolverError(context.DeadlineExceeded)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}
