package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
)

func write(t *testing.T, err error) (int, HTTPError) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFromError(t *testing.T) {
	_, verr := slot.Validate("2025-03-10", "09:15", "10:00")

	existing := slot.Slot{ID: "a", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"}
	candidate := slot.Slot{ID: "b", Date: "2025-03-10", StartTime: "09:30", EndTime: "10:30"}
	cerr := &slot.ConflictError{Message: "conflict", Candidate: candidate, Conflicts: []slot.Slot{existing}}

	t.Run("validation", func(t *testing.T) {
		code, body := write(t, verr)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "startTime", body.Field)
	})

	t.Run("conflict", func(t *testing.T) {
		code, body := write(t, cerr)
		assert.Equal(t, http.StatusConflict, code)
		require.Len(t, body.Conflicts, 1)
		assert.Equal(t, 30, body.Conflicts[0].OverlapMinutes)
		assert.Equal(t, "a", body.Conflicts[0].Slot2.ID)
	})

	t.Run("not found", func(t *testing.T) {
		code, body := write(t, &slot.NotFoundError{ID: "x"})
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "slot_not_found", body.Code)
	})

	t.Run("exclusion constraint", func(t *testing.T) {
		code, _ := write(t, &pgconn.PgError{Code: "23P01"})
		assert.Equal(t, http.StatusConflict, code)
	})

	t.Run("backend fault", func(t *testing.T) {
		code, body := write(t, errors.New("connection refused"))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.NotContains(t, body.Message, "refused")
	})
}
