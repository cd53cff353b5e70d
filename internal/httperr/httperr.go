package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/interview-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/interview-scheduler/internal/infra/repository"
)

type HTTPError struct {
	Code      string          `json:"error_code"`
	Message   string          `json:"message"`
	Field     string          `json:"field,omitempty"`
	Conflicts []slot.Conflict `json:"conflicts,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

// ======================================================
// DOMAIN ERRORS
// ======================================================

// FromError writes the response for an error returned by the slot manager.
// Anything that is not a domain failure is a 500 and its text is not echoed.
func FromError(c *gin.Context, err error) {
	if ce, ok := slot.AsConflict(err); ok {
		c.JSON(http.StatusConflict, HTTPError{
			Code:      "slot_conflict",
			Message:   ce.Message,
			Conflicts: ce.Details(),
		})
		return
	}

	switch {
	case slot.IsValidation(err):
		c.JSON(http.StatusBadRequest, HTTPError{
			Code:    "validation_failed",
			Message: err.Error(),
			Field:   string(slot.ValidationField(err)),
		})
	case slot.IsNotFound(err):
		NotFound(c, "slot_not_found", err.Error())
	case repository.IsExclusionViolation(err):
		// corrida perdida para o constraint do postgres
		Write(c, http.StatusConflict, "slot_conflict", "Slot overlaps an existing booking.")
	default:
		_ = c.Error(err)
		Internal(c, "internal_error", "Unexpected storage failure.")
	}
}
