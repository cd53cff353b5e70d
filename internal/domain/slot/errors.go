package slot

import (
	"errors"
	"fmt"
)

type Field string

const (
	FieldDate      Field = "date"
	FieldStartTime Field = "startTime"
	FieldEndTime   Field = "endTime"
	FieldRange     Field = "range"
)

// ===============================
// Validation
// ===============================

type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field Field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidationField returns the field tag of a validation failure, or "".
func ValidationField(err error) Field {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// ===============================
// Conflict
// ===============================

type ConflictError struct {
	Message   string
	Candidate Slot
	Conflicts []Slot
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Details pairs the candidate with every colliding slot.
func (e *ConflictError) Details() []Conflict {
	out := make([]Conflict, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		out = append(out, Conflict{
			Slot1:          e.Candidate,
			Slot2:          c,
			OverlapMinutes: OverlapMinutes(e.Candidate, c),
		})
	}
	return out
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ===============================
// Not found
// ===============================

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "slot not found: " + e.ID
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
