package scheduling

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a referenced appointment, doctor, or patient
// does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError describes a single invalid field on a candidate appointment.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationErrors collects every field failure found in one validation pass.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// ConflictError reports overlapping active appointments. The doctor and
// patient checks run independently and both results are carried here.
type ConflictError struct {
	DoctorConflicts  []uuid.UUID `json:"doctor_conflicts,omitempty"`
	PatientConflicts []uuid.UUID `json:"patient_conflicts,omitempty"`
}

func (e *ConflictError) Error() string {
	var parts []string
	if len(e.DoctorConflicts) > 0 {
		parts = append(parts, fmt.Sprintf("doctor has %d conflicting appointment(s)", len(e.DoctorConflicts)))
	}
	if len(e.PatientConflicts) > 0 {
		parts = append(parts, fmt.Sprintf("patient has %d conflicting appointment(s)", len(e.PatientConflicts)))
	}
	if len(parts) == 0 {
		return "scheduling conflict"
	}
	return strings.Join(parts, "; ")
}

// TransitionError reports an operation applied to an appointment whose
// current status does not permit it.
type TransitionError struct {
	Op     string `json:"op"`
	Status string `json:"status"`
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s appointment with status %q", e.Op, e.Status)
}
