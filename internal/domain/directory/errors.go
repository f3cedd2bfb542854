package directory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a doctor or patient does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a patient's email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ValidationError describes a single invalid field.
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
