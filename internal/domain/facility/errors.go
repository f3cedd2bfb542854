package facility

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a hospital or clinic does not exist.
var ErrNotFound = errors.New("not found")

// ErrHasDoctors is returned when deleting a facility that doctors still
// reference.
var ErrHasDoctors = errors.New("facility has associated doctors")

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
