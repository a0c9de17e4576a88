package usecase

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrPatientNotAdmitted = errors.New("patient is not admitted")
	ErrDuplicateMRD       = errors.New("medical record number already exists")
	ErrUnknownField       = errors.New("field is not available for analytics")
	ErrUnsupportedFormat  = errors.New("unsupported import file format")
)

// ValidationError reports invalid input fields. No state is changed when it
// is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = e.Fields[k]
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
