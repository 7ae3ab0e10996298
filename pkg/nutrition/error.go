package nutrition

import (
	"errors"
	"fmt"
)

var ErrDataLoad = errors.New("nutrition: catalog data load failed")

// DataLoadError reports a structurally invalid catalog source. Label and
// Field are empty when the failure is not tied to one entry.
type DataLoadError struct {
	Label  string
	Field  string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := "nutrition: invalid catalog"
	if e.Label != "" {
		msg += fmt.Sprintf(" entry %q", e.Label)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func (e *DataLoadError) Is(target error) bool {
	return target == ErrDataLoad
}

func loadErr(label, field, reason string) error {
	return &DataLoadError{Label: label, Field: field, Reason: reason}
}
