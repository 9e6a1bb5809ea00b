package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidVariable is matched by every InvalidVariableError.
var ErrInvalidVariable = errors.New("invalid variable")

// InvalidVariableError reports a variable outside the recognized set.
type InvalidVariableError struct {
	Name string
}

func (e *InvalidVariableError) Error() string {
	return fmt.Sprintf("invalid variable %q (use %s or %s)", e.Name, Temperature, Humidity)
}

func (e *InvalidVariableError) Is(target error) bool { return target == ErrInvalidVariable }

// Ingestion stages reported by IngestError.
const (
	StageRead      = "read"
	StageHeader    = "header"
	StageTime      = "time"
	StageStructure = "structure"
)

// IngestError aborts ingestion of a whole file.
type IngestError struct {
	Stage string
	Err   error
}

func (e *IngestError) Error() string {
	if e == nil {
		return "ingestion failed"
	}
	return fmt.Sprintf("error processing file: %v", e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

func ingestErr(stage string, format string, args ...any) *IngestError {
	return &IngestError{Stage: stage, Err: fmt.Errorf(format, args...)}
}
