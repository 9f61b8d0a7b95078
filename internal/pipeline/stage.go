package pipeline

import (
	"fmt"
)

// Stage is a state of the per-file machine.
type Stage int

const (
	Resolving Stage = iota
	BuildingJob
	Executing
	Finalizing
	Done
)

func (s Stage) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case BuildingJob:
		return "building job"
	case Executing:
		return "executing"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// StageError is the failure of one file at one stage.
type StageError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func fail(path string, stage Stage, err error) *StageError {
	return &StageError{Path: path, Stage: stage, Err: err}
}
