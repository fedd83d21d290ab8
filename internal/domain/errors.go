package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("resource conflict")
	ErrOverlappingSleep    = errors.New("overlapping sleep period detected")
	ErrDuplicateRequest    = errors.New("duplicate client request")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownDomain       = errors.New("unknown cognitive domain")
	ErrUnknownActivity     = errors.New("unknown activity")
	ErrRecomputeInProgress = errors.New("recompute already in progress")
	ErrProfileNotComputed  = errors.New("profile has not been computed yet")
)

// RecomputeStage names the step of a profile recompute that failed.
type RecomputeStage string

const (
	StageLock    RecomputeStage = "lock"
	StageFetch   RecomputeStage = "fetch"
	StageStorage RecomputeStage = "storage"
)

// RecomputeError wraps a recompute failure with the stage it happened in.
type RecomputeError struct {
	Stage RecomputeStage
	Err   error
}

func (e *RecomputeError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *RecomputeError) Unwrap() error { return e.Err }

// Reason is a short explanation safe to show to API clients.
func (e *RecomputeError) Reason() string {
	switch e.Stage {
	case StageLock:
		return "the recompute lock could not be acquired"
	case StageFetch:
		return "the user's activity or sleep data could not be loaded"
	case StageStorage:
		return "the computed profile could not be saved"
	default:
		return "an unexpected error occurred"
	}
}
