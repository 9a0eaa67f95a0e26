// Package errors defines the sentinel errors shared by the retrieval
// pipeline and maps them to process exit codes for the CLI.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrStopwordsNotFound  = errors.New("stopword list not found")
	ErrQueriesNotFound    = errors.New("query file not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateDocument  = errors.New("duplicate document id")
	ErrUnknownScheme      = errors.New("unknown weighting scheme")
	ErrScoring            = errors.New("scoring failed")
	ErrIncompleteRun      = errors.New("run file incomplete")
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNoInput  = 66
	ExitDataErr  = 65
	ExitSoftware = 70
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// ScoringError reports a failure while scoring a single query. It never
// aborts sibling queries of the same batch.
type ScoringError struct {
	QueryID string
	Err     error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring query %s: %v", e.QueryID, e.Err)
}

func (e *ScoringError) Unwrap() []error {
	return []error{ErrScoring, e.Err}
}

// ExitCode maps err to a process exit status. Errors carrying their own
// ExitCode method take precedence over the sentinel mapping.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	switch {
	case errors.Is(err, ErrCollectionNotFound),
		errors.Is(err, ErrStopwordsNotFound),
		errors.Is(err, ErrQueriesNotFound):
		return ExitNoInput
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownScheme):
		return ExitUsage
	case errors.Is(err, ErrDuplicateDocument):
		return ExitDataErr
	case errors.Is(err, ErrScoring):
		return ExitSoftware
	default:
		return ExitFailure
	}
}
