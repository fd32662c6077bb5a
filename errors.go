package nilq

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/nilq/checkpoint"
	"github.com/hupe1980/nilq/fpres"
	"github.com/hupe1980/nilq/internal/engine"
	"github.com/hupe1980/nilq/ring"
)

var (
	// ErrInput is returned for malformed presentations and invalid options.
	ErrInput = errors.New("invalid input")

	// ErrInvariant is returned when the computation detects an internal
	// inconsistency or a fixed-width ring overflows. The run is aborted.
	ErrInvariant = engine.ErrInvariant

	// ErrUnsupported is returned for ring, signature and mode combinations
	// that cannot be computed.
	ErrUnsupported = engine.ErrUnsupported

	// ErrCanceled is returned when the context ends the run between classes.
	ErrCanceled = errors.New("run canceled")
)

// RunError reports the class at which a run failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type RunError struct {
	RunID string
	Class int
	cause error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s: class %d: %v", e.RunID, e.Class, e.cause)
}

func (e *RunError) Unwrap() error { return e.cause }

// translateError maps errors of the internal packages onto the public
// sentinels. The cause stays reachable through errors.Is and errors.As.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInput), errors.Is(err, ErrInvariant),
		errors.Is(err, ErrUnsupported), errors.Is(err, ErrCanceled):
		return err
	case errors.Is(err, fpres.ErrSyntax), errors.Is(err, ring.ErrInvalidRing),
		errors.Is(err, checkpoint.ErrMismatch):
		return fmt.Errorf("%w: %w", ErrInput, err)
	case errors.Is(err, ring.ErrOverflow):
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return err
}

// classError wraps err with the run and class it occurred in.
func classError(runID string, class int, err error) error {
	return &RunError{RunID: runID, Class: class, cause: translateError(err)}
}
