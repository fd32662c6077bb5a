package engine

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nilq/ring"
)

var (
	// ErrInvariant is wrapped by every InvariantError.
	ErrInvariant = errors.New("invariant violation")

	// ErrUnsupported is returned for signature/ring/mode combinations the engine cannot run.
	ErrUnsupported = errors.New("unsupported configuration")
)

// InvariantError reports an internal consistency failure. It aborts the run.
type InvariantError struct {
	Op    string
	Class int
	Msg   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s (class %d): %s", ErrInvariant, e.Op, e.Class, e.Msg)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// fail panics with an InvariantError; Step turns it into a returned error.
func fail(op string, class int, format string, args ...any) {
	panic(&InvariantError{Op: op, Class: class, Msg: fmt.Sprintf(format, args...)})
}

// recoverStep converts the panics raised inside a class step into errors.
// Anything else is re-panicked.
func recoverStep(err *error) {
	switch v := recover().(type) {
	case nil:
	case *InvariantError:
		*err = v
	case *ring.OverflowError:
		*err = fmt.Errorf("engine: %w", v)
	default:
		panic(v)
	}
}
