package resource

import (
	"errors"
	"fmt"
)

// ErrMemoryLimit is returned when a single request exceeds the memory limit.
var ErrMemoryLimit = errors.New("resource: memory limit exceeded")

// MemoryLimitError reports a request that can never be satisfied.
type MemoryLimitError struct {
	Requested int64
	Limit     int64
}

func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("resource: request of %d bytes exceeds limit of %d bytes", e.Requested, e.Limit)
}

func (e *MemoryLimitError) Unwrap() error { return ErrMemoryLimit }
