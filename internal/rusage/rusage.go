// Package rusage reads the CPU time consumed by the current process.
package rusage

import "time"

// Usage is the user and system CPU time of the process.
type Usage struct {
	User   time.Duration
	System time.Duration
}

// CPU returns the total CPU time.
func (u Usage) CPU() time.Duration { return u.User + u.System }

// Sub returns the usage accrued since prev.
func (u Usage) Sub(prev Usage) Usage {
	return Usage{User: u.User - prev.User, System: u.System - prev.System}
}

// Self returns the usage of the current process. Errors yield a zero Usage
// since timing reports are informational.
func Self() Usage {
	u, err := self()
	if err != nil {
		return Usage{}
	}
	return u
}
