//go:build windows

package rusage

import (
	"time"

	"golang.org/x/sys/windows"
)

func self() (Usage, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(windows.CurrentProcess(), &creation, &exit, &kernel, &user); err != nil {
		return Usage{}, err
	}
	return Usage{User: filetime(user), System: filetime(kernel)}, nil
}

// filetime converts a duration in 100ns ticks.
func filetime(ft windows.Filetime) time.Duration {
	return time.Duration(int64(ft.HighDateTime)<<32|int64(ft.LowDateTime)) * 100
}
