//go:build linux

package main

import (
	"errors"

	"golang.org/x/sys/unix"
)

// exitCode reports the errno behind a fatal I/O error so supervisors can tell
// ENOENT from EACCES without parsing logs.
func exitCode(err error) int {
	var errno unix.Errno
	if errors.As(err, &errno) && errno > 0 && errno < 256 {
		return int(errno)
	}
	return 1
}
