//go:build linux

package backend

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// access(2) reports permission as the kernel would decide it for this
// process, which os.Stat mode bits cannot for sysfs and udev-managed nodes.
func checkReadable(path string) error {
	return access(path, unix.R_OK)
}

func checkWritable(path string) error {
	return access(path, unix.W_OK)
}

func access(path string, mode uint32) error {
	if err := unix.Access(path, mode); err != nil {
		return &fs.PathError{Op: "access", Path: path, Err: err}
	}
	return nil
}
