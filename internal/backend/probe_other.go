//go:build !linux

package backend

import "os"

// Without access(2) only existence can be checked; permission problems
// surface on the first sample or commit.
func checkReadable(path string) error {
	_, err := os.Stat(path)
	return err
}

func checkWritable(path string) error {
	_, err := os.Stat(path)
	return err
}
