//go:build !linux

package main

func exitCode(err error) int {
	return 1
}
