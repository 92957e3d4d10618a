//go:build linux

package proc

import "golang.org/x/sys/unix"

// osThreadID returns the kernel id of the calling OS thread. Only meaningful
// while the goroutine is locked to it.
func osThreadID() (int, bool) {
	return unix.Gettid(), true
}
