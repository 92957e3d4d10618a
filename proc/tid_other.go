//go:build !linux

package proc

func osThreadID() (int, bool) {
	return 0, false
}
