package model

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
)

// Reporter receives the diagnostic lines of a run.
type Reporter interface {
	Printf(format string, args ...interface{})
}

// SilentReporter does not output anything
type SilentReporter struct{}

func (r *SilentReporter) Printf(format string, args ...interface{}) {}

type PlainReporter struct {
	Writer io.Writer
}

func (r *PlainReporter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(r.Writer, format, args...)
}

// ColorReporter colours the "main:" and "thread:" tags. Each call is written
// with a single Write so lines from different threads don't mix.
type ColorReporter struct {
	Writer io.Writer
}

func (r *ColorReporter) Printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	switch {
	case strings.HasPrefix(line, "main:"):
		line = color.Cyan.Sprint("main:") + line[len("main:"):]
	case strings.HasPrefix(line, "thread:"):
		line = color.Green.Sprint("thread:") + line[len("thread:"):]
	}
	io.WriteString(r.Writer, line)
}
