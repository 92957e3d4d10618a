package model

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
)

const rule = "================================================================================"
const thinRule = "--------------------------------------------------------------------------------"

// FormatModes lists every mode with its description.
func FormatModes() string {
	var b strings.Builder
	for _, m := range Modes() {
		b.WriteString(color.Bold.Sprintf("%d", int(m)))
		b.WriteString(fmt.Sprintf("  %-24s %s\n", m.String(), m.Description()))
	}
	return b.String()
}

// FormatReport summarizes a coordinator report for the end of a run.
func FormatReport(r *Report) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint(rule))
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprint("Run Summary:"))
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint(rule))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Run:                %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("  Mode:               %d (%s)\n", int(r.Mode), r.Mode))
	b.WriteString(fmt.Sprintf("  Process:            %d (main thread %d)\n", r.PID, r.MainThread))
	for i := 0; i < NumWorkers; i++ {
		res := r.Results[i].String()
		if r.Results[i].Present() {
			res = color.Green.Sprint(res)
		} else {
			res = color.Yellow.Sprint(res)
		}
		b.WriteString(fmt.Sprintf("  Worker %d:           thread %d, in %d, out %d, %s\n",
			i, r.Threads[i], r.Items[i].In, r.Items[i].Out, res))
	}
	b.WriteString(fmt.Sprintf("  Counter:            %d\n", r.Counter))
	if r.SemSupported {
		b.WriteString(fmt.Sprintf("  Semaphore value:    %d\n", r.SemValue))
	} else {
		b.WriteString("  Semaphore value:    unsupported\n")
	}
	if r.Degraded {
		b.WriteString(color.Red.Sprint("  Ran without mutual exclusion (semaphore init failed)"))
		b.WriteString("\n")
	}
	b.WriteString(color.Gray.Sprint(rule))
	b.WriteString("\n")
	return b.String()
}

// FormatSweep formats the distinct outcomes of a sweep and its statistics.
func FormatSweep(s *SweepResult, outcomes []SweepOutcome) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint(rule))
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprintf("Outcomes for mode %d (%s):", int(s.Mode), s.Mode))
	b.WriteString("\n")
	b.WriteString(color.Gray.Sprint(thinRule))
	b.WriteString("\n")
	for _, o := range outcomes {
		b.WriteString(fmt.Sprintf("  %5d x 0x%016x  %s\n", o.Count, uint64(o.Hash), o.Record))
	}
	b.WriteString(color.Gray.Sprint(thinRule))
	b.WriteString("\n")
	b.WriteString(color.Cyan.Sprint("Statistics:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Runs:               %d\n", s.Runs))
	b.WriteString(fmt.Sprintf("  Distinct outcomes:  %d\n", len(outcomes)))
	b.WriteString(fmt.Sprintf("  Time elapsed:       %s\n", s.Elapsed))
	b.WriteString(color.Gray.Sprint(rule))
	b.WriteString("\n")
	return b.String()
}
