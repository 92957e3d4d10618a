package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/timewinder-dev/exitpaths/sema"
)

// RunSpec is everything a run needs to know before the workers start.
type RunSpec struct {
	Mode      Mode        `toml:"mode"`
	SleepUnit Duration    `toml:"sleep_unit"`
	Inputs    []int       `toml:"inputs"`
	Semaphore sema.Config `toml:"semaphore"`
}

// Duration lets TOML files spell durations as strings ("1s", "250ms").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultSpec() *RunSpec {
	return &RunSpec{
		Mode:      ModeJoin,
		SleepUnit: Duration{time.Second},
		Inputs:    []int{2, 4},
		Semaphore: sema.Binary(),
	}
}

func parseSpec(f io.Reader) (*RunSpec, error) {
	out := DefaultSpec()
	_, err := toml.NewDecoder(f).Decode(out)
	return out, err
}

func LoadSpecFromFile(path string) (*RunSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := parseSpec(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the parts of the spec a run can't recover from. The
// semaphore parameters are left alone: a semaphore that fails to build is a
// degraded run, not a bad spec.
func (s *RunSpec) Validate() error {
	if len(s.Inputs) != NumWorkers {
		return fmt.Errorf("need exactly %d inputs, got %d", NumWorkers, len(s.Inputs))
	}
	for i, in := range s.Inputs {
		if in < 0 {
			return fmt.Errorf("input %d is negative: %d", i, in)
		}
	}
	if s.SleepUnit.Duration <= 0 {
		return errors.New("sleep_unit must be positive")
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("mode %d out of range", int(s.Mode))
	}
	return nil
}
