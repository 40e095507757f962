package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/carsim/internal/vehicle"
)

// Construction and runtime errors.
var (
	// ErrInvalidStep indicates a step size that is not positive and finite.
	ErrInvalidStep = errors.New("sim: step size must be positive and finite")

	// ErrInvalidFinalTime indicates a negative or non-finite final time.
	ErrInvalidFinalTime = errors.New("sim: final time must be non-negative and finite")

	// ErrLengthMismatch indicates control arrays and timestamps of different length.
	ErrLengthMismatch = errors.New("sim: control signals and timestamps differ in length")

	// ErrFinalTimeBeyondSignal indicates a final time past the last control sample.
	ErrFinalTimeBeyondSignal = errors.New("sim: final time exceeds control signal domain")

	// ErrSignalStartsLate indicates control samples that do not cover t=0.
	ErrSignalStartsLate = errors.New("sim: control signal does not cover t=0")

	// ErrInvalidState indicates the car state diverged to NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)

// StepError wraps a failure with the step at which it happened.
type StepError struct {
	Step    int
	Time    float64
	State   vehicle.State
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
