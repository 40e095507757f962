// Package signal holds time-sampled control inputs and interpolates them.
package signal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

var (
	ErrTooFewSamples  = errors.New("signal: at least two samples required")
	ErrNotIncreasing  = errors.New("signal: sample times must be strictly increasing")
	ErrLengthMismatch = errors.New("signal: times and values differ in length")
	ErrDomainExceeded = errors.New("signal: query outside sample domain")
)

// Signal is a piecewise-linear function of time defined on [Start, End].
type Signal struct {
	times  []float64
	values []float64
	pl     interp.PiecewiseLinear
}

func New(times, values []float64) (*Signal, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d times, %d values", ErrLengthMismatch, len(times), len(values))
	}
	if len(times) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(times))
	}
	for i := range times {
		if math.IsNaN(times[i]) || math.IsInf(times[i], 0) || math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			return nil, fmt.Errorf("signal: sample %d is not finite", i)
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: t[%d]=%g after t[%d]=%g", ErrNotIncreasing, i, times[i], i-1, times[i-1])
		}
	}

	s := &Signal{
		times:  append([]float64(nil), times...),
		values: append([]float64(nil), values...),
	}
	if err := s.pl.Fit(s.times, s.values); err != nil {
		return nil, fmt.Errorf("signal: fit: %w", err)
	}
	return s, nil
}

// Constant returns a signal holding v over [start, end].
func Constant(v, start, end float64) (*Signal, error) {
	return New([]float64{start, end}, []float64{v, v})
}

// Ramp returns a signal going linearly from v0 at start to v1 at end.
func Ramp(v0, v1, start, end float64) (*Signal, error) {
	return New([]float64{start, end}, []float64{v0, v1})
}

func (s *Signal) Start() float64 { return s.times[0] }
func (s *Signal) End() float64   { return s.times[len(s.times)-1] }
func (s *Signal) Len() int       { return len(s.times) }

// At interpolates the signal at t. Queries outside [Start, End] fail with
// ErrDomainExceeded instead of extrapolating.
func (s *Signal) At(t float64) (float64, error) {
	if math.IsNaN(t) || t < s.Start() || t > s.End() {
		return 0, fmt.Errorf("%w: t=%g not in [%g, %g]", ErrDomainExceeded, t, s.Start(), s.End())
	}
	return s.pl.Predict(t), nil
}

// Samples returns copies of the sample times and values.
func (s *Signal) Samples() ([]float64, []float64) {
	return append([]float64(nil), s.times...), append([]float64(nil), s.values...)
}

// Linspace returns n evenly spaced points from start to end inclusive.
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}
