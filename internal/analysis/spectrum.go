package analysis

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

var ErrTooFewSamples = errors.New("analysis: spectrum needs at least four samples")

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// the mean-removed samples, together with the bin frequencies in Hz.
func PowerSpectrum(samples []float64, dt float64) (freqs, power []float64, err error) {
	n := len(samples)
	if n < 4 {
		return nil, nil, ErrTooFewSamples
	}

	mean := floats.Sum(samples) / float64(n)
	centred := make([]float64, n)
	copy(centred, samples)
	floats.AddConst(-mean, centred)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)

	freqs = make([]float64, len(coeff))
	power = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		power[i] = cmplx.Abs(c)
	}
	return freqs, power, nil
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin, e.g. the yaw oscillation of a slalom.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	freqs, power, err := PowerSpectrum(samples, dt)
	if err != nil {
		return 0, err
	}
	best := 1 + floats.MaxIdx(power[1:])
	return freqs[best], nil
}
