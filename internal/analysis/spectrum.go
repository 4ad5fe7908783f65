package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/vecmath"
)

// Spectrum is a one-sided amplitude spectrum.
type Spectrum struct {
	Freqs      []float64 // Hz
	Amplitudes []float64
}

// PowerSpectrum returns the amplitude spectrum of a series sampled every
// dt seconds. The mean is removed first so the DC bin only holds
// rounding noise.
func PowerSpectrum(series []float64, dt float64) (Spectrum, error) {
	if len(series) < 4 {
		return Spectrum{}, dynamo.InvalidArgument("spectrum needs at least 4 samples, got %d", len(series))
	}
	if !vecmath.IsFinite(dt) || dt <= 0 {
		return Spectrum{}, dynamo.InvalidArgument("dt must be positive, got %g", dt)
	}

	n := len(series)
	centred := make([]float64, n)
	copy(centred, series)
	floats.AddConst(-stat.Mean(series, nil), centred)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)

	sp := Spectrum{
		Freqs:      make([]float64, len(coeff)),
		Amplitudes: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		sp.Freqs[i] = fft.Freq(i) / dt
		amp := cmplx.Abs(c) / float64(n)
		// Every bin except DC and Nyquist folds in its negative twin.
		if i > 0 && !(n%2 == 0 && i == len(coeff)-1) {
			amp *= 2
		}
		sp.Amplitudes[i] = amp
	}
	return sp, nil
}

// Dominant returns the non-DC bin with the largest amplitude.
func (s Spectrum) Dominant() (freq, amplitude float64) {
	if len(s.Amplitudes) < 2 {
		return 0, 0
	}
	i := floats.MaxIdx(s.Amplitudes[1:]) + 1
	return s.Freqs[i], s.Amplitudes[i]
}
