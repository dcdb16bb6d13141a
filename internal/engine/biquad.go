package engine

import "math"

// BiquadType selects one of the RBJ cookbook coefficient forms.
type BiquadType int

const (
	BiquadLowpass BiquadType = iota
	BiquadHighpass
	BiquadLowshelf
	BiquadHighshelf
	BiquadPeaking
	BiquadNotch
	BiquadAllpass
	BiquadBandpass
)

// BiquadCoefficients are the normalized (a0 == 1) transfer function
// coefficients for a second order section.
type BiquadCoefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// NewBiquadCoefficients derives RBJ cookbook coefficients for the
// given type, parameterized by sample rate, center/corner frequency,
// Q, and (for shelf/peaking types) gain in dB.
func NewBiquadCoefficients(sampleRate int, freq, q, gainDB float64, kind BiquadType) BiquadCoefficients {
	w0 := 2 * math.Pi * freq / float64(sampleRate)
	sinW0, cosW0 := math.Sin(w0), math.Cos(w0)
	alpha := sinW0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64

	switch kind {
	case BiquadLowpass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadHighpass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadBandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadNotch:
		b0 = 1
		b1 = -2 * cosW0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadAllpass:
		b0 = 1 - alpha
		b1 = -2 * cosW0
		b2 = 1 + alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case BiquadPeaking:
		a := math.Pow(10, gainDB/40)
		b0 = 1 + alpha*a
		b1 = -2 * cosW0
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cosW0
		a2 = 1 - alpha/a
	case BiquadLowshelf:
		a := math.Pow(10, gainDB/40)
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cosW0 + sq)
		b1 = 2 * a * ((a - 1) - (a+1)*cosW0)
		b2 = a * ((a + 1) - (a-1)*cosW0 - sq)
		a0 = (a + 1) + (a-1)*cosW0 + sq
		a1 = -2 * ((a - 1) + (a+1)*cosW0)
		a2 = (a + 1) + (a-1)*cosW0 - sq
	case BiquadHighshelf:
		a := math.Pow(10, gainDB/40)
		sq := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cosW0 + sq)
		b1 = -2 * a * ((a - 1) + (a+1)*cosW0)
		b2 = a * ((a + 1) + (a-1)*cosW0 - sq)
		a0 = (a + 1) - (a-1)*cosW0 + sq
		a1 = 2 * ((a - 1) - (a+1)*cosW0)
		a2 = (a + 1) - (a-1)*cosW0 - sq
	}

	return BiquadCoefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

// Biquad is a transposed Direct Form II second order section with
// internal state (s1, s2).
type Biquad struct {
	coeffs BiquadCoefficients
	s1, s2 float64
}

func NewBiquad(coeffs BiquadCoefficients) *Biquad {
	return &Biquad{coeffs: coeffs}
}

func (b *Biquad) ProcessWaveform(waveform []float64) error {
	c := b.coeffs
	for i, x := range waveform {
		y := c.B0*x + b.s1
		b.s1 = c.B1*x - c.A1*y + b.s2
		b.s2 = c.B2*x - c.A2*y
		waveform[i] = y
	}
	return nil
}
