package engine

import "math/cmplx"

// fft computes the unnormalized forward discrete Fourier transform of
// a in place; len(a) must be a power of two. There is no FFT library
// anywhere in the retrieval pack this module was grounded on, so this
// is a small hand-rolled radix-2 Cooley-Tukey transform (see DESIGN.md).
func fft(a []complex128) {
	fftRadix2(a, false)
}

// ifft computes the unnormalized inverse discrete Fourier transform of
// a in place; callers divide by len(a) themselves where the spec's
// scaling convention requires it (the FFT convolver divides by 2N).
func ifft(a []complex128) {
	fftRadix2(a, true)
}

func fftRadix2(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for length := 2; length <= n; length <<= 1 {
		angle := sign * 2 * 3.141592653589793 / float64(length)
		wLen := cmplx.Exp(complex(0, angle))
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			half := length / 2
			for j := 0; j < half; j++ {
				u := a[i+j]
				v := a[i+j+half] * w
				a[i+j] = u + v
				a[i+j+half] = u - v
				w *= wLen
			}
		}
	}
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
