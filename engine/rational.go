// SPDX-License-Identifier: EPL-2.0

package engine

// Rational is an exact time base expressed as Num/Den seconds per tick.
type Rational struct {
	Num int64
	Den int64
}

// MicrosecondBase is TimeUnit expressed as a Rational.
var MicrosecondBase = Rational{1, TimeUnit}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Rescale converts v from one time base to another, rounding to the
// nearest tick. Both bases must be positive. v may be NoTimestamp, which
// is passed through unchanged.
func Rescale(v int64, from, to Rational) int64 {
	if v == NoTimestamp {
		return NoTimestamp
	}

	num := from.Num * to.Den
	den := from.Den * to.Num
	if den <= 0 || num <= 0 {
		return 0
	}

	// Reduce before multiplying to keep intermediate products in range
	// for the magnitudes this pipeline sees (frame counts times sample
	// rates).
	if g := gcd(num, den); g > 1 {
		num /= g
		den /= g
	}

	if v < 0 {
		return -((-v)*num + den/2) / den
	}
	return (v*num + den/2) / den
}
