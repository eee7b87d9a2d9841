package geotech

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Persisted descriptions were historically produced by ECMAScript number
// formatting, which rounds exact decimal ties away from zero. strconv rounds
// them to even, so both helpers below round the exact binary expansion by hand.

// exactDigits returns the significant digits and decimal exponent of |x| > 0,
// so that |x| = d[0].d[1]d[2]... * 10^exp with no rounding applied.
func exactDigits(x float64) (string, int) {
	s := new(big.Float).SetFloat64(math.Abs(x)).Text('e', 800)
	mant, expStr, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expStr)
	digits := strings.TrimRight(strings.Replace(mant, ".", "", 1), "0")
	if digits == "" {
		digits = "0"
	}
	return digits, exp
}

// roundDigits keeps n leading digits, rounding half up. carry reports that
// rounding overflowed into an extra leading digit (999 -> 1000).
func roundDigits(digits string, n int) (string, bool) {
	if n <= 0 {
		if n == 0 && digits[0] >= '5' {
			return "1", true
		}
		return "", false
	}
	if len(digits) <= n {
		return digits + strings.Repeat("0", n-len(digits)), false
	}
	kept := []byte(digits[:n])
	if digits[n] < '5' {
		return string(kept), false
	}
	for i := n - 1; i >= 0; i-- {
		if kept[i] < '9' {
			kept[i]++
			return string(kept), false
		}
		kept[i] = '0'
	}
	return "1" + string(kept), true
}

// ToFixed formats x with f fraction digits, matching Number.prototype.toFixed
func ToFixed(x float64, f int) string {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', f, 64)
	}
	digits, exp := exactDigits(x)
	keep := exp + 1 + f
	kept, carry := roundDigits(digits, keep)
	if carry {
		keep++
	}
	if keep <= 0 || kept == "" {
		kept = "0"
	}

	// kept holds the integer digits followed by f fraction digits
	if len(kept) < f+1 {
		kept = strings.Repeat("0", f+1-len(kept)) + kept
	}
	out := kept
	if f > 0 {
		out = kept[:len(kept)-f] + "." + kept[len(kept)-f:]
	}
	if x < 0 {
		out = "-" + out
	}
	return out
}

// ToExponential formats x with f fraction digits in e-notation, matching
// Number.prototype.toExponential: the exponent carries its sign and no padding.
func ToExponential(x float64, f int) string {
	if x == 0 {
		return "0." + strings.Repeat("0", f) + "e+0"
	}
	digits, exp := exactDigits(x)
	kept, carry := roundDigits(digits, f+1)
	if carry {
		kept = kept[:f+1]
		exp++
	}
	mant := kept[:1]
	if f > 0 {
		mant += "." + kept[1:]
	}
	if x < 0 {
		mant = "-" + mant
	}
	sign := "+"
	if exp < 0 {
		sign = "-"
		exp = -exp
	}
	return mant + "e" + sign + strconv.Itoa(exp)
}
