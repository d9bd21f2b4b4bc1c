// Package decimalmath provides the small set of decimal primitives the
// projection engine needs beyond +,-,*,/: safe division, averaging, integer
// powers, and a Newton n-th root. Everything operates on shopspring decimals
// so results stay exact-decimal rather than drifting through float64.
package decimalmath

import "github.com/shopspring/decimal"

// newtonRounds is the fixed iteration count for NthRoot. A fixed count keeps
// the computation deterministic and bounded; 30 rounds is ample for the
// revenue ratios the summary aggregator feeds in.
const newtonRounds = 30

var one = decimal.NewFromInt(1)

// SafeDiv divides num by den, returning zero when the denominator is zero.
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// Average returns the arithmetic mean of a and b.
func Average(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Div(decimal.NewFromInt(2))
}

// PowInt raises base to an integer exponent by repeated multiplication.
// Negative exponents return the reciprocal (zero base yields zero).
func PowInt(base decimal.Decimal, exp int64) decimal.Decimal {
	if exp == 0 {
		return one
	}
	if exp < 0 {
		return SafeDiv(one, PowInt(base, -exp))
	}
	result := one
	for i := int64(0); i < exp; i++ {
		result = result.Mul(base)
	}
	return result
}

// NthRoot computes the n-th root of x via Newton's method:
//
//	x_{k+1} = x_k*(1 - 1/n) + v/(n*x_k^(n-1))
//
// iterated a fixed number of rounds rather than to a tolerance. Degenerate
// inputs (x <= 0 or n <= 0) return zero; callers treat that as "no result"
// rather than an error.
func NthRoot(x decimal.Decimal, n int64) decimal.Decimal {
	if n <= 0 || x.Sign() <= 0 {
		return decimal.Zero
	}
	if n == 1 {
		return x
	}

	nDec := decimal.NewFromInt(n)
	coef := one.Sub(one.Div(nDec))

	guess := x
	for i := 0; i < newtonRounds; i++ {
		pow := PowInt(guess, n-1)
		if pow.IsZero() {
			return decimal.Zero
		}
		guess = guess.Mul(coef).Add(x.Div(nDec.Mul(pow)))
	}
	return guess
}
