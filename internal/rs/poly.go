package rs

import "github.com/nebula-labs/nebula-reconstruct/internal/gf"

// polynomials are represented as []byte in descending-degree order: p[0] is
// the coefficient of the highest power of x, p[len(p)-1] is the constant
// term. This matches the convention used throughout classic GF(2^8)
// Reed-Solomon references.

// polyAdd returns p+q. In GF(2) characteristic, addition is XOR, so this is
// also polySub.
func polyAdd(p, q []byte) []byte {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make([]byte, n)
	copy(out[n-len(p):], p)
	for i, c := range q {
		out[n-len(q)+i] ^= c
	}
	return out
}

// polyScale returns p with every coefficient multiplied by x.
func polyScale(p []byte, x byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = gf.Mul(c, x)
	}
	return out
}

// polyMul returns the product of two polynomials.
func polyMul(p, q []byte) []byte {
	out := make([]byte, len(p)+len(q)-1)
	for i, pc := range p {
		if pc == 0 {
			continue
		}
		for j, qc := range q {
			out[i+j] ^= gf.Mul(pc, qc)
		}
	}
	return out
}

// polyEval evaluates p(x) via Horner's method.
func polyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gf.Mul(y, x) ^ p[i]
	}
	return y
}

// polyDivMod performs synthetic division of dividend by divisor, returning
// (quotient, remainder). divisor must be monic (divisor[0] == 1): the
// leading coefficient is never divided out.
func polyDivMod(dividend, divisor []byte) (quotient, remainder []byte) {
	work := make([]byte, len(dividend))
	copy(work, dividend)

	for i := 0; i <= len(work)-len(divisor); i++ {
		coef := work[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(divisor); j++ {
			if divisor[j] != 0 {
				work[i+j] ^= gf.Mul(divisor[j], coef)
			}
		}
	}

	separator := len(work) - (len(divisor) - 1)
	return work[:separator], work[separator:]
}

// polyTrimLeadingZeros drops leading zero coefficients (keeps at least one).
func polyTrimLeadingZeros(p []byte) []byte {
	i := 0
	for i < len(p)-1 && p[i] == 0 {
		i++
	}
	return p[i:]
}
